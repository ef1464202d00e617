package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/corray333/shopline/notify/internal/service/models/notification"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
)

// Service is the slice of the service layer this handler needs.
type Service interface {
	ListNotifications(ctx context.Context, recipientID int64, limit, offset int) ([]notification.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
}

type listNotificationsRequest struct {
	RecipientID int64 `schema:"recipientId,required"`
	Limit       int   `schema:"limit,omitempty"`
	Offset      int   `schema:"offset,omitempty"`
}

// ListNotifications handles the notification feed request.
func ListNotifications(w http.ResponseWriter, r *http.Request, service Service) {
	decoder := schema.NewDecoder()
	query := &listNotificationsRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	feed, err := service.ListNotifications(r.Context(), query.RecipientID, query.Limit, query.Offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error listing notifications", "error", err, "recipient_id", query.RecipientID)

		return
	}

	if err := json.NewEncoder(w).Encode(feed); err != nil {
		slog.Error("Error sending response for list notifications", "error", err)
	}
}

// MarkRead handles the mark-as-read request.
func MarkRead(w http.ResponseWriter, r *http.Request, service Service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)

		return
	}

	if err := service.MarkNotificationRead(r.Context(), id); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error marking notification read", "error", err, "notification_id", id)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
