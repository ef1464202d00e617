package updatestatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/corray333/shopline/notify/internal/service/models/order"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Service is the slice of the service layer this handler needs.
type Service interface {
	UpdateStatus(
		ctx context.Context,
		orderID int64,
		newStatus order.Status,
		deliveryTime *int,
		rejectionReason *string,
	) (order.Order, error)
}

// updateStatusRequest represents a status transition request.
type updateStatusRequest struct {
	Status          string  `json:"status" validate:"required"`
	DeliveryTime    *int    `json:"deliveryTimeMinutes,omitempty"`
	RejectionReason *string `json:"rejectionReason,omitempty"`
}

// Validate validates the update status request.
func (r *updateStatusRequest) Validate() error {
	return validator.New().Struct(r)
}

// UpdateStatus handles the order status transition request. The status
// value is validated here, before it reaches the state machine.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service Service) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)

		return
	}

	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request body for update status", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error validating request body for update status", "error", err)

		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	updated, err := service.UpdateStatus(r.Context(), orderID, status, req.DeliveryTime, req.RejectionReason)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, order.ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error updating order status", "error", err, "order_id", orderID)
		}

		return
	}

	if err := json.NewEncoder(w).Encode(updated); err != nil {
		slog.Error("Error sending response for update status", "error", err)
	}
}
