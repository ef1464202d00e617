package cancelorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/corray333/shopline/notify/internal/service/models/order"
	"github.com/go-chi/chi/v5"
)

// Service is the slice of the service layer this handler needs.
type Service interface {
	Cancel(ctx context.Context, orderID int64) (order.Order, error)
}

// CancelOrder handles the customer-initiated cancellation request.
func CancelOrder(w http.ResponseWriter, r *http.Request, service Service) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)

		return
	}

	cancelled, err := service.Cancel(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, order.ErrInvalidTransition):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error cancelling order", "error", err, "order_id", orderID)
		}

		return
	}

	if err := json.NewEncoder(w).Encode(cancelled); err != nil {
		slog.Error("Error sending response for cancel order", "error", err)
	}
}
