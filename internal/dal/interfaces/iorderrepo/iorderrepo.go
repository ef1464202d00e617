package iorderrepo

import (
	"context"

	"github.com/corray333/shopline/notify/internal/service/models/order"
)

// IOrderRepository defines the order storage operations.
type IOrderRepository interface {
	// Insert persists a new order and returns it with its assigned id.
	Insert(ctx context.Context, o order.Order) (order.Order, error)

	// GetForUpdate fetches an order, locking the row when called inside a
	// transaction. Returns order.ErrNotFound for an unknown id.
	GetForUpdate(ctx context.Context, id int64) (order.Order, error)

	// UpdateStatus persists the status and the status-specific optional
	// fields, touching updated_at.
	UpdateStatus(ctx context.Context, o order.Order) error

	// Query retrieves orders matching the filter.
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
