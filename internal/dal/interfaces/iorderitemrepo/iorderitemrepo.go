package iorderitemrepo

import (
	"context"

	"github.com/corray333/shopline/notify/internal/service/models/orderitem"
)

// IOrderItemRepository defines the order item storage operations.
type IOrderItemRepository interface {
	// BulkInsert persists the items of an order, preserving insertion order.
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error)

	// QueryByOrderIDs retrieves the items of the given orders.
	QueryByOrderIDs(ctx context.Context, orderIDs []int64) ([]orderitem.OrderItem, error)
}
