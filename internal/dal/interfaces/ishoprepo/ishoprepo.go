package ishoprepo

import (
	"context"

	"github.com/corray333/shopline/notify/internal/service/models/shop"
)

// IShopRepository defines the shop lookup operations.
type IShopRepository interface {
	// GetByID returns shop.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id int64) (shop.Shop, error)

	// ListByOwner returns the shops owned by a user.
	ListByOwner(ctx context.Context, ownerID int64) ([]shop.Shop, error)
}
