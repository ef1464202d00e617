package iadvertisementrepo

import (
	"context"

	"github.com/corray333/shopline/notify/internal/service/models/advertisement"
)

// IAdvertisementRepository defines the advertisement storage operations.
type IAdvertisementRepository interface {
	// Insert persists a new advertisement and returns it with its assigned id.
	Insert(ctx context.Context, ad advertisement.Advertisement) (advertisement.Advertisement, error)

	// GetByID returns advertisement.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, id int64) (advertisement.Advertisement, error)

	// Update persists message, media and discount fields. Notification
	// history is untouched.
	Update(ctx context.Context, ad advertisement.Advertisement) error

	// SetNotificationsSent overwrites the last-broadcast counter.
	SetNotificationsSent(ctx context.Context, id int64, sent int) error

	// Delete removes the advertisement. Associated notification rows are
	// removed by the storage layer's cascade.
	Delete(ctx context.Context, id int64) error
}
