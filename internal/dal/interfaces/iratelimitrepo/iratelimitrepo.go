package iratelimitrepo

import (
	"context"
	"time"

	"github.com/corray333/shopline/notify/internal/service/models/ratelimit"
)

// IRateLimitRepository defines the rate limit record storage operations.
// GetForUpdate inside a transaction serializes concurrent checks on the
// same key.
type IRateLimitRepository interface {
	// GetForUpdate fetches the record for a key, locking the row when
	// called inside a transaction. Returns ratelimit.ErrNotFound when no
	// record exists.
	GetForUpdate(ctx context.Context, key string) (ratelimit.Record, error)

	// Upsert creates or replaces the record for its key.
	Upsert(ctx context.Context, rec ratelimit.Record) error

	// Delete removes the record for a key, if any.
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes all records whose window ended before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
