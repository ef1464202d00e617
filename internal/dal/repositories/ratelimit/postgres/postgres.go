package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/shopline/notify/internal/dal/postgres"
	"github.com/corray333/shopline/notify/internal/service/models/ratelimit"
	"github.com/jackc/pgx/v5"
)

// RateLimitRepository implements rate limit record storage for PostgreSQL.
type RateLimitRepository struct {
	conn postgres.Querier
}

// NewRateLimitRepository creates a new rate limit repository.
func NewRateLimitRepository(conn postgres.Querier) *RateLimitRepository {
	return &RateLimitRepository{
		conn: conn,
	}
}

// GetForUpdate fetches the record for a key, locking the row when inside a
// transaction so concurrent checks on the same key serialize.
func (r *RateLimitRepository) GetForUpdate(ctx context.Context, key string) (ratelimit.Record, error) {
	query, args, err := sq.Select(
		"key",
		"attempts",
		"expires_at",
		"last_attempt",
	).
		From("rate_limits").
		Where(sq.Eq{"key": key}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return ratelimit.Record{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var rec ratelimit.Record
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&rec.Key,
		&rec.Attempts,
		&rec.ExpiresAt,
		&rec.LastAttempt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ratelimit.Record{}, ratelimit.ErrNotFound
		}

		return ratelimit.Record{}, fmt.Errorf("failed to get rate limit record: %w", err)
	}

	return rec, nil
}

// Upsert creates or replaces the record for its key.
func (r *RateLimitRepository) Upsert(ctx context.Context, rec ratelimit.Record) error {
	query, args, err := sq.Insert("rate_limits").
		Columns("key", "attempts", "expires_at", "last_attempt").
		Values(rec.Key, rec.Attempts, rec.ExpiresAt, rec.LastAttempt).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
			attempts = EXCLUDED.attempts,
			expires_at = EXCLUDED.expires_at,
			last_attempt = EXCLUDED.last_attempt`).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert rate limit record: %w", err)
	}

	return nil
}

// Delete removes the record for a key, if any.
func (r *RateLimitRepository) Delete(ctx context.Context, key string) error {
	query, args, err := sq.Delete("rate_limits").
		Where(sq.Eq{"key": key}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete rate limit record: %w", err)
	}

	return nil
}

// DeleteExpired removes all records whose window ended before now.
func (r *RateLimitRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := sq.Delete("rate_limits").
		Where(sq.Lt{"expires_at": now}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired rate limit records: %w", err)
	}

	return tag.RowsAffected(), nil
}
