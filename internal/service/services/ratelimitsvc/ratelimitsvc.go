package ratelimitsvc

import (
	"context"
	"errors"
	"time"

	"github.com/corray333/shopline/notify/internal/dal/interfaces/iratelimitrepo"
	"github.com/corray333/shopline/notify/internal/dal/postgres"
	"github.com/corray333/shopline/notify/internal/dal/uow"
	"github.com/corray333/shopline/notify/internal/service/models/ratelimit"
)

// RateLimitService is a generic fixed-window attempt limiter. Each check
// runs inside a transaction with the record row locked, so two concurrent
// requests on the same key cannot both pass the attempts check.
type RateLimitService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
	now        func() time.Time
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	RateLimitRepository() iratelimitrepo.IRateLimitRepository
}

// option is a function that configures the RateLimitService.
type option func(*RateLimitService)

// MustNewRateLimitService creates a new RateLimitService.
func MustNewRateLimitService(opts ...option) *RateLimitService {
	s := &RateLimitService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		if s.pgClient == nil {
			panic("ratelimitsvc: postgres client is not configured")
		}
		s.uowFactory = func() unitOfWork { return uow.NewUnitOfWork(s.pgClient) }
	}

	return s
}

// WithPostgresClient sets the Postgres client for the RateLimitService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *RateLimitService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides the unit of work construction.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *RateLimitService) {
		s.uowFactory = factory
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *RateLimitService) {
		s.now = now
	}
}

// Check records an attempt for the key under a fixed window. A fresh or
// expired window starts a new record with one attempt. Within a live
// window, attempts increment up to maxAttempts; once the cap is reached,
// further checks are denied without incrementing until the window ends.
func (s *RateLimitService) Check(
	ctx context.Context,
	key string,
	maxAttempts int,
	window time.Duration,
) (ratelimit.Result, error) {
	work := s.uowFactory()
	if err := work.Begin(ctx); err != nil {
		return ratelimit.Result{}, err
	}
	defer work.Rollback(ctx) //nolint:errcheck // no-op after commit

	now := s.now()
	repo := work.RateLimitRepository()

	rec, err := repo.GetForUpdate(ctx, key)
	switch {
	case errors.Is(err, ratelimit.ErrNotFound), err == nil && rec.Expired(now):
		rec = ratelimit.Record{
			Key:         key,
			Attempts:    1,
			ExpiresAt:   now.Add(window),
			LastAttempt: now,
		}
		if err := repo.Upsert(ctx, rec); err != nil {
			return ratelimit.Result{}, err
		}
		if err := work.Commit(ctx); err != nil {
			return ratelimit.Result{}, err
		}

		return ratelimit.Result{
			Allowed:   true,
			Remaining: maxAttempts - 1,
			ResetAt:   rec.ExpiresAt,
		}, nil

	case err != nil:
		return ratelimit.Result{}, err
	}

	if rec.Attempts >= maxAttempts {
		// Denied checks do not consume an attempt.
		if err := work.Commit(ctx); err != nil {
			return ratelimit.Result{}, err
		}

		return ratelimit.Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    rec.ExpiresAt,
			RetryAfter: rec.ExpiresAt.Sub(now),
		}, nil
	}

	rec.Attempts++
	rec.LastAttempt = now
	if err := repo.Upsert(ctx, rec); err != nil {
		return ratelimit.Result{}, err
	}
	if err := work.Commit(ctx); err != nil {
		return ratelimit.Result{}, err
	}

	return ratelimit.Result{
		Allowed:   true,
		Remaining: maxAttempts - rec.Attempts,
		ResetAt:   rec.ExpiresAt,
	}, nil
}

// Reset unconditionally deletes the record for a key, letting the caller
// start a fresh window on their next legitimate attempt.
func (s *RateLimitService) Reset(ctx context.Context, key string) error {
	return s.uowFactory().RateLimitRepository().Delete(ctx, key)
}

// SweepExpired deletes all records whose window has ended. Storage hygiene
// only: Check treats expired records as absent either way.
func (s *RateLimitService) SweepExpired(ctx context.Context) (int64, error) {
	return s.uowFactory().RateLimitRepository().DeleteExpired(ctx, s.now())
}
