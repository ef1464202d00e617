package ratelimit

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("rate limit record not found")

// Record is a fixed-window attempt counter for one key. A record whose
// window has passed is treated as absent and replaced on the next attempt.
type Record struct {
	Key         string    `json:"key"`
	Attempts    int       `json:"attempts"`
	ExpiresAt   time.Time `json:"expiresAt"`
	LastAttempt time.Time `json:"lastAttempt"`
}

// Expired reports whether the record's window has ended at the given time.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Result is the outcome of a rate limit check. A denied check is not an
// error: callers translate RetryAfter into a user-facing message.
type Result struct {
	Allowed    bool          `json:"allowed"`
	Remaining  int           `json:"remaining"`
	ResetAt    time.Time     `json:"resetAt"`
	RetryAfter time.Duration `json:"retryAfter,omitempty"`
}
