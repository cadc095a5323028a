// Package ratelimit admits or throttles calls per API key. The counting
// algorithm is a policy chosen at startup: an in-memory fixed window, an
// in-memory token bucket, or a fixed window shared through Redis.
package ratelimit

import (
	"context"
	"time"
)

// Policy names accepted by New.
const (
	PolicyFixedWindow      = "fixed_window"
	PolicyTokenBucket      = "token_bucket"
	PolicyRedisFixedWindow = "redis_fixed_window"
)

// Limiter decides whether a caller may proceed.
// Admission is non-blocking: it never waits for quota to free up.
type Limiter interface {
	// Admit counts one call for key under the rule selected by tier.
	//
	// A throttled call is reported through Decision.Allowed, not through
	// the error; the error is reserved for backend failures.
	Admit(ctx context.Context, key, tier string) (Decision, error)
}

// Store is a counting backend. Take counts one call for key under rule and
// must be atomic per key.
type Store interface {
	Take(ctx context.Context, key string, rule Rule, now time.Time) (Decision, error)
}

// Rule bounds calls per window. A Limit of zero or less means unlimited.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Unlimited reports whether the rule admits everything.
func (r Rule) Unlimited() bool {
	return r.Limit <= 0 || r.Window <= 0
}

// Decision is the outcome of one admission.
type Decision struct {
	Allowed bool

	// Limit is the rule's quota; zero when unlimited.
	Limit int

	// Remaining is the number of calls left in the current window.
	Remaining int

	// RetryAfter is positive when the call was throttled.
	RetryAfter time.Duration

	// ResetAt is when the current window ends.
	ResetAt time.Time
}

// StatsRecorder receives every admission outcome.
type StatsRecorder interface {
	Record(ctx context.Context, ev Event) error
}

// Event is one admission outcome.
type Event struct {
	Key     string
	Tier    string
	Allowed bool
	At      time.Time
}
