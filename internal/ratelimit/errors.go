package ratelimit

import (
	"errors"
	"math"
	"time"

	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
)

// Sentinel errors for rate-limit operations.
var (
	// ErrRateLimited is the cause carried by throttled errors.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnknownPolicy indicates an unsupported policy name.
	ErrUnknownPolicy = errors.New("unknown rate limit policy")

	// ErrBackend indicates the counting backend failed.
	ErrBackend = errors.New("rate limit backend failure")
)

// Context keys set by ThrottledError.
const (
	ContextKeyID     = "key_id"
	ContextLimit     = "limit"
	ContextRemaining = "remaining"
)

// ThrottledError converts a denied decision into a DomainError carrying the
// retry hint and the quota.
func ThrottledError(key string, d Decision) *ierrors.DomainError {
	return ierrors.New("ratelimit", "Admit", ierrors.ErrThrottled, ErrRateLimited).
		WithContext(ierrors.ContextRetryAfter, d.RetryAfter).
		WithContext(ContextKeyID, key).
		WithContext(ContextLimit, d.Limit).
		WithContext(ContextRemaining, max(d.Remaining, 0))
}

// Quota reports the limit and remaining calls carried by a throttled error.
func Quota(err error) (limit, remaining int, ok bool) {
	l, ok := ierrors.Lookup(err, ContextLimit)
	if !ok {
		return 0, 0, false
	}
	limit, ok = l.(int)
	if !ok {
		return 0, 0, false
	}
	if r, found := ierrors.Lookup(err, ContextRemaining); found {
		remaining, _ = r.(int)
	}
	return limit, remaining, true
}

// RetryAfterSeconds rounds a retry hint up to whole seconds, never below one.
func RetryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
