package errors

import (
	"errors"
	"time"
)

// Stable error kind strings surfaced to callers. Clients branch on these,
// so they must never change.
const (
	KindUnauthenticated       = "Unauthenticated"
	KindForbidden             = "Forbidden"
	KindThrottled             = "Throttled"
	KindPoolExhausted         = "PoolExhausted"
	KindUnknownTool           = "UnknownTool"
	KindInvalidArguments      = "InvalidArguments"
	KindUpstreamError         = "UpstreamError"
	KindBusinessRuleViolation = "BusinessRuleViolation"
	KindInternal              = "InternalError"
)

// Context keys understood across packages.
const (
	// ContextRetryAfter holds a time.Duration hint on throttled errors.
	ContextRetryAfter = "retry_after"

	// ContextField names the offending argument on bad-request errors.
	ContextField = "field"
)

// kindOrder is the precedence used by KindOf. A rule violation wrapping an
// upstream error is still reported as a rule violation.
var kindOrder = []struct {
	sentinel error
	kind     string
}{
	{ErrUnauthorized, KindUnauthenticated},
	{ErrForbidden, KindForbidden},
	{ErrThrottled, KindThrottled},
	{ErrExhausted, KindPoolExhausted},
	{ErrUnknownTool, KindUnknownTool},
	{ErrBadRequest, KindInvalidArguments},
	{ErrRuleViolation, KindBusinessRuleViolation},
	{ErrUpstream, KindUpstreamError},
}

// KindOf maps err to its stable kind string.
// Errors outside the taxonomy report KindInternal; nil reports "".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kindOrder {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindInternal
}

// Retryable reports whether a caller may retry the failed call later.
func Retryable(kind string) bool {
	switch kind {
	case KindThrottled, KindPoolExhausted, KindUpstreamError:
		return true
	default:
		return false
	}
}

// RetryAfter extracts the retry hint attached to a throttled error.
func RetryAfter(err error) (time.Duration, bool) {
	v, ok := Lookup(err, ContextRetryAfter)
	if !ok {
		return 0, false
	}
	d, ok := v.(time.Duration)
	return d, ok
}

// Field extracts the offending argument name attached to a bad-request error.
func Field(err error) string {
	v, ok := Lookup(err, ContextField)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
