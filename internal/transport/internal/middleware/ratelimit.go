package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jamesprial/hr-mcp-gateway/internal/ratelimit"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// NewRateLimitMiddleware creates middleware that admits or throttles calls
// per authenticated key. It must run after authentication; a request with
// no principal is rejected as unauthenticated.
// If logger is nil, it uses the default slog logger.
func NewRateLimitMiddleware(
	limiter ratelimit.Limiter,
	responder transportcore.ErrorResponder,
	logger *slog.Logger,
) transportcore.Middleware {
	if limiter == nil {
		panic("limiter cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := transportcore.PrincipalFromContext(r.Context())
			if !ok {
				responder.Unauthenticated(w, nil)
				return
			}

			d, err := limiter.Admit(r.Context(), principal.KeyID, principal.Tier)
			if err != nil {
				responder.Unavailable(w, err)
				return
			}

			if !d.Allowed {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					"key_id", principal.KeyID,
					"tier", principal.Tier,
					"limit", d.Limit,
					"retry_after_ms", d.RetryAfter.Milliseconds(),
					"request_id", transportcore.RequestIDFromContext(r.Context()),
				)
				responder.Throttled(w, ratelimit.ThrottledError(principal.KeyID, d))
				return
			}

			if d.Limit > 0 {
				w.Header().Set(apikey.HeaderRateLimitLimit, strconv.Itoa(d.Limit))
				w.Header().Set(apikey.HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
			}
			next.ServeHTTP(w, r)
		})
	}
}
