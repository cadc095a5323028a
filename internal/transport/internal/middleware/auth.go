// Package middleware provides HTTP middleware for the transport layer.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// authMiddleware implements transportcore.AuthMiddleware.
type authMiddleware struct {
	store     auth.CredentialStore
	responder transportcore.ErrorResponder
	logger    *slog.Logger
}

// NewAuthMiddleware creates API-key authentication middleware.
// It resolves presented keys with the provided CredentialStore and stores
// the resulting principal in the request context.
// If logger is nil, it uses the default slog logger.
func NewAuthMiddleware(
	store auth.CredentialStore,
	responder transportcore.ErrorResponder,
	logger *slog.Logger,
) transportcore.AuthMiddleware {
	if store == nil {
		panic("credential store cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &authMiddleware{
		store:     store,
		responder: responder,
		logger:    logger,
	}
}

// Authenticate resolves the API key and adds the principal to context.
// Rejected requests never reach the next handler.
//
// Returns 401 Unauthorized if the key is missing or not accepted.
func (m *authMiddleware) Authenticate() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := transportcore.APIKeyFromRequest(r)

			principal, err := m.store.Authenticate(r.Context(), presented)
			if err != nil {
				attrs := []any{
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"request_id", transportcore.RequestIDFromContext(r.Context()),
					"error", err,
				}
				if presented != "" {
					attrs = append(attrs, "key_prefix", apikey.Prefix(presented))
				}
				m.logger.WarnContext(r.Context(), "authentication failed", attrs...)
				m.responder.Unauthenticated(w, err)
				return
			}

			transportcore.RecordCaller(r.Context(), principal)
			ctx := transportcore.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
