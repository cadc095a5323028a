package transport

import (
	"context"
	"net/http"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
)

// Re-export context helpers from transportcore for backward compatibility.
// This allows external packages to import transport without creating cycles.

// RequestIDContextKey is the context key for the request ID.
const RequestIDContextKey = transportcore.RequestIDContextKey

// PrincipalFromContext extracts the authenticated principal from the request context.
// Returns nil and false if the request was not authenticated.
//
// This is used by handlers that need to know which key made the call.
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	return transportcore.PrincipalFromContext(ctx)
}

// ContextWithPrincipal adds the authenticated principal to the request context.
// Returns a new context containing the principal.
//
// This is used by authentication middleware to store the resolved caller.
func ContextWithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return transportcore.ContextWithPrincipal(ctx, p)
}

// RequestIDFromContext extracts the request ID, or "" if none was assigned.
func RequestIDFromContext(ctx context.Context) string {
	return transportcore.RequestIDFromContext(ctx)
}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return transportcore.ContextWithRequestID(ctx, id)
}

// APIKeyFromRequest returns the presented API key from X-API-Key or
// "Authorization: Bearer <key>", or "" if neither is set.
func APIKeyFromRequest(r *http.Request) string {
	return transportcore.APIKeyFromRequest(r)
}
