package transportcore

import (
	"context"
	"net/http"
	"strings"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDContextKey is the context key for the request ID.
	RequestIDContextKey contextKey = "request_id"
)

// PrincipalFromContext extracts the authenticated principal from the request context.
// Returns nil and false if the request was not authenticated.
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	return auth.PrincipalFromContext(ctx)
}

// ContextWithPrincipal adds the authenticated principal to the request context.
func ContextWithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return auth.ContextWithPrincipal(ctx, p)
}

// RequestIDFromContext extracts the request ID, or "" if none was assigned.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, RequestIDContextKey, id)
}

type callerKey struct{}

// Caller identifies the key behind a request. Middleware that runs before
// authentication installs an empty slot; authentication fills it.
type Caller struct {
	KeyID string
	Tier  string
}

// ContextWithCaller returns ctx carrying an empty Caller slot.
func ContextWithCaller(ctx context.Context) (context.Context, *Caller) {
	c := &Caller{}
	return context.WithValue(ctx, callerKey{}, c), c
}

// CallerFromContext returns the slot installed by ContextWithCaller, or nil.
func CallerFromContext(ctx context.Context) *Caller {
	c, _ := ctx.Value(callerKey{}).(*Caller)
	return c
}

// RecordCaller fills ctx's Caller slot from p. It is a no-op without a slot.
func RecordCaller(ctx context.Context, p *auth.Principal) {
	if c := CallerFromContext(ctx); c != nil && p != nil {
		c.KeyID = p.KeyID
		c.Tier = p.Tier
	}
}

// APIKeyFromRequest returns the presented API key. The X-API-Key header
// wins; "Authorization: Bearer <key>" is accepted as a fallback.
// Returns "" when neither carries a key.
func APIKeyFromRequest(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(apikey.HeaderAPIKey)); key != "" {
		return key
	}

	parts := strings.SplitN(r.Header.Get(apikey.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], apikey.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
