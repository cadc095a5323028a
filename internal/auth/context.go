package auth

import "context"

type contextKey string

// PrincipalContextKey is the context key for the authenticated principal.
const PrincipalContextKey contextKey = "auth_principal"

// PrincipalFromContext extracts the authenticated principal.
// Returns nil and false if the request was not authenticated.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(PrincipalContextKey).(*Principal)
	return p, ok && p != nil
}

// ContextWithPrincipal stores the authenticated principal in ctx.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, PrincipalContextKey, p)
}
