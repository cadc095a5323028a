// Package apikey provides shared API-key types and constants for the HR MCP gateway.
package apikey

// Scope constants for tool access.
const (
	// ScopeRead allows calling the read-only HR tools.
	ScopeRead = "hr:read"

	// ScopeAdmin allows generating, listing and revoking API keys.
	ScopeAdmin = "keys:admin"
)

// Rate tier names. A key's tier selects its rate-limit rule.
const (
	TierDefault   = "default"
	TierElevated  = "elevated"
	TierUnlimited = "unlimited"
)

// Key formats.
const (
	// GeneratedPrefix prefixes keys minted at runtime by generate_api_key.
	GeneratedPrefix = "ttmcp-"

	// DevPrefix prefixes the development key created when none is configured.
	DevPrefix = "dev-key-"
)

// HTTP header names.
const (
	// HeaderAPIKey carries the caller's API key.
	HeaderAPIKey = "X-API-Key"

	// HeaderAuthorization is accepted as an alternative credential field
	// in the form "Bearer <key>".
	HeaderAuthorization = "Authorization"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"

	// HeaderRetryAfter tells throttled callers when to retry, in seconds.
	HeaderRetryAfter = "Retry-After"

	// HeaderRateLimitLimit reports the caller's window quota.
	HeaderRateLimitLimit = "X-RateLimit-Limit"

	// HeaderRateLimitRemaining reports calls left in the current window.
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"

	// HeaderRequestID correlates a request across logs.
	HeaderRequestID = "X-Request-ID"
)

// BearerScheme is the Authorization scheme accepted for API keys.
const BearerScheme = "Bearer"

// ContentTypeJSON is the application/json content type.
const ContentTypeJSON = "application/json"

// Mask hides all but the edges of a key for display.
// Keys of eight characters or fewer are fully hidden.
func Mask(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:6] + "..." + key[len(key)-4:]
}

// Prefix returns the first eight characters of a key followed by an
// ellipsis, suitable for audit logs.
func Prefix(key string) string {
	if len(key) <= 8 {
		return key + "..."
	}
	return key[:8] + "..."
}
