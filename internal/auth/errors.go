package auth

import (
	"github.com/jamesprial/hr-mcp-gateway/internal/auth/autherr"
)

// Sentinel errors for auth operations.
// These are used for error identification and testing.
// For creating domain errors with context, use the autherr package.
var (
	// ErrMissingKey indicates no key was presented.
	ErrMissingKey = autherr.ErrMissingKey

	// ErrInvalidKey indicates the presented key is not recognised.
	ErrInvalidKey = autherr.ErrInvalidKey

	// ErrRevokedKey indicates a signed key was revoked.
	ErrRevokedKey = autherr.ErrRevokedKey

	// ErrExpiredKey indicates a signed key has expired.
	ErrExpiredKey = autherr.ErrExpiredKey

	// ErrKeyNotFound indicates a key to revoke is not held.
	ErrKeyNotFound = autherr.ErrKeyNotFound

	// ErrSigningDisabled indicates signed keys were requested but no secret is configured.
	ErrSigningDisabled = autherr.ErrSigningDisabled
)
