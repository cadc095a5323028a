// Package autherr provides credential error constructors.
// This package is separate from internal/auth to avoid import cycles
// when internal packages need to create auth errors.
package autherr

import (
	"errors"

	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
)

// Domain identifier for auth errors.
const domainAuth = "auth"

// Sentinel causes. The auth package re-exports these.
var (
	ErrMissingKey      = errors.New("api key required")
	ErrInvalidKey      = errors.New("invalid api key")
	ErrRevokedKey      = errors.New("api key revoked")
	ErrExpiredKey      = errors.New("api key expired")
	ErrKeyNotFound     = errors.New("api key not found")
	ErrSigningDisabled = errors.New("signed keys are not configured")
)

// NewMissingKeyError creates a DomainError for a request without credentials.
func NewMissingKeyError(op string) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrUnauthorized, ErrMissingKey)
}

// NewInvalidKeyError creates a DomainError for an unknown or malformed key.
func NewInvalidKeyError(op string, err error) *ierrors.DomainError {
	if err == nil {
		err = ErrInvalidKey
	}
	return ierrors.New(domainAuth, op, ierrors.ErrUnauthorized, err)
}

// NewExpiredKeyError creates a DomainError for a signed key past its expiry.
func NewExpiredKeyError(op string, err error) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrUnauthorized, errors.Join(ErrExpiredKey, err))
}

// NewRevokedKeyError creates a DomainError for a signed key on the deny list.
func NewRevokedKeyError(op, keyID string) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrUnauthorized, ErrRevokedKey).
		WithContext("key_id", keyID)
}

// NewKeyNotFoundError creates a DomainError for revoking a key that is not held.
func NewKeyNotFoundError(op string) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrRuleViolation, ErrKeyNotFound)
}

// NewBadRequestError creates a DomainError for invalid key-management input.
func NewBadRequestError(op, field string, err error) *ierrors.DomainError {
	return ierrors.New(domainAuth, op, ierrors.ErrBadRequest, err).
		WithContext(ierrors.ContextField, field)
}
