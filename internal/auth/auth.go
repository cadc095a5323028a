// Package auth provides API-key credential storage and verification for the
// HR MCP gateway. It answers one question for the transport layer: does a
// presented key identify a caller, and if so, which one.
package auth

import (
	"context"
	"slices"
	"time"
)

// CredentialStore authenticates presented API keys.
// Implementations must compare keys in constant time and be safe for
// concurrent use.
type CredentialStore interface {
	// Authenticate resolves a presented key to a Principal.
	//
	// Returns an error whose kind is ErrUnauthorized from internal/errors
	// when the key is missing, unknown, expired or revoked.
	Authenticate(ctx context.Context, presented string) (*Principal, error)
}

// KeyManager administers the keys held by a CredentialStore.
type KeyManager interface {
	// Generate mints a new opaque key that is usable immediately.
	// The raw key is returned once and never stored in logs.
	Generate(ctx context.Context, req GenerateRequest) (string, *KeyInfo, error)

	// List returns the keys currently held, masked for display.
	List(ctx context.Context) []KeyInfo

	// Revoke removes an opaque key or denies a signed key.
	Revoke(ctx context.Context, key string) error

	// Reload replaces the static key set atomically.
	// Generated keys are kept.
	Reload(ctx context.Context, keys []StaticKey) error
}

// Minter mints signed keys that verify without a shared key list.
type Minter interface {
	Mint(req GenerateRequest) (string, *KeyInfo, error)
}

// Principal is the identity resolved from a valid key.
type Principal struct {
	// KeyID is a stable, non-secret identifier used for rate limiting and logs.
	KeyID string

	// Label is a human-readable description of the key's owner.
	Label string

	// Tier selects the caller's rate-limit rule.
	Tier string

	// Scopes lists the tool scopes granted to this key.
	Scopes []string

	// Source records how the key was issued (static, generated, signed, dev).
	Source string

	// ExpiresAt is zero for keys that never expire.
	ExpiresAt time.Time
}

// HasScope returns true if the principal has the specified scope.
func (p *Principal) HasScope(scope string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Scopes, scope)
}

// HasAllScopes returns true if the principal has all specified scopes.
// Returns true if scopes is empty (vacuous truth).
func (p *Principal) HasAllScopes(scopes ...string) bool {
	if p == nil {
		return len(scopes) == 0
	}
	for _, required := range scopes {
		if !p.HasScope(required) {
			return false
		}
	}
	return true
}

// StaticKey is a key supplied by configuration.
type StaticKey struct {
	Key    string
	Label  string
	Tier   string
	Scopes []string
}

// GenerateRequest describes a key to create.
type GenerateRequest struct {
	Description string
	Tier        string
	Scopes      []string

	// TTL only applies to signed keys. Zero means no expiry.
	TTL time.Duration
}

// KeyInfo is the display form of a held key.
type KeyInfo struct {
	KeyID     string    `json:"key_id"`
	Masked    string    `json:"key"`
	Label     string    `json:"description"`
	Tier      string    `json:"tier"`
	Scopes    []string  `json:"scopes"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// SourceSigned marks principals resolved from signed keys.
const SourceSigned = "signed"
