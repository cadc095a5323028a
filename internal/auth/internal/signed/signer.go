// Package signed mints and verifies self-describing API keys. A signed key
// is an HS256 JWT carrying the key's label, tier and scopes, so replicas can
// verify it without a shared key list.
package signed

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth/autherr"
)

// Claims are the validated contents of a signed key.
type Claims struct {
	Label     string
	Tier      string
	Scopes    []string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// MintParams describes a key to mint. A zero TTL mints a key that never expires.
type MintParams struct {
	Label  string
	Tier   string
	Scopes []string
	TTL    time.Duration
}

type keyClaims struct {
	Scope string `json:"scope,omitempty"`
	Tier  string `json:"tier,omitempty"`
	jwt.RegisteredClaims
}

// Signer mints and verifies signed keys and tracks revoked key IDs.
type Signer struct {
	secret    []byte
	issuer    string
	clockSkew time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewSigner creates a signer. The secret must be at least 32 bytes.
func NewSigner(secret []byte, issuer string, clockSkew time.Duration) (*Signer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("signing secret must be at least 32 bytes, got %d", len(secret))
	}
	return &Signer{
		secret:    secret,
		issuer:    issuer,
		clockSkew: clockSkew,
		now:       time.Now,
		revoked:   make(map[string]time.Time),
	}, nil
}

// WithClock replaces the signer's time source. Intended for tests.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// Mint creates a signed key.
func (s *Signer) Mint(p MintParams) (string, *Claims, error) {
	if strings.TrimSpace(p.Label) == "" {
		return "", nil, errors.New("label is required")
	}
	now := s.now()
	rc := jwt.RegisteredClaims{
		Issuer:   s.issuer,
		Subject:  p.Label,
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if p.TTL > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(p.TTL))
	}

	kc := keyClaims{
		Scope:            strings.Join(p.Scopes, " "),
		Tier:             p.Tier,
		RegisteredClaims: rc,
	}
	signedKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, kc).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign key: %w", err)
	}

	return signedKey, toClaims(&kc), nil
}

// Verify validates a signed key and returns its claims.
func (s *Signer) Verify(key string) (*Claims, error) {
	var kc keyClaims
	token, err := jwt.ParseWithClaims(key, &kc, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherr.NewExpiredKeyError("Verify", err)
		}
		return nil, autherr.NewInvalidKeyError("Verify", errors.Join(autherr.ErrInvalidKey, err))
	}
	if !token.Valid {
		return nil, autherr.NewInvalidKeyError("Verify", nil)
	}
	if kc.Subject == "" || kc.ID == "" {
		return nil, autherr.NewInvalidKeyError("Verify", fmt.Errorf("%w: missing sub or jti", autherr.ErrInvalidKey))
	}
	if s.isRevoked(kc.ID) {
		return nil, autherr.NewRevokedKeyError("Verify", kc.ID)
	}
	return toClaims(&kc), nil
}

// Revoke denies a key ID until the given time. A zero time denies it for
// the life of the process.
func (s *Signer) Revoke(jti string, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = until
}

// PruneRevoked drops deny entries whose keys have expired anyway.
func (s *Signer) PruneRevoked() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for jti, until := range s.revoked {
		if !until.IsZero() && now.After(until.Add(s.clockSkew)) {
			delete(s.revoked, jti)
			pruned++
		}
	}
	return pruned
}

func (s *Signer) isRevoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[jti]
	return ok
}

// LooksSigned reports whether key has the shape of a signed key.
// It does not validate anything.
func LooksSigned(key string) bool {
	return strings.HasPrefix(key, "eyJ") && strings.Count(key, ".") == 2
}

func toClaims(kc *keyClaims) *Claims {
	c := &Claims{
		Label:  kc.Subject,
		Tier:   kc.Tier,
		Scopes: parseScopes(kc.Scope),
		JTI:    kc.ID,
	}
	if kc.IssuedAt != nil {
		c.IssuedAt = kc.IssuedAt.Time
	}
	if kc.ExpiresAt != nil {
		c.ExpiresAt = kc.ExpiresAt.Time
	}
	return c
}

// parseScopes parses a space-separated scope string into a slice.
func parseScopes(scopeStr string) []string {
	scopes := strings.Fields(scopeStr)
	if len(scopes) == 0 {
		return nil
	}
	return scopes
}
