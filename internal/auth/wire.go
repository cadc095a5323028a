package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth/autherr"
	"github.com/jamesprial/hr-mcp-gateway/internal/auth/internal/keyset"
	"github.com/jamesprial/hr-mcp-gateway/internal/auth/internal/signed"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// Config holds the configuration needed to construct auth services.
type Config struct {
	// Keys are the static keys accepted at startup.
	Keys []StaticKey

	// DevKey, when set, is accepted in addition to Keys and reported with
	// source "dev".
	DevKey string

	// SigningSecret enables signed keys when non-empty (at least 32 bytes).
	SigningSecret string

	// Issuer is the iss claim of signed keys.
	Issuer string

	// ClockSkew is the leeway applied to signed key expiry.
	ClockSkew time.Duration

	// Logger receives audit entries. Defaults to slog.Default().
	Logger *slog.Logger
}

// service implements CredentialStore, KeyManager and Minter.
type service struct {
	keys   *keyset.Set
	signer *signed.Signer
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthServices creates all auth services from the configuration.
// This is a convenience function for dependency injection.
func NewAuthServices(cfg *Config) (CredentialStore, KeyManager, Minter, error) {
	svc, err := newService(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return svc, svc, svc, nil
}

// NewMinter creates a Minter for offline key minting.
func NewMinter(cfg *Config) (Minter, error) {
	svc, err := newService(cfg)
	if err != nil {
		return nil, err
	}
	if svc.signer == nil {
		return nil, ErrSigningDisabled
	}
	return svc, nil
}

func newService(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	entries := toEntries(cfg.Keys, keyset.SourceStatic)
	if cfg.DevKey != "" {
		entries = append(entries, keyset.Entry{
			Key:    cfg.DevKey,
			Label:  "development",
			Tier:   apikey.TierDefault,
			Scopes: DefaultStaticScopes,
			Source: keyset.SourceDev,
		})
	}

	svc := &service{
		keys:   keyset.New(entries),
		logger: logger,
		now:    time.Now,
	}

	if cfg.SigningSecret != "" {
		signer, err := signed.NewSigner([]byte(cfg.SigningSecret), cfg.Issuer, cfg.ClockSkew)
		if err != nil {
			return nil, err
		}
		svc.signer = signer
	}
	return svc, nil
}

// Authenticate resolves a presented key to a Principal.
func (s *service) Authenticate(ctx context.Context, presented string) (*Principal, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, autherr.NewMissingKeyError("Authenticate")
	}

	if s.signer != nil && signed.LooksSigned(presented) {
		claims, err := s.signer.Verify(presented)
		if err != nil {
			return nil, err
		}
		return &Principal{
			KeyID:     signedKeyID(claims.JTI),
			Label:     claims.Label,
			Tier:      tierOrDefault(claims.Tier),
			Scopes:    scopesOrDefault(claims.Scopes, DefaultGeneratedScopes),
			Source:    SourceSigned,
			ExpiresAt: claims.ExpiresAt,
		}, nil
	}

	m, ok := s.keys.Lookup(presented)
	if !ok {
		return nil, autherr.NewInvalidKeyError("Authenticate", nil)
	}
	return &Principal{
		KeyID:  m.KeyID,
		Label:  m.Label,
		Tier:   tierOrDefault(m.Tier),
		Scopes: m.Scopes,
		Source: m.Source,
	}, nil
}

// Generate mints a new opaque key and holds it in memory.
func (s *service) Generate(ctx context.Context, req GenerateRequest) (string, *KeyInfo, error) {
	if strings.TrimSpace(req.Description) == "" {
		return "", nil, autherr.NewBadRequestError("Generate", "description", errors.New("description is required"))
	}
	key, err := newGeneratedKey()
	if err != nil {
		return "", nil, err
	}

	scopes := scopesOrDefault(req.Scopes, DefaultGeneratedScopes)
	m := s.keys.Add(keyset.Entry{
		Key:       key,
		Label:     req.Description,
		Tier:      tierOrDefault(req.Tier),
		Scopes:    scopes,
		Source:    keyset.SourceGenerated,
		CreatedAt: s.now().UTC(),
	})

	s.logger.InfoContext(ctx, "api key generated",
		"key_id", m.KeyID,
		"description", req.Description,
		"tier", m.Tier,
	)

	return key, &KeyInfo{
		KeyID:     m.KeyID,
		Masked:    apikey.Mask(key),
		Label:     m.Label,
		Tier:      m.Tier,
		Scopes:    m.Scopes,
		Source:    m.Source,
		CreatedAt: m.CreatedAt,
	}, nil
}

// List returns the held opaque keys, masked. Signed keys are not held and
// therefore not listed.
func (s *service) List(ctx context.Context) []KeyInfo {
	entries := s.keys.Entries()
	out := make([]KeyInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, KeyInfo{
			KeyID:     keyset.KeyID(e.Key),
			Masked:    apikey.Mask(e.Key),
			Label:     e.Label,
			Tier:      tierOrDefault(e.Tier),
			Scopes:    e.Scopes,
			Source:    e.Source,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

// Revoke removes an opaque key or denies a signed key.
func (s *service) Revoke(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return autherr.NewBadRequestError("Revoke", "key_to_revoke", errors.New("key is required"))
	}

	if s.signer != nil && signed.LooksSigned(key) {
		claims, err := s.signer.Verify(key)
		if err != nil {
			return autherr.NewKeyNotFoundError("Revoke")
		}
		s.signer.Revoke(claims.JTI, claims.ExpiresAt)
		s.logger.InfoContext(ctx, "signed api key revoked", "key_id", signedKeyID(claims.JTI))
		return nil
	}

	if !s.keys.Remove(key) {
		return autherr.NewKeyNotFoundError("Revoke")
	}
	s.logger.InfoContext(ctx, "api key revoked", "key_id", keyset.KeyID(key))
	return nil
}

// Reload replaces the static key set.
func (s *service) Reload(ctx context.Context, keys []StaticKey) error {
	s.keys.Replace(toEntries(keys, keyset.SourceStatic))
	if s.signer != nil {
		s.signer.PruneRevoked()
	}
	s.logger.InfoContext(ctx, "api keys reloaded", "static_keys", len(keys))
	return nil
}

// Mint creates a signed key.
func (s *service) Mint(req GenerateRequest) (string, *KeyInfo, error) {
	if s.signer == nil {
		return "", nil, autherr.NewBadRequestError("Mint", "signing_secret", ErrSigningDisabled)
	}
	key, claims, err := s.signer.Mint(signed.MintParams{
		Label:  req.Description,
		Tier:   tierOrDefault(req.Tier),
		Scopes: scopesOrDefault(req.Scopes, DefaultGeneratedScopes),
		TTL:    req.TTL,
	})
	if err != nil {
		return "", nil, autherr.NewBadRequestError("Mint", "description", err)
	}
	return key, &KeyInfo{
		KeyID:     signedKeyID(claims.JTI),
		Masked:    apikey.Mask(key),
		Label:     claims.Label,
		Tier:      claims.Tier,
		Scopes:    claims.Scopes,
		Source:    SourceSigned,
		CreatedAt: claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func toEntries(keys []StaticKey, source string) []keyset.Entry {
	entries := make([]keyset.Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, keyset.Entry{
			Key:    k.Key,
			Label:  k.Label,
			Tier:   tierOrDefault(k.Tier),
			Scopes: scopesOrDefault(k.Scopes, DefaultStaticScopes),
			Source: source,
		})
	}
	return entries
}

func signedKeyID(jti string) string {
	if len(jti) > 12 {
		jti = jti[:12]
	}
	return "jti_" + jti
}

func tierOrDefault(tier string) string {
	if tier == "" {
		return apikey.TierDefault
	}
	return tier
}

func scopesOrDefault(scopes, def []string) []string {
	if len(scopes) == 0 {
		return append([]string(nil), def...)
	}
	return scopes
}
