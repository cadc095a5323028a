package auth

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServices(t *testing.T, secret string) (CredentialStore, KeyManager, Minter) {
	t.Helper()
	store, manager, minter, err := NewAuthServices(&Config{
		Keys: []StaticKey{
			{Key: "valid-key-1", Label: "ops"},
			{Key: "valid-key-2", Label: "reporting", Tier: apikey.TierElevated, Scopes: []string{apikey.ScopeRead}},
		},
		SigningSecret: secret,
		Issuer:        "hr-mcp-gateway",
		ClockSkew:     time.Minute,
	})
	require.NoError(t, err)
	return store, manager, minter
}

func TestAuthenticate_StaticKeys(t *testing.T) {
	t.Parallel()

	store, _, _ := newTestServices(t, "")
	ctx := context.Background()

	tests := []struct {
		name      string
		presented string
		wantKind  string
		wantLabel string
		wantTier  string
	}{
		{name: "valid default tier", presented: "valid-key-1", wantLabel: "ops", wantTier: apikey.TierDefault},
		{name: "surrounding whitespace trimmed", presented: "  valid-key-2 ", wantLabel: "reporting", wantTier: apikey.TierElevated},
		{name: "missing key", presented: "", wantKind: ierrors.KindUnauthenticated},
		{name: "unknown key", presented: "not-a-key", wantKind: ierrors.KindUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := store.Authenticate(ctx, tt.presented)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, ierrors.KindOf(err))
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, p.Label)
			assert.Equal(t, tt.wantTier, p.Tier)
			assert.True(t, strings.HasPrefix(p.KeyID, "key_"))
			assert.NotContains(t, p.KeyID, "valid-key")
		})
	}
}

func TestAuthenticate_MissingVsInvalid(t *testing.T) {
	t.Parallel()

	store, _, _ := newTestServices(t, "")
	_, err := store.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = store.Authenticate(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestPrincipal_Scopes(t *testing.T) {
	t.Parallel()

	store, _, _ := newTestServices(t, "")
	ops, err := store.Authenticate(context.Background(), "valid-key-1")
	require.NoError(t, err)
	assert.True(t, ops.HasAllScopes(apikey.ScopeRead, apikey.ScopeAdmin), "static keys default to read+admin")

	reporting, err := store.Authenticate(context.Background(), "valid-key-2")
	require.NoError(t, err)
	assert.True(t, reporting.HasScope(apikey.ScopeRead))
	assert.False(t, reporting.HasScope(apikey.ScopeAdmin))

	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.HasScope(apikey.ScopeRead))
	assert.True(t, nilPrincipal.HasAllScopes())
}

func TestKeyManager_GenerateListRevoke(t *testing.T) {
	t.Parallel()

	store, manager, _ := newTestServices(t, "")
	ctx := context.Background()

	key, info, err := manager.Generate(ctx, GenerateRequest{Description: "reporting dashboard"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, apikey.GeneratedPrefix))
	assert.Len(t, key, len(apikey.GeneratedPrefix)+64)
	assert.Equal(t, apikey.Mask(key), info.Masked)
	assert.Equal(t, []string{apikey.ScopeRead}, info.Scopes)

	p, err := store.Authenticate(ctx, key)
	require.NoError(t, err, "generated key is usable immediately")
	assert.Equal(t, "reporting dashboard", p.Label)

	listed := manager.List(ctx)
	require.Len(t, listed, 3)
	for _, k := range listed {
		assert.NotContains(t, k.Masked, "valid-key-1"[6:])
	}

	require.NoError(t, manager.Revoke(ctx, key))
	_, err = store.Authenticate(ctx, key)
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = manager.Revoke(ctx, key)
	assert.Equal(t, ierrors.KindBusinessRuleViolation, ierrors.KindOf(err))

	err = manager.Revoke(ctx, "")
	assert.Equal(t, ierrors.KindInvalidArguments, ierrors.KindOf(err))
	assert.Equal(t, "key_to_revoke", ierrors.Field(err))
}

func TestKeyManager_GenerateRequiresDescription(t *testing.T) {
	t.Parallel()

	_, manager, _ := newTestServices(t, "")
	_, _, err := manager.Generate(context.Background(), GenerateRequest{Description: "  "})
	assert.Equal(t, ierrors.KindInvalidArguments, ierrors.KindOf(err))
	assert.Equal(t, "description", ierrors.Field(err))
}

func TestKeyManager_Reload(t *testing.T) {
	t.Parallel()

	store, manager, _ := newTestServices(t, "")
	ctx := context.Background()

	generated, _, err := manager.Generate(ctx, GenerateRequest{Description: "survivor"})
	require.NoError(t, err)

	require.NoError(t, manager.Reload(ctx, []StaticKey{{Key: "rotated-key-1"}}))

	_, err = store.Authenticate(ctx, "valid-key-1")
	assert.Error(t, err)
	_, err = store.Authenticate(ctx, "rotated-key-1")
	assert.NoError(t, err)
	_, err = store.Authenticate(ctx, generated)
	assert.NoError(t, err)
}

func TestSignedKeys(t *testing.T) {
	t.Parallel()

	store, manager, minter := newTestServices(t, testSecret)
	ctx := context.Background()

	key, info, err := minter.Mint(GenerateRequest{
		Description: "payroll",
		Tier:        apikey.TierElevated,
		TTL:         time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, SourceSigned, info.Source)

	p, err := store.Authenticate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "payroll", p.Label)
	assert.Equal(t, apikey.TierElevated, p.Tier)
	assert.Equal(t, info.KeyID, p.KeyID)
	assert.Equal(t, []string{apikey.ScopeRead}, p.Scopes)

	require.NoError(t, manager.Revoke(ctx, key))
	_, err = store.Authenticate(ctx, key)
	assert.ErrorIs(t, err, ErrRevokedKey)
}

func TestMint_Disabled(t *testing.T) {
	t.Parallel()

	_, _, minter := newTestServices(t, "")
	_, _, err := minter.Mint(GenerateRequest{Description: "x"})
	assert.ErrorIs(t, err, ErrSigningDisabled)

	_, err = NewMinter(&Config{})
	assert.ErrorIs(t, err, ErrSigningDisabled)
}

func TestNewAuthServices_Errors(t *testing.T) {
	t.Parallel()

	_, _, _, err := NewAuthServices(nil)
	assert.Error(t, err)

	_, _, _, err = NewAuthServices(&Config{SigningSecret: "too-short"})
	assert.Error(t, err)
}

func TestDevKey(t *testing.T) {
	t.Parallel()

	dev, err := NewDevKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dev, apikey.DevPrefix))
	assert.Len(t, dev, len(apikey.DevPrefix)+32)

	store, _, _, err := NewAuthServices(&Config{DevKey: dev})
	require.NoError(t, err)
	p, err := store.Authenticate(context.Background(), dev)
	require.NoError(t, err)
	assert.Equal(t, "dev", p.Source)
}

func TestParseStaticKeys(t *testing.T) {
	t.Parallel()

	keys, err := ParseStaticKeys([]string{"alpha", " ", "beta:elevated", "gamma::hr:read+keys:admin"})
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, apikey.TierDefault, keys[0].Tier)
	assert.Equal(t, DefaultStaticScopes, keys[0].Scopes)
	assert.Equal(t, apikey.TierElevated, keys[1].Tier)
	assert.Equal(t, apikey.TierDefault, keys[2].Tier)
	assert.Equal(t, []string{apikey.ScopeRead, apikey.ScopeAdmin}, keys[2].Scopes)

	_, err = ParseStaticKeys([]string{":elevated"})
	assert.Error(t, err)
}

func TestLoadKeysFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keys.txt")
	content := "# operators\nvalid-key-1\n\nvalid-key-2:elevated\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	keys, err := LoadKeysFile(path)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "valid-key-2", keys[1].Key)
	assert.Equal(t, apikey.TierElevated, keys[1].Tier)

	_, err = LoadKeysFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestKeyID_MatchesPrincipal(t *testing.T) {
	t.Parallel()

	store, _, _ := newTestServices(t, "")
	p, err := store.Authenticate(context.Background(), "valid-key-1")
	require.NoError(t, err)

	assert.Equal(t, p.KeyID, KeyID("valid-key-1"))
	assert.NotEqual(t, KeyID("valid-key-1"), KeyID("valid-key-2"))
}
