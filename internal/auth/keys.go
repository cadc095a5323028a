package auth

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth/internal/keyset"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// DefaultStaticScopes are granted to configured keys that name no scopes.
// Configured keys belong to operators, so they may administer keys too.
var DefaultStaticScopes = []string{apikey.ScopeRead, apikey.ScopeAdmin}

// DefaultGeneratedScopes are granted to keys minted at runtime.
var DefaultGeneratedScopes = []string{apikey.ScopeRead}

// ParseStaticKeys parses key specs of the form
//
//	key[:tier[:scope+scope...]]
//
// Blank specs are skipped. Missing tiers and scopes take the defaults.
func ParseStaticKeys(specs []string) ([]StaticKey, error) {
	var keys []StaticKey
	for i, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		parts := strings.SplitN(spec, ":", 3)
		k := StaticKey{
			Key:    parts[0],
			Label:  fmt.Sprintf("static-%d", i+1),
			Tier:   apikey.TierDefault,
			Scopes: DefaultStaticScopes,
		}
		if k.Key == "" {
			return nil, fmt.Errorf("key spec %d: empty key", i)
		}
		if len(parts) > 1 && parts[1] != "" {
			k.Tier = parts[1]
		}
		if len(parts) > 2 && parts[2] != "" {
			k.Scopes = strings.Split(parts[2], "+")
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// LoadKeysFile reads key specs from a file, one per line.
// Lines starting with '#' are comments.
func LoadKeysFile(path string) ([]StaticKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keys file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var specs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}
	return ParseStaticKeys(specs)
}

// NewDevKey returns a random development key.
func NewDevKey() (string, error) {
	return randomKey(apikey.DevPrefix, 16)
}

// newGeneratedKey returns a random runtime key.
func newGeneratedKey() (string, error) {
	return randomKey(apikey.GeneratedPrefix, 32)
}

func randomKey(prefix string, n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return prefix + hex.EncodeToString(b), nil
}

// KeyID returns the non-secret identifier that logs and rate limiting use
// for an opaque key.
func KeyID(key string) string {
	return keyset.KeyID(key)
}
