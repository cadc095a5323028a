// Package keyset holds opaque API keys and answers membership queries in
// constant time.
package keyset

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"
)

// Source records where a key came from.
const (
	SourceStatic    = "static"
	SourceGenerated = "generated"
	SourceDev       = "dev"
)

// Entry describes one key held by the set.
type Entry struct {
	Key       string
	Label     string
	Tier      string
	Scopes    []string
	Source    string
	CreatedAt time.Time
}

// Match is the identity resolved for a presented key. It never carries the
// raw key.
type Match struct {
	KeyID     string
	Label     string
	Tier      string
	Scopes    []string
	Source    string
	CreatedAt time.Time
}

type entry struct {
	digest [sha256.Size]byte
	Entry
}

// snapshot is immutable once published.
type snapshot struct {
	static    []entry
	generated []entry
}

// Set is safe for concurrent use. Readers never block; writers copy the
// current snapshot and publish a new one.
type Set struct {
	writeMu sync.Mutex
	current atomic.Pointer[snapshot]
}

// New creates a set holding the given static keys.
func New(static []Entry) *Set {
	s := &Set{}
	s.current.Store(&snapshot{static: digestAll(static)})
	return s
}

// Lookup resolves a presented key. Every held key is compared so the time
// taken does not reveal which entry matched or how long the keys are.
func (s *Set) Lookup(presented string) (Match, bool) {
	snap := s.current.Load()
	want := sha256.Sum256([]byte(presented))

	var found *entry
	for _, group := range [][]entry{snap.static, snap.generated} {
		for i := range group {
			if subtle.ConstantTimeCompare(want[:], group[i].digest[:]) == 1 && found == nil {
				found = &group[i]
			}
		}
	}
	if found == nil {
		return Match{}, false
	}
	return found.match(), true
}

// Replace swaps the static keys, leaving generated keys untouched.
func (s *Set) Replace(static []Entry) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old := s.current.Load()
	s.current.Store(&snapshot{static: digestAll(static), generated: old.generated})
}

// Add holds a generated key.
func (s *Set) Add(e Entry) Match {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old := s.current.Load()
	added := entry{digest: sha256.Sum256([]byte(e.Key)), Entry: e}
	generated := make([]entry, len(old.generated), len(old.generated)+1)
	copy(generated, old.generated)
	generated = append(generated, added)
	s.current.Store(&snapshot{static: old.static, generated: generated})
	return added.match()
}

// Remove drops a key from either group. It reports whether a key was held.
func (s *Set) Remove(key string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old := s.current.Load()
	digest := sha256.Sum256([]byte(key))
	static, hitStatic := without(old.static, digest)
	generated, hitGenerated := without(old.generated, digest)
	if !hitStatic && !hitGenerated {
		return false
	}
	s.current.Store(&snapshot{static: static, generated: generated})
	return true
}

// Entries returns a copy of every held key.
func (s *Set) Entries() []Entry {
	snap := s.current.Load()
	out := make([]Entry, 0, len(snap.static)+len(snap.generated))
	for _, group := range [][]entry{snap.static, snap.generated} {
		for _, e := range group {
			out = append(out, e.Entry)
		}
	}
	return out
}

// Len returns the number of held keys.
func (s *Set) Len() int {
	snap := s.current.Load()
	return len(snap.static) + len(snap.generated)
}

// KeyID derives a stable, non-secret identifier for a key.
func KeyID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "key_" + hex.EncodeToString(sum[:6])
}

func (e *entry) match() Match {
	return Match{
		KeyID:     "key_" + hex.EncodeToString(e.digest[:6]),
		Label:     e.Label,
		Tier:      e.Tier,
		Scopes:    append([]string(nil), e.Scopes...),
		Source:    e.Source,
		CreatedAt: e.CreatedAt,
	}
}

func digestAll(entries []Entry) []entry {
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		out = append(out, entry{digest: sha256.Sum256([]byte(e.Key)), Entry: e})
	}
	return out
}

func without(group []entry, digest [sha256.Size]byte) ([]entry, bool) {
	out := make([]entry, 0, len(group))
	hit := false
	for _, e := range group {
		if subtle.ConstantTimeCompare(e.digest[:], digest[:]) == 1 {
			hit = true
			continue
		}
		out = append(out, e)
	}
	return out, hit
}
