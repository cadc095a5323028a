package ratelimit

import (
	"context"
	"sync"
	"time"
)

// WindowStore counts calls in fixed windows held in memory. A key's window
// opens with its first call and lasts rule.Window.
//
// Each key has its own entry and mutex, so callers with different keys
// never contend. Rollover and increment happen under the same lock.
type WindowStore struct {
	entries      sync.Map // string -> *windowEntry
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type windowEntry struct {
	mu       sync.Mutex
	start    time.Time
	count    int
	lastSeen time.Time
	evicted  bool
}

const (
	defaultIdleTTL      = 15 * time.Minute
	defaultCleanupEvery = 2 * time.Minute
)

// WindowOption configures a WindowStore.
type WindowOption func(*WindowStore)

// WithIdleTTL sets how long an untouched window is kept after it ends.
func WithIdleTTL(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.idleTTL = d }
}

// WithCleanupEvery sets the janitor interval.
func WithCleanupEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.cleanupEvery = d }
}

// NewWindowStore creates an in-memory fixed-window store.
func NewWindowStore(opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		idleTTL:      defaultIdleTTL,
		cleanupEvery: defaultCleanupEvery,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Take counts one call for key.
func (s *WindowStore) Take(_ context.Context, key string, rule Rule, now time.Time) (Decision, error) {
	for {
		e := s.entry(key)

		e.mu.Lock()
		if e.evicted {
			// Lost a race with Cleanup; the key now maps to a fresh entry.
			e.mu.Unlock()
			continue
		}

		if e.start.IsZero() || !now.Before(e.start.Add(rule.Window)) {
			e.start = now
			e.count = 0
		}
		e.lastSeen = now
		resetAt := e.start.Add(rule.Window)

		if e.count >= rule.Limit {
			e.mu.Unlock()
			return Decision{
				Allowed:    false,
				Limit:      rule.Limit,
				Remaining:  0,
				RetryAfter: resetAt.Sub(now),
				ResetAt:    resetAt,
			}, nil
		}

		e.count++
		remaining := rule.Limit - e.count
		e.mu.Unlock()

		return Decision{
			Allowed:   true,
			Limit:     rule.Limit,
			Remaining: remaining,
			ResetAt:   resetAt,
		}, nil
	}
}

func (s *WindowStore) entry(key string) *windowEntry {
	if v, ok := s.entries.Load(key); ok {
		return v.(*windowEntry)
	}
	v, _ := s.entries.LoadOrStore(key, &windowEntry{})
	return v.(*windowEntry)
}

// Cleanup evicts windows idle for longer than the idle TTL and returns the
// number evicted.
func (s *WindowStore) Cleanup(now time.Time) int {
	cutoff := now.Add(-s.idleTTL)
	evicted := 0

	s.entries.Range(func(k, v any) bool {
		e := v.(*windowEntry)
		e.mu.Lock()
		if e.lastSeen.Before(cutoff) {
			e.evicted = true
			s.entries.CompareAndDelete(k, e)
			evicted++
		}
		e.mu.Unlock()
		return true
	})
	return evicted
}

// Len returns the number of tracked keys.
func (s *WindowStore) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// StartJanitor evicts idle windows periodically. It blocks until ctx is done.
func (s *WindowStore) StartJanitor(ctx context.Context) {
	runJanitor(ctx, s.cleanupEvery, func() { s.Cleanup(time.Now()) })
}

func runJanitor(ctx context.Context, every time.Duration, sweep func()) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sweep()
		}
	}
}
