package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// BucketStore admits calls from per-key token buckets. A rule of N calls
// per window becomes a bucket of N tokens refilled at N/window per second,
// which smooths bursts across window boundaries.
//
// Like WindowStore, each key has its own entry and mutex.
type BucketStore struct {
	entries      sync.Map // string -> *bucketEntry
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucketEntry struct {
	mu       sync.Mutex
	lim      *rate.Limiter
	rule     Rule
	lastSeen time.Time
	evicted  bool
}

// NewBucketStore creates a token-bucket store. It accepts the same options
// as NewWindowStore.
func NewBucketStore(opts ...WindowOption) *BucketStore {
	w := NewWindowStore(opts...)
	return &BucketStore{
		idleTTL:      w.idleTTL,
		cleanupEvery: w.cleanupEvery,
	}
}

// Take spends one token for key, or reports how long until one is available.
func (s *BucketStore) Take(_ context.Context, key string, rule Rule, now time.Time) (Decision, error) {
	e := s.lock(key)
	defer e.mu.Unlock()

	switch {
	case e.lim == nil:
		e.lim = rate.NewLimiter(perSecond(rule), rule.Limit)
		e.rule = rule
	case e.rule != rule:
		e.lim.SetLimitAt(now, perSecond(rule))
		e.lim.SetBurstAt(now, rule.Limit)
		e.rule = rule
	}
	e.lastSeen = now

	r := e.lim.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Limit: rule.Limit, RetryAfter: rule.Window, ResetAt: now.Add(rule.Window)}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{
			Allowed:    false,
			Limit:      rule.Limit,
			RetryAfter: delay,
			ResetAt:    now.Add(delay),
		}, nil
	}

	tokens := e.lim.TokensAt(now)
	refill := time.Duration((float64(rule.Limit) - tokens) / float64(e.lim.Limit()) * float64(time.Second))
	return Decision{
		Allowed:   true,
		Limit:     rule.Limit,
		Remaining: int(math.Floor(tokens)),
		ResetAt:   now.Add(refill),
	}, nil
}

// lock returns key's live entry with its mutex held.
func (s *BucketStore) lock(key string) *bucketEntry {
	for {
		v, ok := s.entries.Load(key)
		if !ok {
			v, _ = s.entries.LoadOrStore(key, &bucketEntry{})
		}
		e := v.(*bucketEntry)
		e.mu.Lock()
		if !e.evicted {
			return e
		}
		// Lost a race with Cleanup; the key now maps to a fresh entry.
		e.mu.Unlock()
	}
}

func perSecond(rule Rule) rate.Limit {
	return rate.Limit(float64(rule.Limit) / rule.Window.Seconds())
}

// Cleanup drops buckets idle for longer than the idle TTL.
func (s *BucketStore) Cleanup(now time.Time) int {
	cutoff := now.Add(-s.idleTTL)
	evicted := 0

	s.entries.Range(func(k, v any) bool {
		e := v.(*bucketEntry)
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
func (s *BucketStore) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// StartJanitor drops idle buckets periodically. It blocks until ctx is done.
func (s *BucketStore) StartJanitor(ctx context.Context) {
	runJanitor(ctx, s.cleanupEvery, func() { s.Cleanup(time.Now()) })
}
