package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowScript counts one call and returns {count, ttl_ms}. The key expires
// when its window ends, so the window opens with the key's first call.
var windowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore counts fixed windows in Redis so every replica shares one quota.
// Calls beyond the limit are still counted; they do not change the outcome
// of the current window.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis-backed fixed-window store.
func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = "hrmcp:ratelimit"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// Take counts one call for key.
func (s *RedisStore) Take(ctx context.Context, key string, rule Rule, now time.Time) (Decision, error) {
	windowMs := rule.Window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}

	res, err := windowScript.Run(ctx, s.rdb, []string{s.prefix + ":" + key}, windowMs).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("%w: unexpected script reply %v", ErrBackend, res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	resetAt := now.Add(ttl)
	if count > rule.Limit {
		return Decision{
			Allowed:    false,
			Limit:      rule.Limit,
			RetryAfter: ttl,
			ResetAt:    resetAt,
		}, nil
	}
	return Decision{
		Allowed:   true,
		Limit:     rule.Limit,
		Remaining: rule.Limit - count,
		ResetAt:   resetAt,
	}, nil
}

// RedisStats records admission outcomes as Redis hash counters: a running
// total plus one hash per minute.
type RedisStats struct {
	rdb       redis.UniversalClient
	prefix    string
	ttl       time.Duration
	trackKeys bool
}

// RedisStatsOption configures RedisStats.
type RedisStatsOption func(*RedisStats)

// WithStatsPrefix sets the key prefix.
func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStats) { s.prefix = strings.Trim(prefix, ":") }
}

// WithStatsTTL sets how long per-minute and per-key hashes live.
func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStats) { s.ttl = d }
}

// WithStatsTrackKeys also counts outcomes per key ID.
func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStats) { s.trackKeys = track }
}

// NewRedisStats creates a Redis stats recorder.
func NewRedisStats(rdb redis.UniversalClient, opts ...RedisStatsOption) *RedisStats {
	s := &RedisStats{
		rdb:    rdb,
		prefix: "hrmcp:ratelimit:stats",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record counts one outcome.
func (s *RedisStats) Record(ctx context.Context, ev Event) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	minuteKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, minuteKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, minuteKey, s.ttl)
	}

	if ev.Tier != "" {
		pipe.HIncrBy(ctx, s.prefix+":tier", ev.Tier+":"+field, 1)
	}

	if s.trackKeys && ev.Key != "" {
		keyKey := s.prefix + ":key:" + ev.Key
		pipe.HIncrBy(ctx, keyKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, keyKey, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// NopStats discards every event.
type NopStats struct{}

// Record does nothing.
func (NopStats) Record(context.Context, Event) error { return nil }
