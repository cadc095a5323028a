package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// Config holds the configuration needed to construct a Service.
type Config struct {
	// Policy selects the counting algorithm. Defaults to PolicyFixedWindow.
	Policy string

	// Rules maps a key tier to its quota. Tiers without a rule use the
	// apikey.TierDefault rule; apikey.TierUnlimited is never throttled.
	Rules map[string]Rule

	// IdleTTL and CleanupEvery tune the in-memory janitor.
	IdleTTL      time.Duration
	CleanupEvery time.Duration

	// RedisPrefix namespaces Redis keys.
	RedisPrefix string

	// FailClosed rejects calls when the backend errors instead of
	// admitting them.
	FailClosed bool

	// Stats receives every outcome. Defaults to NopStats. Outcomes are
	// queued and written by Run, never on the admission path.
	Stats StatsRecorder

	// StatsBuffer bounds the outcome queue; outcomes beyond it are dropped.
	// StatsTimeout bounds each write to Stats.
	StatsBuffer  int
	StatsTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// janitor is implemented by stores that hold per-key state in memory.
type janitor interface {
	StartJanitor(ctx context.Context)
}

// Service implements Limiter on top of a Store.
type Service struct {
	policy     string
	store      Store
	rules      map[string]Rule
	stats      StatsRecorder
	queue      *statsQueue
	failClosed bool
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Service. rdb is required only for PolicyRedisFixedWindow.
func New(cfg *Config, rdb redis.UniversalClient) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	def, ok := cfg.Rules[apikey.TierDefault]
	if !ok || def.Unlimited() {
		return nil, fmt.Errorf("a limited %q tier rule is required", apikey.TierDefault)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var (
		stats StatsRecorder = NopStats{}
		queue *statsQueue
	)
	if cfg.Stats != nil {
		if _, nop := cfg.Stats.(NopStats); !nop {
			queue = newStatsQueue(cfg.Stats, cfg.StatsBuffer, cfg.StatsTimeout, logger)
			stats = queue
		}
	}

	// An entry must outlive its window or eviction would reset a live quota.
	idle := cfg.IdleTTL
	if idle <= 0 {
		idle = defaultIdleTTL
	}
	for _, r := range cfg.Rules {
		idle = max(idle, r.Window)
	}
	opts := []WindowOption{WithIdleTTL(idle)}
	if cfg.CleanupEvery > 0 {
		opts = append(opts, WithCleanupEvery(cfg.CleanupEvery))
	}

	policy := cfg.Policy
	if policy == "" {
		policy = PolicyFixedWindow
	}

	var store Store
	switch policy {
	case PolicyFixedWindow:
		store = NewWindowStore(opts...)
	case PolicyTokenBucket:
		store = NewBucketStore(opts...)
	case PolicyRedisFixedWindow:
		if rdb == nil {
			return nil, fmt.Errorf("policy %q requires a redis client", policy)
		}
		store = NewRedisStore(rdb, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}

	rules := make(map[string]Rule, len(cfg.Rules))
	for tier, r := range cfg.Rules {
		rules[tier] = r
	}

	return &Service{
		policy:     policy,
		store:      store,
		rules:      rules,
		stats:      stats,
		queue:      queue,
		failClosed: cfg.FailClosed,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Policy returns the active policy name.
func (s *Service) Policy() string {
	return s.policy
}

// Rule returns the quota applied to tier.
func (s *Service) Rule(tier string) Rule {
	if tier == apikey.TierUnlimited {
		return Rule{}
	}
	if r, ok := s.rules[tier]; ok {
		return r
	}
	return s.rules[apikey.TierDefault]
}

// Admit counts one call for key.
func (s *Service) Admit(ctx context.Context, key, tier string) (Decision, error) {
	rule := s.Rule(tier)
	if rule.Unlimited() {
		return Decision{Allowed: true}, nil
	}

	now := s.now()
	d, err := s.store.Take(ctx, key, rule, now)
	if err != nil {
		if s.failClosed {
			return Decision{}, err
		}
		s.logger.WarnContext(ctx, "rate limit backend failed, admitting call",
			"policy", s.policy,
			"key_id", key,
			"error", err,
		)
		return Decision{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit}, nil
	}

	if err := s.stats.Record(ctx, Event{Key: key, Tier: tier, Allowed: d.Allowed, At: now}); err != nil {
		s.logger.DebugContext(ctx, "rate limit stats dropped", "key_id", key, "error", err)
	}
	return d, nil
}

// Run drives the service's background work: the stats writer and, for
// in-memory stores, the idle-entry sweeper. It blocks until ctx is done.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	if s.queue != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.queue.run(ctx)
		}()
	}
	if j, ok := s.store.(janitor); ok {
		j.StartJanitor(ctx)
	}
	<-ctx.Done()
	wg.Wait()
}

// StatsDropped returns the number of outcomes discarded because the stats
// queue was full.
func (s *Service) StatsDropped() int64 {
	if s.queue == nil {
		return 0
	}
	return s.queue.Dropped()
}

// WithClock replaces the service's time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
