// Package health reports whether the gateway's dependencies answer.
//
// A report is ok when every registered check passes and degraded otherwise.
// Checks run concurrently, each bounded by the reporter's probe timeout, and
// never change dependency state, so repeated reports agree while the
// dependencies do.
package health

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
)

// Report statuses.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFailing  = "failing"
)

// Checker checks one dependency.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// Report is the aggregate health of the gateway.
type Report struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	return r.Status == StatusOK
}

// CheckResult is the outcome of one check. Error carries the failure kind,
// never the raw dependency error.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type namedChecker struct {
	name    string
	checker Checker
}

// Reporter runs registered checks.
type Reporter struct {
	mu       sync.RWMutex
	checkers []namedChecker
	timeout  time.Duration
	logger   *slog.Logger
}

// NewReporter creates a reporter whose checks are each bounded by timeout.
// A nil logger uses slog.Default().
func NewReporter(timeout time.Duration, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{timeout: timeout, logger: logger}
}

// Register adds a named check. Registering a name twice replaces the check.
func (r *Reporter) Register(name string, c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.checkers {
		if r.checkers[i].name == name {
			r.checkers[i].checker = c
			return
		}
	}
	r.checkers = append(r.checkers, namedChecker{name: name, checker: c})
	sort.Slice(r.checkers, func(i, j int) bool { return r.checkers[i].name < r.checkers[j].name })
}

// Check runs every registered check and aggregates the results.
func (r *Reporter) Check(ctx context.Context) Report {
	r.mu.RLock()
	checkers := append([]namedChecker(nil), r.checkers...)
	r.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	for i, nc := range checkers {
		g.Go(func() error {
			results[i] = r.run(ctx, nc)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Status: StatusOK, Checks: make(map[string]CheckResult, len(checkers))}
	for i, nc := range checkers {
		report.Checks[nc.name] = results[i]
		if results[i].Status != StatusOK {
			report.Status = StatusDegraded
		}
	}
	return report
}

// Live reports that the process is serving. It runs no checks.
func (r *Reporter) Live() Report {
	return Report{Status: StatusOK, Checks: map[string]CheckResult{}}
}

func (r *Reporter) run(ctx context.Context, nc namedChecker) CheckResult {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if err := nc.checker.Check(ctx); err != nil {
		r.logger.WarnContext(ctx, "health check failed", "check", nc.name, "error", err)
		return CheckResult{Status: StatusFailing, Error: ierrors.KindOf(err)}
	}
	return CheckResult{Status: StatusOK}
}

// Prober is implemented by the connection pool.
type Prober interface {
	Probe(ctx context.Context, timeout time.Duration) error
}

// PoolCheck acquires, pings and releases one pooled connection.
func PoolCheck(p Prober, timeout time.Duration) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return p.Probe(ctx, timeout)
	})
}

// RedisCheck pings Redis.
func RedisCheck(rdb redis.UniversalClient) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return ierrors.New("health", "RedisCheck", ierrors.ErrUpstream, err)
		}
		return nil
	})
}
