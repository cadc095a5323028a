// Package pool bounds the number of data-store connections held at once.
//
// At most MaxSize connections are outstanding. Idle connections are reused
// until they exceed their lifetime or idle time; connections released
// unhealthy are discarded and replaced lazily on the next Acquire.
package pool

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Conn is a dedicated data-store connection. *sql.Conn satisfies it.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

// Factory opens a new connection.
type Factory func(ctx context.Context) (Conn, error)

// Config holds pool limits. Zero durations disable the matching check.
type Config struct {
	MaxSize        int
	AcquireTimeout time.Duration
	MaxLifetime    time.Duration
	MaxIdleTime    time.Duration
	Logger         *slog.Logger
}

// DefaultConfig returns the stock pool limits.
func DefaultConfig() Config {
	return Config{
		MaxSize:        5,
		AcquireTimeout: 30 * time.Second,
		MaxLifetime:    30 * time.Minute,
		MaxIdleTime:    5 * time.Minute,
	}
}

// Stats is a point-in-time view of pool activity.
type Stats struct {
	MaxSize   int   `json:"max_size"`
	Acquires  int64 `json:"acquires"`
	Exhausted int64 `json:"exhausted"`
	Opened    int64 `json:"opened"`
	Closed    int64 `json:"closed"`
	InUse     int   `json:"in_use"`
	Idle      int   `json:"idle"`
}

type item struct {
	conn      Conn
	createdAt time.Time
	lastUsed  time.Time
}

// Pool is safe for concurrent use.
type Pool struct {
	factory Factory
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time

	// sem holds one token per outstanding connection.
	sem chan struct{}

	mu     sync.Mutex
	idle   []*item
	out    map[Conn]*item
	closed bool

	acquires  atomic.Int64
	exhausted atomic.Int64
	opened    atomic.Int64
	discarded atomic.Int64
}

// New creates a pool. No connection is opened until the first Acquire.
func New(factory Factory, cfg Config) (*Pool, error) {
	if factory == nil {
		return nil, errors.New("factory cannot be nil")
	}
	if cfg.MaxSize <= 0 {
		return nil, errors.New("max size must be positive")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		factory: factory,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		sem:     make(chan struct{}, cfg.MaxSize),
		out:     make(map[Conn]*item, cfg.MaxSize),
	}, nil
}

// Acquire returns a connection, waiting up to the configured acquire
// timeout for one to become free.
func (p *Pool) Acquire(ctx context.Context) (Conn, error) {
	return p.acquire(ctx, p.cfg.AcquireTimeout)
}

func (p *Pool) acquire(ctx context.Context, timeout time.Duration) (Conn, error) {
	p.acquires.Add(1)

	if p.isClosed() {
		return nil, closedError()
	}

	if err := p.waitSlot(ctx, timeout); err != nil {
		p.exhausted.Add(1)
		p.logger.WarnContext(ctx, "connection pool exhausted",
			"max_size", p.cfg.MaxSize,
			"timeout", timeout,
		)
		return nil, err
	}

	if it := p.takeIdle(); it != nil {
		return it.conn, nil
	}

	conn, err := p.factory(ctx)
	if err != nil {
		<-p.sem
		return nil, openError(err)
	}
	p.opened.Add(1)

	now := p.now()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.discard(conn)
		<-p.sem
		return nil, closedError()
	}
	p.out[conn] = &item{conn: conn, createdAt: now, lastUsed: now}
	p.mu.Unlock()
	return conn, nil
}

func (p *Pool) waitSlot(ctx context.Context, timeout time.Duration) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	default:
	}

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case p.sem <- struct{}{}:
		return nil
	case <-timer:
		return exhaustedError(nil)
	case <-ctx.Done():
		return exhaustedError(ctx.Err())
	}
}

// takeIdle pops the most recently used live connection, discarding any
// expired ones it passes over.
func (p *Pool) takeIdle() *item {
	now := p.now()
	var stale []Conn

	p.mu.Lock()
	var found *item
	for len(p.idle) > 0 {
		it := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if p.expired(it, now) {
			stale = append(stale, it.conn)
			continue
		}
		it.lastUsed = now
		p.out[it.conn] = it
		found = it
		break
	}
	p.mu.Unlock()

	for _, c := range stale {
		p.discard(c)
	}
	return found
}

// Release returns a connection. Unhealthy connections are closed. Releasing
// a connection the pool does not have outstanding is logged and ignored.
func (p *Pool) Release(conn Conn, healthy bool) {
	if conn == nil {
		return
	}
	now := p.now()

	p.mu.Lock()
	it, ok := p.out[conn]
	if !ok {
		p.mu.Unlock()
		p.logger.Warn("release of a connection not outstanding from this pool")
		return
	}
	delete(p.out, conn)

	keep := healthy && !p.closed && !p.expired(it, now)
	if keep {
		it.lastUsed = now
		p.idle = append(p.idle, it)
	}
	p.mu.Unlock()

	if !keep {
		p.discard(conn)
	}
	<-p.sem
}

// With runs fn with a pooled connection and releases it on every path.
// The connection is released unhealthy when fn's error chain contains
// ErrBroken or when fn panics; the panic is re-raised after release.
func (p *Pool) With(ctx context.Context, fn func(Conn) error) (err error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}

	released := false
	defer func() {
		if released {
			return
		}
		r := recover()
		p.Release(conn, false)
		if r != nil {
			panic(r)
		}
	}()

	err = fn(conn)
	released = true
	p.Release(conn, !errors.Is(err, ErrBroken))
	return err
}

// Probe checks that a connection can be acquired and pinged within timeout.
func (p *Pool) Probe(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := p.acquire(ctx, timeout)
	if err != nil {
		return err
	}
	if err := conn.PingContext(ctx); err != nil {
		p.Release(conn, false)
		return Broken(err)
	}
	p.Release(conn, true)
	return nil
}

// Stats returns current counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	inUse, idle := len(p.out), len(p.idle)
	p.mu.Unlock()

	return Stats{
		MaxSize:   p.cfg.MaxSize,
		Acquires:  p.acquires.Load(),
		Exhausted: p.exhausted.Load(),
		Opened:    p.opened.Load(),
		Closed:    p.discarded.Load(),
		InUse:     inUse,
		Idle:      idle,
	}
}

// Close closes idle connections and rejects future acquires. Outstanding
// connections are closed as they are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, it := range idle {
		p.discard(it.conn)
	}
	return nil
}

func (p *Pool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Pool) expired(it *item, now time.Time) bool {
	if p.cfg.MaxLifetime > 0 && now.Sub(it.createdAt) >= p.cfg.MaxLifetime {
		return true
	}
	if p.cfg.MaxIdleTime > 0 && now.Sub(it.lastUsed) >= p.cfg.MaxIdleTime {
		return true
	}
	return false
}

func (p *Pool) discard(conn Conn) {
	p.discarded.Add(1)
	if err := invalidate(conn); err != nil {
		p.logger.Debug("connection close failed", "error", err)
	}
}
