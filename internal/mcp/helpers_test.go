package mcp

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
	"github.com/jamesprial/hr-mcp-gateway/internal/pool"
)

// stubTool is a Tool whose behavior is supplied by the test.
type stubTool struct {
	def ToolDefinition
	fn  func(ctx context.Context, call *ToolCall) (any, error)
}

func (s *stubTool) Execute(ctx context.Context, call *ToolCall) (any, error) {
	if s.fn == nil {
		return map[string]any{"ok": true}, nil
	}
	return s.fn(ctx, call)
}

func (s *stubTool) Definition() ToolDefinition { return s.def }

func newStubTool(name string, usesStore bool, fn func(context.Context, *ToolCall) (any, error), opts ...mcpgo.ToolOption) *stubTool {
	opts = append([]mcpgo.ToolOption{mcpgo.WithDescription(name + " test tool")}, opts...)
	return &stubTool{
		def: NewDefinition(mcpgo.NewTool(name, opts...), []string{"hr:read"}, usesStore),
		fn:  fn,
	}
}

// stubConn satisfies pool.Conn without a database.
type stubConn struct{ id int }

func (c *stubConn) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (c *stubConn) QueryRowContext(context.Context, string, ...any) *sql.Row { return nil }

func (c *stubConn) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errors.New("not implemented")
}

func (c *stubConn) PingContext(context.Context) error { return nil }
func (c *stubConn) Close() error                      { return nil }

// countingAcquirer records every acquire and release.
type countingAcquirer struct {
	mu       sync.Mutex
	next     int
	acquires int
	releases map[pool.Conn]int
	healthy  map[pool.Conn]bool
	fail     error
}

func newCountingAcquirer() *countingAcquirer {
	return &countingAcquirer{
		releases: make(map[pool.Conn]int),
		healthy:  make(map[pool.Conn]bool),
	}
}

// With mirrors pool.Pool.With: the connection goes back unhealthy when fn
// reports pool.ErrBroken.
func (a *countingAcquirer) With(ctx context.Context, fn func(pool.Conn) error) error {
	conn, err := a.acquire(ctx)
	if err != nil {
		return err
	}
	err = fn(conn)
	a.release(conn, !errors.Is(err, pool.ErrBroken))
	return err
}

func (a *countingAcquirer) acquire(ctx context.Context) (pool.Conn, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acquires++
	if a.fail != nil {
		return nil, a.fail
	}
	a.next++
	c := &stubConn{id: a.next}
	a.releases[c] = 0
	return c, nil
}

func (a *countingAcquirer) release(conn pool.Conn, healthy bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releases[conn]++
	a.healthy[conn] = healthy
}

// outstanding returns the number of acquired connections not released
// exactly once.
func (a *countingAcquirer) outstanding() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, count := range a.releases {
		if count != 1 {
			n++
		}
	}
	return n
}

func (a *countingAcquirer) unhealthy() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, ok := range a.healthy {
		if !ok {
			n++
		}
	}
	return n
}

func reader() *auth.Principal {
	return &auth.Principal{KeyID: "key_reader", Tier: "default", Scopes: []string{"hr:read"}}
}

func ruleViolation() error {
	return ierrors.New("hr", "Resolve", ierrors.ErrRuleViolation, errors.New("employee not found")).
		WithContext("query", "nobody")
}
