package mcp

import (
	"context"
	"errors"
	"log/slog"

	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
	"github.com/jamesprial/hr-mcp-gateway/internal/pool"
)

// dispatcher implements Dispatcher over a static registry and a
// connection source.
type dispatcher struct {
	tools  ToolRegistry
	conns  Acquirer
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher. conns may be nil when no registered
// tool uses the store.
func NewDispatcher(tools ToolRegistry, conns Acquirer, logger *slog.Logger) Dispatcher {
	if tools == nil {
		panic("tools cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &dispatcher{tools: tools, conns: conns, logger: logger}
}

// Dispatch runs one tool call.
func (d *dispatcher) Dispatch(ctx context.Context, req *ToolRequest) *ToolResult {
	if req == nil {
		return &ToolResult{Err: InvalidArgumentError("name", "is required")}
	}

	tool, err := d.tools.GetTool(req.Name)
	if err != nil {
		return &ToolResult{Err: err}
	}
	def := tool.Definition()

	for _, scope := range def.RequiredScopes {
		if !req.Principal.HasScope(scope) {
			return &ToolResult{Err: forbiddenError(def.Name, scope)}
		}
	}

	args := req.Arguments
	if args == nil {
		args = map[string]any{}
	}
	if err := ValidateArguments(def.InputSchema, args); err != nil {
		return &ToolResult{Err: err}
	}

	call := &ToolCall{Arguments: args, Principal: req.Principal}
	if !def.UsesStore {
		value, err := d.invoke(ctx, tool, def.Name, call)
		return &ToolResult{Value: value, Err: d.classify(ctx, def.Name, err)}
	}

	if d.conns == nil {
		return &ToolResult{Err: upstreamError(def.Name, errors.New("no connection source configured"))}
	}
	var (
		value    any
		acquired bool
	)
	err = d.conns.With(ctx, func(conn pool.Conn) error {
		acquired = true
		call.Conn = conn
		var err error
		value, err = d.invoke(ctx, tool, def.Name, call)
		return d.classify(ctx, def.Name, err)
	})
	if err != nil && !acquired {
		d.logger.WarnContext(ctx, "tool could not acquire connection", "tool", def.Name, "error", err)
	}
	return &ToolResult{Value: value, Err: err}
}

// invoke runs the handler and turns a panic into an upstream error.
func (d *dispatcher) invoke(ctx context.Context, tool Tool, name string, call *ToolCall) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "tool panicked", "tool", name, "panic", r)
			value = nil
			err = panicError(name, r)
		}
	}()
	return tool.Execute(ctx, call)
}

// classify maps a handler error onto the caller-facing taxonomy. Rule
// violations and argument errors leave the connection healthy; everything
// else is treated as a store failure.
func (d *dispatcher) classify(ctx context.Context, name string, err error) error {
	if err == nil {
		return nil
	}
	switch ierrors.KindOf(err) {
	case ierrors.KindBusinessRuleViolation, ierrors.KindInvalidArguments:
		return err
	case ierrors.KindUpstreamError:
		if !errors.Is(err, pool.ErrBroken) {
			err = upstreamError(name, err)
		}
		d.logger.ErrorContext(ctx, "tool failed", "tool", name, "error", err)
		return err
	default:
		wrapped := upstreamError(name, err)
		d.logger.ErrorContext(ctx, "tool failed", "tool", name, "error", wrapped)
		return wrapped
	}
}
