package mcp

import (
	"errors"
	"fmt"

	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
	"github.com/jamesprial/hr-mcp-gateway/internal/pool"
)

// Sentinel errors for MCP operations.
// These are used for error identification and testing.
// For creating domain errors with context, wrap these with DomainError from internal/errors.
var (
	// ErrInvalidRequest indicates the JSON-RPC request is invalid or malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolAlreadyRegistered indicates a tool with the same name is already registered.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrToolPanicked indicates a tool handler panicked.
	ErrToolPanicked = errors.New("tool panicked")

	// ErrMissingScope indicates the caller lacks a scope the tool requires.
	ErrMissingScope = errors.New("missing required scope")

	// ErrInvalidArgument indicates an argument is missing or has the wrong type.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrResourceNotFound indicates the requested resource does not exist.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrResourceAlreadyRegistered indicates a resource with the same URI is already registered.
	ErrResourceAlreadyRegistered = errors.New("resource already registered")
)

const domainMCP = "mcp"

// Context keys attached to dispatch errors.
const (
	ContextTool  = "tool"
	ContextScope = "scope"
)

func unknownToolError(name string) *ierrors.DomainError {
	return ierrors.New(domainMCP, "Dispatch", ierrors.ErrUnknownTool, ErrToolNotFound).
		WithContext(ContextTool, name)
}

func forbiddenError(tool, scope string) *ierrors.DomainError {
	return ierrors.New(domainMCP, "Dispatch", ierrors.ErrForbidden, ErrMissingScope).
		WithContext(ContextTool, tool).
		WithContext(ContextScope, scope)
}

// InvalidArgumentError reports a missing or malformed argument. Tool
// handlers use it to refine schema validation.
func InvalidArgumentError(field, reason string) *ierrors.DomainError {
	return ierrors.New(domainMCP, "Dispatch", ierrors.ErrBadRequest, fmt.Errorf("%w: %s %s", ErrInvalidArgument, field, reason)).
		WithContext(ierrors.ContextField, field)
}

func panicError(tool string, v any) *ierrors.DomainError {
	return ierrors.New(domainMCP, "Dispatch", ierrors.ErrUpstream, pool.Broken(fmt.Errorf("%w: %v", ErrToolPanicked, v))).
		WithContext(ContextTool, tool)
}

// upstreamError classifies an error outside the taxonomy as a data store
// failure. The connection it came from is not trusted again.
func upstreamError(tool string, err error) *ierrors.DomainError {
	if !errors.Is(err, pool.ErrBroken) {
		err = pool.Broken(err)
	}
	return ierrors.New(domainMCP, "Dispatch", ierrors.ErrUpstream, err).
		WithContext(ContextTool, tool)
}
