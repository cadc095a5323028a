package transport

import (
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
)

// Re-exported so callers of transport need not import transportcore.
var (
	// ErrBodyTooLarge indicates an MCP request body exceeded 1 MiB.
	ErrBodyTooLarge = transportcore.ErrBodyTooLarge

	// ErrServerClosed is returned by Start after Shutdown.
	ErrServerClosed = transportcore.ErrServerClosed
)
