package mcp

import "log/slog"

// Config holds configuration for MCP services.
type Config struct {
	// ServerName is the name of the MCP server.
	ServerName string

	// ServerVersion is the version of the MCP server.
	ServerVersion string

	// Logger receives dispatch failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewHandler creates a new MCP protocol handler.
// The handler routes tools/call through the dispatcher and everything else
// to the registries.
func NewHandler(cfg *Config, toolRegistry ToolRegistry, dispatcher Dispatcher, resourceRegistry ResourceRegistry) Handler {
	if cfg == nil {
		panic("config cannot be nil")
	}

	info := serverInfo{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	return newHandler(toolRegistry, dispatcher, resourceRegistry, info, cfg.Logger)
}

// NewMCPServices creates all MCP services from the configuration.
// This is a convenience function for dependency injection. Tools and
// resources are registered on the returned registries before serving.
func NewMCPServices(cfg *Config, conns Acquirer) (Handler, ToolRegistry, ResourceRegistry) {
	if cfg == nil {
		panic("config cannot be nil")
	}
	toolRegistry := NewToolRegistry()
	resourceRegistry := NewResourceRegistry()
	dispatcher := NewDispatcher(toolRegistry, conns, cfg.Logger)
	handler := NewHandler(cfg, toolRegistry, dispatcher, resourceRegistry)

	return handler, toolRegistry, resourceRegistry
}
