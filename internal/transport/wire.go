package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	"github.com/jamesprial/hr-mcp-gateway/internal/config"
	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
	"github.com/jamesprial/hr-mcp-gateway/internal/ratelimit"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/internal/handlers"
	transporthttp "github.com/jamesprial/hr-mcp-gateway/internal/transport/internal/http"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/internal/middleware"
)

// Info identifies the running server on the info route.
type Info = handlers.Info

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and uses the provided router.
func NewServer(cfg *config.ServerConfig, router Router) Server {
	return transporthttp.NewServer(cfg, router)
}

// NewRouter creates a new HTTP router backed by chi.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// NewAuthMiddleware creates API-key authentication middleware.
func NewAuthMiddleware(store auth.CredentialStore, responder ErrorResponder, logger *slog.Logger) AuthMiddleware {
	return middleware.NewAuthMiddleware(store, responder, logger)
}

// NewRateLimitMiddleware creates per-key admission middleware.
// It must be applied after authentication.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRateLimitMiddleware(limiter, responder, logger)
}

// NewErrorResponder creates the JSON error responder.
func NewErrorResponder(logger *slog.Logger) ErrorResponder {
	return transporthttp.NewErrorResponder(logger)
}

// NewMCPHandler creates the MCP protocol handler.
// It handles JSON-RPC requests at the MCP endpoint.
func NewMCPHandler(handler mcp.Handler, responder ErrorResponder, logger *slog.Logger) http.Handler {
	return handlers.NewMCPHandler(handler, responder, logger)
}

// NewHealthHandler creates the aggregate health handler.
func NewHealthHandler(reporter HealthReporter) http.Handler {
	return handlers.NewHealthHandler(reporter)
}

// NewLivenessHandler creates the liveness handler.
func NewLivenessHandler(reporter HealthReporter) http.Handler {
	return handlers.NewLivenessHandler(reporter)
}

// NewInfoHandler creates the server info handler.
func NewInfoHandler(info Info, tools mcp.ToolRegistry, policy string) http.Handler {
	return handlers.NewInfoHandler(info, tools, policy)
}

// NewAuthTestHandler creates the authentication echo handler.
func NewAuthTestHandler(responder ErrorResponder) http.Handler {
	return handlers.NewAuthTestHandler(responder)
}

// NewRequestIDMiddleware creates request ID middleware.
func NewRequestIDMiddleware() Middleware {
	return middleware.NewRequestIDMiddleware()
}

// NewLoggingMiddleware creates request logging middleware.
// It logs HTTP request details using structured logging.
// If logger is nil, it uses the default slog logger.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware creates panic recovery middleware.
// It recovers from panics and returns a 500 error to the client.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the listener configuration.
	ServerConfig *config.ServerConfig

	// Credentials authenticates presented API keys.
	Credentials auth.CredentialStore

	// Limiter admits or throttles authenticated calls.
	Limiter ratelimit.Limiter

	// RatePolicy names the active rate-limit policy for the info route.
	RatePolicy string

	// MCPHandler processes MCP protocol requests.
	MCPHandler mcp.Handler

	// Tools is reported on the info route.
	Tools mcp.ToolRegistry

	// Health backs the health routes.
	Health HealthReporter

	// Info identifies the server.
	Info Info

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewTransportServices creates all transport layer services from the configuration.
// This is a convenience function for dependency injection that wires up the complete
// HTTP transport layer with routing, middleware, and handlers.
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, fmt.Errorf("server config cannot be nil")
	}
	router, err := NewRouterFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewServer(cfg.ServerConfig, router), router, nil
}

// NewRouterFromConfig builds the routed handler without a listener.
// Tests serve it with httptest.
func NewRouterFromConfig(cfg *Config) (Router, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("credential store cannot be nil")
	}
	if cfg.Limiter == nil {
		return nil, fmt.Errorf("limiter cannot be nil")
	}
	if cfg.MCPHandler == nil {
		return nil, fmt.Errorf("mcp handler cannot be nil")
	}
	if cfg.Tools == nil {
		return nil, fmt.Errorf("tool registry cannot be nil")
	}
	if cfg.Health == nil {
		return nil, fmt.Errorf("health reporter cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	responder := NewErrorResponder(logger)
	authMiddleware := NewAuthMiddleware(cfg.Credentials, responder, logger)
	rateLimitMiddleware := NewRateLimitMiddleware(cfg.Limiter, responder, logger)

	router := NewRouter()

	// Request ID first so every later layer can log it; recovery innermost
	// so logging records the 500 it writes.
	router.Use(NewRequestIDMiddleware(), NewLoggingMiddleware(logger), NewRecoveryMiddleware(responder, logger))

	// Public endpoints (no auth required)
	router.Handle("GET /", NewInfoHandler(cfg.Info, cfg.Tools, cfg.RatePolicy))
	router.Handle("GET /health", NewHealthHandler(cfg.Health))
	router.Handle("GET /health/ready", NewHealthHandler(cfg.Health))
	router.Handle("GET /health/live", NewLivenessHandler(cfg.Health))

	// Protected endpoints (auth required)
	authed := router.With(authMiddleware.Authenticate())
	authed.Handle("GET /auth-test", NewAuthTestHandler(responder))
	authed.With(rateLimitMiddleware).Handle("POST /mcp", NewMCPHandler(cfg.MCPHandler, responder, logger))

	return router, nil
}
