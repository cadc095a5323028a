package transport

import (
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
)

// Re-export types from transportcore for backward compatibility.
// This allows external packages to import transport without creating cycles.

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
// It extends http.Handler with pattern-based routing and middleware support.
type Router = transportcore.Router

// AuthMiddleware provides API-key authentication middleware.
type AuthMiddleware = transportcore.AuthMiddleware

// HealthReporter reports dependency health.
type HealthReporter = transportcore.HealthReporter

// ErrorResponder writes JSON error responses.
type ErrorResponder = transportcore.ErrorResponder
