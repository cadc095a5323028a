// Package transportcore provides core types, interfaces, and primitives for the transport layer.
// This package exists to break import cycles between the transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"

	"github.com/jamesprial/hr-mcp-gateway/internal/health"
)

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware func(http.Handler) http.Handler

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server interface {
	// Start begins serving HTTP requests on the configured address.
	// This is a blocking call that returns when the server stops
	// or encounters an error during startup.
	Start() error

	// Shutdown gracefully shuts down the server without interrupting
	// active connections. It waits for active connections to close
	// or the context to be cancelled/expired.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	// This is useful when the server is configured to bind to a random port.
	Addr() string
}

// Router handles HTTP request routing and middleware composition.
// It extends http.Handler with pattern-based routing and middleware support.
type Router interface {
	http.Handler

	// Handle registers a handler for the given pattern.
	// Patterns take an optional method prefix, e.g. "GET /health".
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for the given pattern.
	HandleFunc(pattern string, handler http.HandlerFunc)

	// Use applies middleware to all subsequent route registrations.
	// Middleware is applied in the order registered.
	Use(middlewares ...Middleware)

	// With returns a router sharing the same routes whose registrations
	// are additionally wrapped with middlewares.
	With(middlewares ...Middleware) Router
}

// AuthMiddleware provides API-key authentication middleware.
type AuthMiddleware interface {
	// Authenticate resolves the presented API key and adds the principal
	// to the request context.
	//
	// Returns 401 Unauthorized if the key is missing or not accepted.
	Authenticate() Middleware
}

// HealthReporter reports dependency health.
type HealthReporter interface {
	// Check runs every dependency check.
	Check(ctx context.Context) health.Report

	// Live reports process liveness without touching dependencies.
	Live() health.Report
}

// ErrorResponder writes JSON error responses of the form
// {"error":"<Kind>","message":"..."}.
type ErrorResponder interface {
	// Unauthenticated sends a 401 Unauthorized response. The message tells a
	// missing key apart from a rejected one.
	Unauthenticated(w http.ResponseWriter, err error)

	// Throttled sends a 429 Too Many Requests response. err is built by
	// ratelimit.ThrottledError; its retry hint and quota become the
	// Retry-After and X-RateLimit-* headers.
	Throttled(w http.ResponseWriter, err error)

	// Unavailable sends a 503 Service Unavailable response.
	Unavailable(w http.ResponseWriter, err error)

	// InternalError sends a 500 Internal Server Error response.
	// The response body contains a JSON error message.
	InternalError(w http.ResponseWriter, err error)

	// BadRequest sends a 400 Bad Request response.
	// The response body contains a JSON error message.
	BadRequest(w http.ResponseWriter, err error)
}
