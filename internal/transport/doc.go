// Package transport provides the HTTP transport layer for the HR MCP gateway.
//
// # Architecture
//
// The transport package implements the HTTP layer that connects API-key
// authentication and per-key rate limiting with MCP protocol handling. It
// follows the adapter pattern to bridge the internal auth, ratelimit, health
// and MCP verticals with HTTP.
//
// Package structure:
//
//	internal/transport/
//	├── transport.go              # Public interfaces
//	├── errors.go                 # Transport domain errors
//	├── context.go                # Context keys and helpers
//	├── wire.go                   # Factory functions and routing
//	├── transportcore/            # Shared types (breaks import cycles)
//	├── internal/
//	│   ├── http/
//	│   │   ├── server.go         # HTTP server with graceful shutdown
//	│   │   ├── router.go         # chi-backed routing
//	│   │   └── response.go       # JSON error responder
//	│   ├── middleware/
//	│   │   ├── requestid.go      # X-Request-ID propagation
//	│   │   ├── auth.go           # API-key authentication
//	│   │   ├── ratelimit.go      # Per-key admission
//	│   │   ├── logging.go        # Request logging
//	│   │   └── recovery.go       # Panic recovery
//	│   └── handlers/
//	│       ├── info.go           # Server info and /auth-test
//	│       ├── mcp.go            # MCP protocol endpoint
//	│       └── health.go         # Health and liveness
//
// # Authentication
//
// Keys are presented in the X-API-Key header, or as
// "Authorization: Bearer <key>" when X-API-Key is absent. Keys are never
// accepted from the query string and never logged in full; logs carry an
// eight-character prefix only.
//
// # Middleware Chain
//
// Every route runs, outermost first:
//
//  1. Request ID - assigns or propagates X-Request-ID
//  2. Logging - logs method, path, status, duration
//  3. Recovery - catches panics and returns 500 errors
//
// Protected routes add:
//
//  4. Authentication - resolves the API key to a principal
//  5. Rate limiting - admits the call against the key's quota (/mcp only)
//
// A rejected key never reaches the limiter, so failed attempts do not
// consume quota.
//
// # Error Handling
//
// Errors outside JSON-RPC use a flat JSON body naming the error kind:
//
//	HTTP/1.1 401 Unauthorized
//	Content-Type: application/json
//
//	{"error": "Unauthenticated", "message": "Invalid API key"}
//
//	HTTP/1.1 429 Too Many Requests
//	Retry-After: 12
//	X-RateLimit-Limit: 60
//	X-RateLimit-Remaining: 0
//
//	{"error": "Throttled", "message": "Rate limit exceeded", "retry_after": 12}
//
// Failures inside an MCP call are reported as JSON-RPC errors with HTTP 200.
//
// # Endpoints
//
// Public endpoints (no authentication):
//   - GET / - Server info
//   - GET /health, /health/ready - Dependency health (503 when degraded)
//   - GET /health/live - Liveness
//
// Protected endpoints (authentication required):
//   - GET /auth-test - Echo the authenticated key
//   - POST /mcp - MCP protocol (JSON-RPC 2.0), rate limited
//
// # Context Values
//
// The authentication middleware stores the resolved principal in the
// request context:
//
//	p, ok := transport.PrincipalFromContext(r.Context())
//	if !ok {
//		// Not authenticated
//	}
//	tier := p.Tier
package transport
