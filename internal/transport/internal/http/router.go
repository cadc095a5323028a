package http

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
)

// router implements transportcore.Router on top of a chi.Mux.
// Middleware is applied per registration rather than with chi's Use so
// that, as with the rest of the transport API, Use only affects routes
// registered after it.
type router struct {
	mux         *chi.Mux
	middlewares []transportcore.Middleware
}

// NewRouter creates a new HTTP router backed by chi.
// Unmatched paths and methods get JSON 404 and 405 responses.
func NewRouter() transportcore.Router {
	mux := chi.NewRouter()
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NotFound", "The requested resource was not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "The requested method is not allowed for this resource")
	})

	return &router{
		mux:         mux,
		middlewares: make([]transportcore.Middleware, 0),
	}
}

// Handle registers a handler for the given pattern.
// The handler is wrapped with all currently registered middleware.
// A pattern of the form "METHOD /path" restricts the route to that method.
func (r *router) Handle(pattern string, handler http.Handler) {
	wrapped := r.applyMiddleware(handler)

	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		r.mux.Handle(pattern, wrapped)
		return
	}
	r.mux.Method(method, strings.TrimSpace(path), wrapped)
}

// HandleFunc registers a handler function for the given pattern.
// The handler is wrapped with all currently registered middleware.
func (r *router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// Use applies middleware to all subsequent route registrations.
// Middleware is applied in the order registered.
func (r *router) Use(middlewares ...transportcore.Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// With returns a router that registers into the same mux with the current
// middleware followed by middlewares.
func (r *router) With(middlewares ...transportcore.Middleware) transportcore.Router {
	return &router{
		mux:         r.mux,
		middlewares: append(slices.Clone(r.middlewares), middlewares...),
	}
}

// ServeHTTP implements http.Handler by delegating to the underlying mux.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// applyMiddleware wraps the handler with all registered middleware.
// Middleware is applied in order, so the first middleware in the list
// is the outermost layer (executes first).
func (r *router) applyMiddleware(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
