package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
)

// NewRecoveryMiddleware turns a handler panic into a 500 InternalError
// response and an error log naming the request and, when authentication
// had already run, the key id. http.ErrAbortHandler is re-raised so the
// server can drop the connection.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder transportcore.ErrorResponder, logger *slog.Logger) transportcore.Middleware {
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				attrs := []any{
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", transportcore.RequestIDFromContext(r.Context()),
					"stack", string(debug.Stack()),
				}
				if c := transportcore.CallerFromContext(r.Context()); c != nil && c.KeyID != "" {
					attrs = append(attrs, "key_id", c.KeyID)
				}
				logger.ErrorContext(r.Context(), "handler panicked", attrs...)

				responder.InternalError(w, ierrors.New("transport", r.Method+" "+r.URL.Path,
					ierrors.ErrInternal, fmt.Errorf("panic: %v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
