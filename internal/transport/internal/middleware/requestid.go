package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// maxRequestIDLen bounds client-supplied request IDs.
const maxRequestIDLen = 128

// NewRequestIDMiddleware creates middleware that assigns each request an ID.
// A client-supplied X-Request-ID is kept; otherwise a UUID is generated.
// The ID is echoed in the response header and stored in the request context.
func NewRequestIDMiddleware() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(apikey.HeaderRequestID)
			if requestID == "" || len(requestID) > maxRequestIDLen {
				requestID = uuid.NewString()
			}

			w.Header().Set(apikey.HeaderRequestID, requestID)
			ctx := transportcore.ContextWithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
