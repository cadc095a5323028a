package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
	"github.com/jamesprial/hr-mcp-gateway/internal/ratelimit"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// Public messages for rejected credentials.
const (
	MessageMissingKey = "API key required in X-API-Key header"
	MessageInvalidKey = "Invalid API key"
)

// errorResponse represents a JSON error response body.
type errorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// errorResponder implements transportcore.ErrorResponder.
type errorResponder struct {
	logger *slog.Logger
}

// NewErrorResponder creates a new error responder.
// If logger is nil, it uses the default slog logger.
func NewErrorResponder(logger *slog.Logger) transportcore.ErrorResponder {
	if logger == nil {
		logger = slog.Default()
	}
	return &errorResponder{logger: logger}
}

// Unauthenticated sends a 401 Unauthorized response.
func (e *errorResponder) Unauthenticated(w http.ResponseWriter, err error) {
	message := MessageInvalidKey
	if errors.Is(err, auth.ErrMissingKey) {
		message = MessageMissingKey
	}
	writeError(w, http.StatusUnauthorized, ierrors.KindUnauthenticated, message)
}

// Throttled sends a 429 Too Many Requests response. Retry-After is whole
// seconds, rounded up and never below one. An error that is not a
// throttle is answered as an internal error.
func (e *errorResponder) Throttled(w http.ResponseWriter, err error) {
	kind := ierrors.KindOf(err)
	if kind != ierrors.KindThrottled {
		e.InternalError(w, err)
		return
	}

	hint, _ := ierrors.RetryAfter(err)
	retryAfter := ratelimit.RetryAfterSeconds(hint)
	w.Header().Set(apikey.HeaderRetryAfter, strconv.Itoa(retryAfter))
	if limit, remaining, ok := ratelimit.Quota(err); ok {
		setRateLimitHeaders(w, limit, remaining)
	}

	writeJSON(w, http.StatusTooManyRequests, errorResponse{
		Error:      kind,
		Message:    "Rate limit exceeded",
		RetryAfter: retryAfter,
	})
}

// Unavailable sends a 503 Service Unavailable response.
func (e *errorResponder) Unavailable(w http.ResponseWriter, err error) {
	e.logger.Error("service unavailable", "error", err)
	writeError(w, http.StatusServiceUnavailable, ierrors.KindUpstreamError, "Service temporarily unavailable")
}

// InternalError sends a 500 Internal Server Error response.
// The response body contains a JSON error message.
func (e *errorResponder) InternalError(w http.ResponseWriter, err error) {
	e.logger.Error("internal server error", "error", err)
	writeError(w, http.StatusInternalServerError, ierrors.KindInternal, "An internal server error occurred")
}

// BadRequest sends a 400 Bad Request response.
// The response body contains a JSON error message.
func (e *errorResponder) BadRequest(w http.ResponseWriter, err error) {
	e.logger.Warn("bad request", "error", err)

	message := "Invalid request"
	if errors.Is(err, transportcore.ErrBodyTooLarge) {
		message = "Request body too large"
	}
	writeError(w, http.StatusBadRequest, ierrors.KindInvalidArguments, message)
}

// setRateLimitHeaders reports the caller's quota. An unlimited quota sets
// no headers.
func setRateLimitHeaders(w http.ResponseWriter, limit, remaining int) {
	if limit <= 0 {
		return
	}
	w.Header().Set(apikey.HeaderRateLimitLimit, strconv.Itoa(limit))
	w.Header().Set(apikey.HeaderRateLimitRemaining, strconv.Itoa(max(remaining, 0)))
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(apikey.HeaderContentType, apikey.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Can't send error response here since headers are already written
		slog.Error("failed to encode response", "error", err)
	}
}
