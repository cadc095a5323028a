package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// MaxRequestBytes bounds a JSON-RPC request body.
const MaxRequestBytes = 1 << 20

// mcpHandler handles MCP protocol requests over HTTP.
type mcpHandler struct {
	handler   mcp.Handler
	responder transportcore.ErrorResponder
	logger    *slog.Logger
}

// NewMCPHandler creates a handler for MCP JSON-RPC requests.
// It parses JSON-RPC requests, delegates to the MCP handler, and returns JSON-RPC responses.
// If logger is nil, it uses the default slog logger.
func NewMCPHandler(handler mcp.Handler, responder transportcore.ErrorResponder, logger *slog.Logger) http.Handler {
	if handler == nil {
		panic("handler cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &mcpHandler{
		handler:   handler,
		responder: responder,
		logger:    logger,
	}
}

// ServeHTTP handles POST requests for MCP protocol.
// Notifications are acknowledged with 202 Accepted and no body.
func (h *mcpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if ct := r.Header.Get(apikey.HeaderContentType); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err != nil || mediaType != apikey.ContentTypeJSON {
			h.logger.WarnContext(ctx, "unexpected content type", "content_type", ct)
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = transportcore.ErrBodyTooLarge
		}
		h.responder.BadRequest(w, err)
		return
	}
	defer func() {
		if closeErr := r.Body.Close(); closeErr != nil {
			h.logger.WarnContext(ctx, "failed to close request body", "error", closeErr)
		}
	}()

	var req mcp.Request
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to parse JSON-RPC request", "error", err)
		h.sendJSONRPCError(w, nil, mcp.CodeParseError, "Parse error")
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.WarnContext(ctx, "invalid JSON-RPC request", "error", err)
		h.sendJSONRPCError(w, req.ID, mcp.CodeInvalidRequest, "Invalid request")
		return
	}

	resp, err := h.handler.HandleRequest(ctx, &req)
	if err != nil {
		h.logger.ErrorContext(ctx, "MCP handler error", "error", err, "method", req.Method)
		h.sendJSONRPCError(w, req.ID, mcp.CodeInternalError, "Internal error")
		return
	}

	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// sendJSONRPCError sends a JSON-RPC error response to the client.
// JSON-RPC errors still return 200 OK.
func (h *mcpHandler) sendJSONRPCError(w http.ResponseWriter, id any, code int, message string) {
	writeJSON(w, http.StatusOK, &mcp.Response{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      id,
		Error: &mcp.Error{
			Code:    code,
			Message: message,
		},
	})
}
