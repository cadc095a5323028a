// Package mcp provides MCP protocol handler implementation.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
)

// handler implements the Handler interface.
// It routes JSON-RPC requests to the dispatcher and the resource registry.
type handler struct {
	toolRegistry     ToolRegistry
	dispatcher       Dispatcher
	resourceRegistry ResourceRegistry
	serverInfo       serverInfo
	logger           *slog.Logger
}

// serverInfo contains metadata about the MCP server.
type serverInfo struct {
	Name    string
	Version string
}

// newHandler creates a new MCP protocol handler.
func newHandler(toolRegistry ToolRegistry, dispatcher Dispatcher, resourceRegistry ResourceRegistry, info serverInfo, logger *slog.Logger) Handler {
	if toolRegistry == nil {
		panic("toolRegistry cannot be nil")
	}
	if dispatcher == nil {
		panic("dispatcher cannot be nil")
	}
	if resourceRegistry == nil {
		panic("resourceRegistry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &handler{
		toolRegistry:     toolRegistry,
		dispatcher:       dispatcher,
		resourceRegistry: resourceRegistry,
		serverInfo:       info,
		logger:           logger,
	}
}

// HandleRequest processes an MCP JSON-RPC request.
// Notifications produce a nil response.
func (h *handler) HandleRequest(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return h.errorResponse(nil, CodeInvalidRequest, "request cannot be nil", nil), nil
	}

	// Validate JSON-RPC version
	if req.JSONRPC != JSONRPCVersion {
		return h.errorResponse(req.ID, CodeInvalidRequest, "invalid jsonrpc version", nil), nil
	}

	// Validate method is present
	if req.Method == "" {
		return h.errorResponse(req.ID, CodeInvalidRequest, "method is required", nil), nil
	}

	if strings.HasPrefix(req.Method, "notifications/") {
		return nil, nil
	}

	// Route to appropriate handler
	switch req.Method {
	case "initialize":
		return h.handleInitialize(ctx, req)
	case "ping":
		return h.result(req.ID, struct{}{}), nil
	case "tools/list":
		return h.handleToolsList(ctx, req)
	case "tools/call":
		return h.handleToolsCall(ctx, req)
	case "resources/list":
		return h.handleResourcesList(ctx, req)
	case "resources/read":
		return h.handleResourcesRead(ctx, req)
	default:
		return h.errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method), nil), nil
	}
}

// handleInitialize handles the initialize method.
func (h *handler) handleInitialize(ctx context.Context, req *Request) (*Response, error) {
	var params InitializeParams
	if req.Params != nil {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return h.errorResponse(req.ID, CodeInvalidParams, "invalid initialize params", nil), nil
		}
	}
	h.logger.InfoContext(ctx, "mcp session initialized",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"client_protocol", params.ProtocolVersion,
	)

	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo: Implementation{
			Name:    h.serverInfo.Name,
			Version: h.serverInfo.Version,
		},
		Capabilities: Capabilities{
			Tools:     &struct{}{},
			Resources: &struct{}{},
		},
	}

	return h.result(req.ID, result), nil
}

// handleToolsList handles the tools/list method.
func (h *handler) handleToolsList(ctx context.Context, req *Request) (*Response, error) {
	return h.result(req.ID, ToolsListResult{Tools: h.toolRegistry.ListTools()}), nil
}

// handleToolsCall handles the tools/call method.
func (h *handler) handleToolsCall(ctx context.Context, req *Request) (*Response, error) {
	if req.Params == nil {
		return h.errorResponse(req.ID, CodeInvalidParams, "params required", nil), nil
	}

	var params ToolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return h.errorResponse(req.ID, CodeInvalidParams, "invalid tools/call params", nil), nil
	}

	if params.Name == "" {
		return h.errorResponse(req.ID, CodeInvalidParams, "tool name is required", nil), nil
	}

	principal, _ := auth.PrincipalFromContext(ctx)
	res := h.dispatcher.Dispatch(ctx, &ToolRequest{
		Name:      params.Name,
		Arguments: params.Arguments,
		Principal: principal,
	})

	if res.Err == nil {
		text, err := json.Marshal(res.Value)
		if err != nil {
			h.logger.ErrorContext(ctx, "tool result not encodable", "tool", params.Name, "error", err)
			return h.errorResponse(req.ID, CodeInternalError, "tool result could not be encoded", ErrorData{Kind: ierrors.KindInternal, Tool: params.Name}), nil
		}
		return h.result(req.ID, ToolsCallResult{
			Content:           []Content{{Type: "text", Text: string(text)}},
			StructuredContent: res.Value,
		}), nil
	}

	kind := ierrors.KindOf(res.Err)
	if kind == ierrors.KindBusinessRuleViolation {
		te := ToolError{Kind: kind, Message: ruleMessage(res.Err), Context: ruleContext(res.Err)}
		text, _ := json.Marshal(te)
		return h.result(req.ID, ToolsCallResult{
			Content:           []Content{{Type: "text", Text: string(text)}},
			StructuredContent: te,
			IsError:           true,
		}), nil
	}

	code, message := toolErrorCode(kind, res.Err)
	data := ErrorData{Kind: kind, Tool: params.Name, Field: ierrors.Field(res.Err)}
	if scope, ok := ierrors.Lookup(res.Err, ContextScope); ok {
		data.Scope, _ = scope.(string)
	}
	return h.errorResponse(req.ID, code, message, data), nil
}

// handleResourcesList handles the resources/list method.
func (h *handler) handleResourcesList(ctx context.Context, req *Request) (*Response, error) {
	return h.result(req.ID, ResourcesListResult{Resources: h.resourceRegistry.ListResources()}), nil
}

// handleResourcesRead handles the resources/read method.
func (h *handler) handleResourcesRead(ctx context.Context, req *Request) (*Response, error) {
	if req.Params == nil {
		return h.errorResponse(req.ID, CodeInvalidParams, "params required", nil), nil
	}

	var params ResourcesReadParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return h.errorResponse(req.ID, CodeInvalidParams, "invalid resources/read params", nil), nil
	}

	if params.URI == "" {
		return h.errorResponse(req.ID, CodeInvalidParams, "resource uri is required", nil), nil
	}

	resource, err := h.resourceRegistry.GetResource(ctx, params.URI)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return h.errorResponse(req.ID, CodeResourceNotFound, fmt.Sprintf("resource not found: %s", params.URI), nil), nil
		}
		h.logger.ErrorContext(ctx, "resource read failed", "uri", params.URI, "error", err)
		return h.errorResponse(req.ID, CodeInternalError, "failed to read resource", nil), nil
	}

	result := ResourcesReadResult{
		Contents: []ResourceContent{
			{
				URI:      resource.URI,
				MimeType: resource.MimeType,
				Text:     resource.Text,
			},
		},
	}

	return h.result(req.ID, result), nil
}

func (h *handler) result(id, result any) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// errorResponse creates a JSON-RPC error response.
func (h *handler) errorResponse(id any, code int, message string, data any) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// toolErrorCode maps an error kind to its JSON-RPC code and a message that
// is safe to show callers. Store and driver detail stays in the logs.
func toolErrorCode(kind string, err error) (int, string) {
	switch kind {
	case ierrors.KindUnknownTool:
		name, _ := ierrors.Lookup(err, ContextTool)
		return CodeToolNotFound, fmt.Sprintf("tool not found: %v", name)
	case ierrors.KindInvalidArguments:
		if field := ierrors.Field(err); field != "" {
			return CodeInvalidParams, "invalid argument: " + field
		}
		return CodeInvalidParams, "invalid arguments"
	case ierrors.KindForbidden:
		return CodeForbidden, "missing required scope"
	case ierrors.KindPoolExhausted:
		return CodePoolExhausted, "no database connection available, retry later"
	case ierrors.KindUpstreamError:
		return CodeUpstreamError, "data store error"
	default:
		return CodeInternalError, "internal error"
	}
}

// ruleMessage returns the cause of the outermost domain error, which for
// rule violations is the sentinel naming the refusal.
func ruleMessage(err error) string {
	var de *ierrors.DomainError
	if errors.As(err, &de) {
		if de.Err != nil {
			return de.Err.Error()
		}
		return de.Kind.Error()
	}
	return err.Error()
}

func ruleContext(err error) map[string]any {
	var de *ierrors.DomainError
	if !errors.As(err, &de) || len(de.Context) == 0 {
		return nil
	}
	return de.Context
}
