package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
)

func newTestHandler(t *testing.T, conns Acquirer, tools ...Tool) Handler {
	t.Helper()
	h, reg, resources := NewMCPServices(&Config{ServerName: "hr-mcp-gateway", ServerVersion: "test", Logger: quietLogger()}, conns)
	for _, tool := range tools {
		if err := reg.RegisterTool(tool.Definition().Name, tool); err != nil {
			t.Fatal(err)
		}
	}
	if err := resources.RegisterResource(CatalogURI, NewCatalogResource(reg)); err != nil {
		t.Fatal(err)
	}
	return h
}

func call(t *testing.T, h Handler, ctx context.Context, method, params string) *Response {
	t.Helper()
	req := &Request{JSONRPC: JSONRPCVersion, ID: 1, Method: method}
	if params != "" {
		req.Params = json.RawMessage(params)
	}
	resp, err := h.HandleRequest(ctx, req)
	if err != nil {
		t.Fatalf("HandleRequest() error = %v", err)
	}
	return resp
}

func withReader(ctx context.Context) context.Context {
	return auth.ContextWithPrincipal(ctx, reader())
}

func TestHandler_Methods(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, newCountingAcquirer(), newStubTool("get_holidays", true, nil))

	tests := []struct {
		name     string
		method   string
		params   string
		wantCode int
	}{
		{name: "initialize", method: "initialize", params: `{"protocolVersion":"2024-11-05","clientInfo":{"name":"c","version":"1"}}`},
		{name: "ping", method: "ping"},
		{name: "tools/list", method: "tools/list"},
		{name: "resources/list", method: "resources/list"},
		{name: "resources/read", method: "resources/read", params: `{"uri":"hr://tools/catalog"}`},
		{name: "resources/read unknown", method: "resources/read", params: `{"uri":"hr://nope"}`, wantCode: CodeResourceNotFound},
		{name: "resources/read without uri", method: "resources/read", params: `{}`, wantCode: CodeInvalidParams},
		{name: "unknown method", method: "prompts/list", wantCode: CodeMethodNotFound},
		{name: "tools/call without params", method: "tools/call", wantCode: CodeInvalidParams},
		{name: "tools/call bad params", method: "tools/call", params: `[1,2]`, wantCode: CodeInvalidParams},
		{name: "tools/call without name", method: "tools/call", params: `{"arguments":{}}`, wantCode: CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := call(t, h, context.Background(), tt.method, tt.params)
			if resp.ID != 1 {
				t.Errorf("ID = %v, want 1", resp.ID)
			}
			if tt.wantCode == 0 {
				if resp.Error != nil {
					t.Fatalf("unexpected error: %v", resp.Error)
				}
				return
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %v, want code %d", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestHandler_InitializeResult(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, nil)
	resp := call(t, h, context.Background(), "initialize", "")
	result, ok := resp.Result.(InitializeResult)
	if !ok {
		t.Fatalf("Result type = %T", resp.Result)
	}
	if result.ProtocolVersion != ProtocolVersion || result.ServerInfo.Name != "hr-mcp-gateway" {
		t.Errorf("result = %+v", result)
	}
	if result.Capabilities.Tools == nil || result.Capabilities.Resources == nil {
		t.Error("tools and resources capabilities must be advertised")
	}
}

func TestHandler_Notification(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, nil)
	resp, err := h.HandleRequest(context.Background(), &Request{JSONRPC: JSONRPCVersion, Method: "notifications/initialized"})
	if err != nil || resp != nil {
		t.Errorf("HandleRequest() = %v, %v; want nil, nil", resp, err)
	}
}

func TestHandler_InvalidEnvelope(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, nil)
	tests := []struct {
		name string
		req  *Request
	}{
		{name: "nil", req: nil},
		{name: "wrong version", req: &Request{JSONRPC: "1.0", ID: 1, Method: "ping"}},
		{name: "no method", req: &Request{JSONRPC: JSONRPCVersion, ID: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, err := h.HandleRequest(context.Background(), tt.req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.Error == nil || resp.Error.Code != CodeInvalidRequest {
				t.Errorf("error = %v, want code %d", resp.Error, CodeInvalidRequest)
			}
		})
	}
}

func TestHandler_ToolsCallSuccess(t *testing.T) {
	t.Parallel()

	tool := newStubTool("get_leave_balance", true, func(_ context.Context, call *ToolCall) (any, error) {
		return map[string]any{"employee_id": call.Arguments["employee_id"], "balance": 9.0}, nil
	}, mcpgo.WithNumber("employee_id", mcpgo.Required()))

	h := newTestHandler(t, newCountingAcquirer(), tool)
	resp := call(t, h, withReader(context.Background()), "tools/call", `{"name":"get_leave_balance","arguments":{"employee_id":42}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(ToolsCallResult)
	if !ok {
		t.Fatalf("Result type = %T", resp.Result)
	}
	if result.IsError {
		t.Error("IsError = true")
	}
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		t.Fatalf("Content = %+v", result.Content)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].Text), &decoded); err != nil {
		t.Fatalf("content is not JSON: %v", err)
	}
	if decoded["balance"] != 9.0 || decoded["employee_id"] != 42.0 {
		t.Errorf("decoded = %v", decoded)
	}
	if result.StructuredContent == nil {
		t.Error("StructuredContent missing")
	}
}

func TestHandler_ToolsCallRuleViolation(t *testing.T) {
	t.Parallel()

	tool := newStubTool("get_employee_details", true, func(context.Context, *ToolCall) (any, error) {
		return nil, ruleViolation()
	})
	h := newTestHandler(t, newCountingAcquirer(), tool)

	resp := call(t, h, withReader(context.Background()), "tools/call", `{"name":"get_employee_details","arguments":{}}`)
	if resp.Error != nil {
		t.Fatalf("rule violation surfaced as JSON-RPC error: %v", resp.Error)
	}
	result := resp.Result.(ToolsCallResult)
	if !result.IsError {
		t.Error("IsError = false")
	}
	te, ok := result.StructuredContent.(ToolError)
	if !ok {
		t.Fatalf("StructuredContent type = %T", result.StructuredContent)
	}
	if te.Kind != ierrors.KindBusinessRuleViolation || te.Message != "employee not found" {
		t.Errorf("ToolError = %+v", te)
	}
	if te.Context["query"] != "nobody" {
		t.Errorf("Context = %v", te.Context)
	}
}

func TestHandler_ToolsCallErrors(t *testing.T) {
	t.Parallel()

	failing := newStubTool("get_work_report", true, func(context.Context, *ToolCall) (any, error) {
		return nil, errors.New("Error 1146: Table 'hr.work_report' doesn't exist")
	})
	needsArg := newStubTool("get_leave_balance", true, nil, mcpgo.WithNumber("employee_id", mcpgo.Required()))
	admin := &stubTool{def: NewDefinition(mcpgo.NewTool("generate_api_key"), []string{"keys:admin"}, false)}

	exhausted := newCountingAcquirer()
	exhausted.fail = ierrors.New("pool", "Acquire", ierrors.ErrExhausted, context.DeadlineExceeded)

	tests := []struct {
		name      string
		conns     Acquirer
		params    string
		wantCode  int
		wantKind  string
		wantField string
	}{
		{name: "unknown tool", conns: newCountingAcquirer(), params: `{"name":"drop_tables"}`, wantCode: CodeToolNotFound, wantKind: ierrors.KindUnknownTool},
		{name: "invalid arguments", conns: newCountingAcquirer(), params: `{"name":"get_leave_balance","arguments":{"employee_id":"x"}}`, wantCode: CodeInvalidParams, wantKind: ierrors.KindInvalidArguments, wantField: "employee_id"},
		{name: "forbidden", conns: newCountingAcquirer(), params: `{"name":"generate_api_key"}`, wantCode: CodeForbidden, wantKind: ierrors.KindForbidden},
		{name: "upstream", conns: newCountingAcquirer(), params: `{"name":"get_work_report"}`, wantCode: CodeUpstreamError, wantKind: ierrors.KindUpstreamError},
		{name: "pool exhausted", conns: exhausted, params: `{"name":"get_work_report"}`, wantCode: CodePoolExhausted, wantKind: ierrors.KindPoolExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandler(t, tt.conns, failing, needsArg, admin)
			resp := call(t, h, withReader(context.Background()), "tools/call", tt.params)
			if resp.Error == nil {
				t.Fatalf("Result = %+v, want error", resp.Result)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", resp.Error.Code, tt.wantCode)
			}
			data, ok := resp.Error.Data.(ErrorData)
			if !ok {
				t.Fatalf("Data type = %T", resp.Error.Data)
			}
			if data.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", data.Kind, tt.wantKind)
			}
			if data.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", data.Field, tt.wantField)
			}
			if strings.Contains(resp.Error.Message, "Table") {
				t.Errorf("message leaks store detail: %q", resp.Error.Message)
			}
		})
	}
}

func TestHandler_ToolsListHidesInternals(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, nil, newStubTool("get_holidays", true, nil, mcpgo.WithNumber("upcoming_days")))
	resp := call(t, h, context.Background(), "tools/list", "")

	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, `"inputSchema"`) || !strings.Contains(s, `"upcoming_days"`) {
		t.Errorf("tools/list missing schema: %s", s)
	}
	if strings.Contains(s, "RequiredScopes") || strings.Contains(s, "UsesStore") {
		t.Errorf("tools/list leaks dispatch fields: %s", s)
	}
}
