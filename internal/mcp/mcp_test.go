package mcp

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestToolsCallResult_WireShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   ToolsCallResult
		want     []string
		wantNone []string
	}{
		{
			name: "success carries text and structured content",
			result: ToolsCallResult{
				Content:           []Content{{Type: "text", Text: `{"balance":9}`}},
				StructuredContent: map[string]any{"balance": 9},
			},
			want:     []string{`"content":[{"type":"text","text":"{\"balance\":9}"}]`, `"structuredContent":{"balance":9}`},
			wantNone: []string{`"isError"`},
		},
		{
			name: "rule violation is flagged",
			result: ToolsCallResult{
				Content:           []Content{{Type: "text", Text: "{}"}},
				StructuredContent: ToolError{Kind: "BusinessRuleViolation", Message: "employee not found"},
				IsError:           true,
			},
			want:     []string{`"isError":true`, `"kind":"BusinessRuleViolation"`, `"message":"employee not found"`},
			wantNone: []string{`"context"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(tt.result)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			for _, s := range tt.want {
				if !strings.Contains(string(data), s) {
					t.Errorf("%s missing %s", data, s)
				}
			}
			for _, s := range tt.wantNone {
				if strings.Contains(string(data), s) {
					t.Errorf("%s should not contain %s", data, s)
				}
			}
		})
	}
}

func TestResponse_ErrorDataOmitsEmptyFields(t *testing.T) {
	t.Parallel()

	resp := Response{
		JSONRPC: JSONRPCVersion,
		ID:      "call-1",
		Error: &Error{
			Code:    CodeToolNotFound,
			Message: "tool not found: nope",
			Data:    ErrorData{Kind: "UnknownTool", Tool: "nope"},
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := decoded["result"]; ok {
		t.Error("error response should not carry a result")
	}

	errObj, _ := decoded["error"].(map[string]any)
	dataObj, _ := errObj["data"].(map[string]any)
	if !reflect.DeepEqual(dataObj, map[string]any{"kind": "UnknownTool", "tool": "nope"}) {
		t.Errorf("error.data = %v, want kind and tool only", dataObj)
	}
}

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      Error
		contains string
	}{
		{
			name: "method not found",
			err: Error{
				Code:    CodeMethodNotFound,
				Message: "Method not found",
			},
			contains: "Method not found",
		},
		{
			name: "invalid params",
			err: Error{
				Code:    CodeInvalidParams,
				Message: "Invalid params",
			},
			contains: "Invalid params",
		},
		{
			name: "internal error",
			err: Error{
				Code:    CodeInternalError,
				Message: "Internal error",
			},
			contains: "Internal error",
		},
		{
			name: "parse error",
			err: Error{
				Code:    CodeParseError,
				Message: "Parse error",
			},
			contains: "Parse error",
		},
		{
			name: "invalid request",
			err: Error{
				Code:    CodeInvalidRequest,
				Message: "Invalid request",
			},
			contains: "Invalid request",
		},
		{
			name: "resource not found",
			err: Error{
				Code:    CodeResourceNotFound,
				Message: "Resource not found",
			},
			contains: "Resource not found",
		},
		{
			name: "tool not found",
			err: Error{
				Code:    CodeToolNotFound,
				Message: "Tool not found",
			},
			contains: "Tool not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.err.Error()
			if !containsString(got, tt.contains) {
				t.Errorf("Error() = %q, want to contain %q", got, tt.contains)
			}
		})
	}
}

func TestError_ErrorWithCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     Error
		wantSub string
	}{
		{
			name: "includes code in message",
			err: Error{
				Code:    -32601,
				Message: "Method not found",
			},
			wantSub: "-32601",
		},
		{
			name: "includes custom code",
			err: Error{
				Code:    -32002,
				Message: "Resource not found",
			},
			wantSub: "-32002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.err.Error()
			// Error message should contain the code
			if !containsString(got, tt.wantSub) {
				t.Errorf("Error() = %q, want to contain %q", got, tt.wantSub)
			}
		})
	}
}

func TestErrorCodes_Constants(t *testing.T) {
	t.Parallel()

	// Clients key on these values; they must not drift.
	tests := map[string]struct{ code, want int }{
		"parse error":        {CodeParseError, -32700},
		"invalid request":    {CodeInvalidRequest, -32600},
		"method not found":   {CodeMethodNotFound, -32601},
		"invalid params":     {CodeInvalidParams, -32602},
		"internal error":     {CodeInternalError, -32603},
		"forbidden":          {CodeForbidden, -32001},
		"resource not found": {CodeResourceNotFound, -32002},
		"tool not found":     {CodeToolNotFound, -32003},
		"pool exhausted":     {CodePoolExhausted, -32004},
		"upstream error":     {CodeUpstreamError, -32005},
	}

	for name, tt := range tests {
		if tt.code != tt.want {
			t.Errorf("%s = %d, want %d", name, tt.code, tt.want)
		}
	}
}

func TestNewError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		code        int
		message     string
		data        interface{}
		wantCode    int
		wantMessage string
		wantData    bool
	}{
		{
			name:        "simple error",
			code:        CodeMethodNotFound,
			message:     "Method not found",
			data:        nil,
			wantCode:    CodeMethodNotFound,
			wantMessage: "Method not found",
			wantData:    false,
		},
		{
			name:        "error with data",
			code:        CodeInvalidParams,
			message:     "Invalid params",
			data:        map[string]string{"field": "name"},
			wantCode:    CodeInvalidParams,
			wantMessage: "Invalid params",
			wantData:    true,
		},
		{
			name:        "custom error code",
			code:        CodeResourceNotFound,
			message:     "Resource not found: hr://policy",
			data:        nil,
			wantCode:    CodeResourceNotFound,
			wantMessage: "Resource not found: hr://policy",
			wantData:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NewError(tt.code, tt.message, tt.data)
			if got == nil {
				t.Fatal("NewError() returned nil")
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
			if tt.wantData && got.Data == nil {
				t.Error("Data is nil, want non-nil")
			}
			if !tt.wantData && got.Data != nil {
				t.Errorf("Data = %v, want nil", got.Data)
			}
		})
	}
}

func TestMCPVersion_Constants(t *testing.T) {
	t.Parallel()

	// MCP protocol version should be defined
	if ProtocolVersion == "" {
		t.Error("ProtocolVersion should not be empty")
	}

	// JSONRPC version should be 2.0
	if JSONRPCVersion != "2.0" {
		t.Errorf("JSONRPCVersion = %q, want %q", JSONRPCVersion, "2.0")
	}
}

func TestRequest_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		request Request
		wantErr bool
	}{
		{
			name: "valid request",
			request: Request{
				JSONRPC: "2.0",
				ID:      1,
				Method:  "initialize",
			},
			wantErr: false,
		},
		{
			name: "missing jsonrpc",
			request: Request{
				ID:     1,
				Method: "initialize",
			},
			wantErr: true,
		},
		{
			name: "wrong jsonrpc version",
			request: Request{
				JSONRPC: "1.0",
				ID:      1,
				Method:  "initialize",
			},
			wantErr: true,
		},
		{
			name: "missing method",
			request: Request{
				JSONRPC: "2.0",
				ID:      1,
			},
			wantErr: true,
		},
		{
			name: "empty method",
			request: Request{
				JSONRPC: "2.0",
				ID:      1,
				Method:  "",
			},
			wantErr: true,
		},
		{
			name: "notification without ID is valid",
			request: Request{
				JSONRPC: "2.0",
				Method:  "notifications/cancelled",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.request.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResponse_IsError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response Response
		want     bool
	}{
		{
			name: "success response",
			response: Response{
				JSONRPC: "2.0",
				ID:      1,
				Result:  json.RawMessage(`{}`),
			},
			want: false,
		},
		{
			name: "error response",
			response: Response{
				JSONRPC: "2.0",
				ID:      1,
				Error: &Error{
					Code:    CodeMethodNotFound,
					Message: "Method not found",
				},
			},
			want: true,
		},
		{
			name: "response with both result and error uses error",
			response: Response{
				JSONRPC: "2.0",
				ID:      1,
				Result:  json.RawMessage(`{}`),
				Error: &Error{
					Code:    CodeInternalError,
					Message: "Internal error",
				},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.response.IsError()
			if got != tt.want {
				t.Errorf("IsError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMCPError_Unwrap(t *testing.T) {
	t.Parallel()

	innerErr := errors.New("connection refused")
	mcpErr := &Error{
		Code:    CodeInternalError,
		Message: "Internal error",
		Cause:   innerErr,
	}

	// Test that Unwrap returns the inner error
	unwrapped := mcpErr.Unwrap()
	if unwrapped != innerErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, innerErr)
	}

	// Test that errors.Is works correctly
	if !errors.Is(mcpErr, innerErr) {
		t.Error("errors.Is() should return true for wrapped error")
	}
}

func TestMCPError_NilUnwrap(t *testing.T) {
	t.Parallel()

	mcpErr := &Error{
		Code:    CodeMethodNotFound,
		Message: "Method not found",
	}

	// Test that Unwrap returns nil when no cause
	unwrapped := mcpErr.Unwrap()
	if unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

// Helper function
func containsString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// Benchmark tests
func BenchmarkRequest_Marshal(b *testing.B) {
	request := Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name":"search_employees","arguments":{"query":"priya"}}`),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(request)
	}
}

func BenchmarkRequest_Unmarshal(b *testing.B) {
	data := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search_employees","arguments":{"query":"priya"}}}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var req Request
		_ = json.Unmarshal(data, &req)
	}
}

func BenchmarkResponse_Marshal(b *testing.B) {
	response := Response{
		JSONRPC: "2.0",
		ID:      1,
		Result:  json.RawMessage(`{"content":[{"type":"text","text":"Hello, World!"}]}`),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(response)
	}
}
