package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/internal/mocks"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
)

func TestInfoHandler(t *testing.T) {
	t.Parallel()

	tools := &mocks.ToolRegistry{Definitions: []mcp.ToolDefinition{
		{Name: "get_employee"},
		{Name: "get_leave_balance"},
	}}

	tests := []struct {
		name       string
		policy     string
		wantPolicy bool
	}{
		{"with policy", "fixed-window", true},
		{"without policy", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewInfoHandler(Info{Name: "hr-mcp-gateway", Version: "1.2.3"}, tools, tt.policy)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Status = %v, want 200", w.Code)
			}

			var body infoResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Name != "hr-mcp-gateway" || body.Version != "1.2.3" {
				t.Errorf("name/version = %q/%q", body.Name, body.Version)
			}
			if body.ProtocolVersion != mcp.ProtocolVersion {
				t.Errorf("protocol_version = %q, want %q", body.ProtocolVersion, mcp.ProtocolVersion)
			}
			if body.Tools != 2 {
				t.Errorf("tools = %d, want 2", body.Tools)
			}
			if body.Auth.Header != "X-API-Key" {
				t.Errorf("auth.header = %q, want X-API-Key", body.Auth.Header)
			}
			if body.Endpoint != "/mcp" {
				t.Errorf("endpoint = %q, want /mcp", body.Endpoint)
			}
			if (body.RateLimit != nil) != tt.wantPolicy {
				t.Errorf("rate_limit = %+v, want present=%v", body.RateLimit, tt.wantPolicy)
			}
			if tt.wantPolicy && body.RateLimit.Policy != tt.policy {
				t.Errorf("rate_limit.policy = %q, want %q", body.RateLimit.Policy, tt.policy)
			}
		})
	}
}

func TestAuthTestHandler(t *testing.T) {
	t.Parallel()

	responder := &mocks.ErrorResponder{}
	handler := NewAuthTestHandler(responder)

	principal := &auth.Principal{
		KeyID:  "k1",
		Label:  "payroll",
		Tier:   "elevated",
		Scopes: []string{"hr:read"},
		Source: "static",
	}

	req := httptest.NewRequest(http.MethodGet, "/auth-test", nil)
	req.Header.Set("X-API-Key", "ttmcp-abcdef0123456789")
	req = req.WithContext(transportcore.ContextWithPrincipal(req.Context(), principal))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %v, want 200", w.Code)
	}

	var body authTestResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Authenticated {
		t.Error("authenticated = false")
	}
	if body.KeyPrefix != "ttmcp-ab..." {
		t.Errorf("key_prefix = %q, want ttmcp-ab...", body.KeyPrefix)
	}
	if body.KeyID != "k1" || body.Label != "payroll" || body.Tier != "elevated" || body.Source != "static" {
		t.Errorf("body = %+v", body)
	}
	if len(body.Scopes) != 1 || body.Scopes[0] != "hr:read" {
		t.Errorf("scopes = %v", body.Scopes)
	}
}

func TestAuthTestHandler_NoPrincipal(t *testing.T) {
	t.Parallel()

	responder := &mocks.ErrorResponder{}
	handler := NewAuthTestHandler(responder)

	req := httptest.NewRequest(http.MethodGet, "/auth-test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Status = %v, want 401", w.Code)
	}
	if !responder.UnauthenticatedCalled {
		t.Error("Unauthenticated was not called")
	}
}
