// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
	"github.com/jamesprial/hr-mcp-gateway/internal/health"
	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
	"github.com/jamesprial/hr-mcp-gateway/internal/ratelimit"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// CredentialStore is a mock implementation of auth.CredentialStore.
type CredentialStore struct {
	AuthenticateFunc func(ctx context.Context, presented string) (*auth.Principal, error)
}

// Authenticate calls the mock AuthenticateFunc. Without one, an empty key is
// missing and any other key is accepted as a default-tier principal.
func (m *CredentialStore) Authenticate(ctx context.Context, presented string) (*auth.Principal, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, presented)
	}
	if presented == "" {
		return nil, auth.ErrMissingKey
	}
	return &auth.Principal{
		KeyID:  "mock",
		Label:  "mock",
		Tier:   apikey.TierDefault,
		Scopes: []string{apikey.ScopeRead},
		Source: "static",
	}, nil
}

// Limiter is a mock implementation of ratelimit.Limiter.
type Limiter struct {
	AdmitFunc func(ctx context.Context, key, tier string) (ratelimit.Decision, error)

	mu    sync.Mutex
	calls []string
}

// Admit records the key and calls the mock AdmitFunc. Without one, every
// call is allowed with no limit reported.
func (m *Limiter) Admit(ctx context.Context, key, tier string) (ratelimit.Decision, error) {
	m.mu.Lock()
	m.calls = append(m.calls, key)
	m.mu.Unlock()

	if m.AdmitFunc != nil {
		return m.AdmitFunc(ctx, key, tier)
	}
	return ratelimit.Decision{Allowed: true}, nil
}

// Calls returns the keys passed to Admit, in order.
func (m *Limiter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MCPHandler is a mock implementation of mcp.Handler.
type MCPHandler struct {
	HandleFunc func(ctx context.Context, req *mcp.Request) (*mcp.Response, error)
}

// HandleRequest calls the mock HandleFunc.
func (m *MCPHandler) HandleRequest(ctx context.Context, req *mcp.Request) (*mcp.Response, error) {
	if m.HandleFunc != nil {
		return m.HandleFunc(ctx, req)
	}
	return &mcp.Response{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      req.ID,
	}, nil
}

// ToolRegistry is a mock implementation of mcp.ToolRegistry.
type ToolRegistry struct {
	Definitions []mcp.ToolDefinition
}

// RegisterTool is a no-op.
func (m *ToolRegistry) RegisterTool(string, mcp.Tool) error { return nil }

// GetTool always reports an unknown tool.
func (m *ToolRegistry) GetTool(name string) (mcp.Tool, error) {
	return nil, mcp.ErrToolNotFound
}

// ListTools returns Definitions.
func (m *ToolRegistry) ListTools() []mcp.ToolDefinition { return m.Definitions }

// HealthReporter is a mock implementation of transportcore.HealthReporter.
type HealthReporter struct {
	Report health.Report
}

// Check returns Report, or an all-ok report if Report is unset.
func (m *HealthReporter) Check(context.Context) health.Report {
	if m.Report.Status == "" {
		return health.Report{Status: health.StatusOK, Checks: map[string]health.CheckResult{}}
	}
	return m.Report
}

// Live always reports ok.
func (m *HealthReporter) Live() health.Report {
	return health.Report{Status: health.StatusOK}
}

// ErrorResponder is a mock implementation for error response handling.
type ErrorResponder struct {
	UnauthenticatedCalled bool
	UnauthenticatedErr    error
	ThrottledCalled       bool
	ThrottledErr          error
	UnavailableCalled     bool
	UnavailableErr        error
	InternalCalled        bool
	InternalErr           error
	BadRequestCalled      bool
	BadRequestErr         error
}

// Unauthenticated records the call and writes a 401 response.
func (m *ErrorResponder) Unauthenticated(w http.ResponseWriter, err error) {
	m.UnauthenticatedCalled = true
	m.UnauthenticatedErr = err
	writeStub(w, http.StatusUnauthorized, `{"error":"Unauthenticated"}`)
}

// Throttled records the call and writes a 429 response.
func (m *ErrorResponder) Throttled(w http.ResponseWriter, err error) {
	m.ThrottledCalled = true
	m.ThrottledErr = err
	retryAfter, _ := ierrors.RetryAfter(err)
	w.Header().Set(apikey.HeaderRetryAfter, strconv.Itoa(ratelimit.RetryAfterSeconds(retryAfter)))
	writeStub(w, http.StatusTooManyRequests, `{"error":"Throttled"}`)
}

// Unavailable records the call and writes a 503 response.
func (m *ErrorResponder) Unavailable(w http.ResponseWriter, err error) {
	m.UnavailableCalled = true
	m.UnavailableErr = err
	writeStub(w, http.StatusServiceUnavailable, `{"error":"UpstreamError"}`)
}

// InternalError records the call and writes a 500 response.
func (m *ErrorResponder) InternalError(w http.ResponseWriter, err error) {
	m.InternalCalled = true
	m.InternalErr = err
	writeStub(w, http.StatusInternalServerError, `{"error":"InternalError"}`)
}

// BadRequest records the call and writes a 400 response.
func (m *ErrorResponder) BadRequest(w http.ResponseWriter, err error) {
	m.BadRequestCalled = true
	m.BadRequestErr = err
	writeStub(w, http.StatusBadRequest, `{"error":"InvalidArguments"}`)
}

// Reset clears all recorded state.
func (m *ErrorResponder) Reset() {
	*m = ErrorResponder{}
}

func writeStub(w http.ResponseWriter, status int, body string) {
	w.Header().Set(apikey.HeaderContentType, apikey.ContentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
