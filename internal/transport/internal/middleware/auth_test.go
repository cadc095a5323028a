package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/internal/mocks"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
)

func staticStore(keys map[string]*auth.Principal) *mocks.CredentialStore {
	return &mocks.CredentialStore{
		AuthenticateFunc: func(_ context.Context, presented string) (*auth.Principal, error) {
			if presented == "" {
				return nil, auth.ErrMissingKey
			}
			if p, ok := keys[presented]; ok {
				return p, nil
			}
			return nil, auth.ErrInvalidKey
		},
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	principal := &auth.Principal{KeyID: "k1", Label: "ops", Tier: "default", Scopes: []string{"hr:read"}, Source: "static"}
	store := staticStore(map[string]*auth.Principal{"good-key": principal})

	tests := []struct {
		name        string
		headers     map[string]string
		wantStatus  int
		wantCalled  bool
		wantErrorIs error
	}{
		{
			name:       "X-API-Key header",
			headers:    map[string]string{"X-API-Key": "good-key"},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "bearer header",
			headers:    map[string]string{"Authorization": "Bearer good-key"},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "X-API-Key wins over bearer",
			headers:    map[string]string{"X-API-Key": "good-key", "Authorization": "Bearer wrong"},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:        "missing key",
			headers:     nil,
			wantStatus:  http.StatusUnauthorized,
			wantErrorIs: auth.ErrMissingKey,
		},
		{
			name:        "invalid key",
			headers:     map[string]string{"X-API-Key": "nope"},
			wantStatus:  http.StatusUnauthorized,
			wantErrorIs: auth.ErrInvalidKey,
		},
		{
			name:        "non-bearer authorization",
			headers:     map[string]string{"Authorization": "Basic dXNlcjpwYXNz"},
			wantStatus:  http.StatusUnauthorized,
			wantErrorIs: auth.ErrMissingKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			responder := &mocks.ErrorResponder{}
			mw := NewAuthMiddleware(store, responder, slog.New(slog.DiscardHandler))

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			mw.Authenticate()(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %v, want %v", w.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Errorf("next called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantErrorIs != nil {
				if !responder.UnauthenticatedCalled {
					t.Fatal("Unauthenticated was not called")
				}
				if !errors.Is(responder.UnauthenticatedErr, tt.wantErrorIs) {
					t.Errorf("Unauthenticated err = %v, want %v", responder.UnauthenticatedErr, tt.wantErrorIs)
				}
			}
		})
	}
}

func TestAuthenticate_PrincipalPassedToHandler(t *testing.T) {
	t.Parallel()

	want := &auth.Principal{KeyID: "k-elevated", Tier: "elevated", Scopes: []string{"hr:read"}}
	store := staticStore(map[string]*auth.Principal{"elevated-key": want})
	mw := NewAuthMiddleware(store, &mocks.ErrorResponder{}, nil)

	var got *auth.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := transportcore.PrincipalFromContext(r.Context())
		if !ok {
			t.Error("principal missing from context")
		}
		got = p
	})

	req := httptest.NewRequest(http.MethodGet, "/auth-test", nil)
	req.Header.Set("X-API-Key", "elevated-key")
	mw.Authenticate()(next).ServeHTTP(httptest.NewRecorder(), req)

	if got != want {
		t.Errorf("principal = %+v, want %+v", got, want)
	}
}

func TestAuthenticate_LogsKeyPrefixOnly(t *testing.T) {
	t.Parallel()

	sink, logger := newLogSink()
	mw := NewAuthMiddleware(staticStore(nil), &mocks.ErrorResponder{}, logger)

	const presented = "ttmcp-0123456789abcdef0123456789abcdef"

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("X-API-Key", presented)
	mw.Authenticate()(http.NotFoundHandler()).ServeHTTP(httptest.NewRecorder(), req)

	entry := sink.only(t)
	if entry["msg"] != "authentication failed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	prefix, _ := entry["key_prefix"].(string)
	if prefix == "" || prefix == presented {
		t.Errorf("key_prefix = %q, want a truncated prefix", prefix)
	}
	for k, v := range entry {
		if s, ok := v.(string); ok && s == presented {
			t.Errorf("log attribute %q contains the full key", k)
		}
	}
}

func TestNewAuthMiddleware_PanicsOnNil(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		store     auth.CredentialStore
		responder transportcore.ErrorResponder
	}{
		{"nil store", nil, &mocks.ErrorResponder{}},
		{"nil responder", &mocks.CredentialStore{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			NewAuthMiddleware(tt.store, tt.responder, nil)
		})
	}
}

func TestMiddlewareChain_AuthThenRateLimit(t *testing.T) {
	t.Parallel()

	store := staticStore(map[string]*auth.Principal{"good": {KeyID: "k1", Tier: "default"}})
	limiter := &mocks.Limiter{}
	responder := &mocks.ErrorResponder{}

	authMW := NewAuthMiddleware(store, responder, nil).Authenticate()
	rateMW := NewRateLimitMiddleware(limiter, responder, nil)

	handler := authMW(rateMW(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	// Rejected keys never reach the limiter.
	bad := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	bad.Header.Set("X-API-Key", "bad")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, bad)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad key status = %v, want 401", w.Code)
	}
	if len(limiter.Calls()) != 0 {
		t.Errorf("limiter called for rejected key: %v", limiter.Calls())
	}

	good := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	good.Header.Set("X-API-Key", "good")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, good)
	if w.Code != http.StatusOK {
		t.Errorf("good key status = %v, want 200", w.Code)
	}
	if calls := limiter.Calls(); len(calls) != 1 || calls[0] != "k1" {
		t.Errorf("limiter calls = %v, want [k1]", calls)
	}
}
