package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jamesprial/hr-mcp-gateway/internal/health"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/internal/mocks"
)

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		report     health.Report
		wantStatus int
		wantBody   string
	}{
		{
			name: "all checks pass",
			report: health.Report{
				Status: health.StatusOK,
				Checks: map[string]health.CheckResult{"database": {Status: health.StatusOK}},
			},
			wantStatus: http.StatusOK,
			wantBody:   health.StatusOK,
		},
		{
			name: "a check fails",
			report: health.Report{
				Status: health.StatusDegraded,
				Checks: map[string]health.CheckResult{
					"database": {Status: health.StatusOK},
					"redis":    {Status: health.StatusFailing, Error: "UpstreamError"},
				},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   health.StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewHealthHandler(&mocks.HealthReporter{Report: tt.report})

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %v, want %v", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var body health.Report
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if body.Status != tt.wantBody {
				t.Errorf("status = %q, want %q", body.Status, tt.wantBody)
			}
			if len(body.Checks) != len(tt.report.Checks) {
				t.Errorf("checks = %v, want %v", body.Checks, tt.report.Checks)
			}
		})
	}
}

func TestLivenessHandler_IgnoresDependencies(t *testing.T) {
	t.Parallel()

	reporter := &mocks.HealthReporter{Report: health.Report{Status: health.StatusDegraded}}
	handler := NewLivenessHandler(reporter)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %v, want 200", w.Code)
	}

	var body health.Report
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Status != health.StatusOK {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestHealthHandler_NilReporterPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewHealthHandler(nil)
}
