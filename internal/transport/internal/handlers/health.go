package handlers

import (
	"net/http"

	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
)

// healthHandler serves the aggregate health report.
type healthHandler struct {
	reporter transportcore.HealthReporter
	live     bool
}

// NewHealthHandler creates a handler for /health and /health/ready.
// It runs every dependency check and answers 200 when all pass, 503 otherwise.
func NewHealthHandler(reporter transportcore.HealthReporter) http.Handler {
	if reporter == nil {
		panic("reporter cannot be nil")
	}
	return &healthHandler{reporter: reporter}
}

// NewLivenessHandler creates a handler for /health/live.
// It answers 200 while the process serves, without touching dependencies.
func NewLivenessHandler(reporter transportcore.HealthReporter) http.Handler {
	if reporter == nil {
		panic("reporter cannot be nil")
	}
	return &healthHandler{reporter: reporter, live: true}
}

// ServeHTTP handles GET requests for health checks.
func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.live {
		writeJSON(w, http.StatusOK, h.reporter.Live())
		return
	}

	report := h.reporter.Check(r.Context())
	status := http.StatusOK
	if !report.OK() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
