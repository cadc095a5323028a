package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// writeJSON sends v as a JSON body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(apikey.HeaderContentType, apikey.ContentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Can't send error response here since headers are already written
		slog.Error("failed to encode response", "error", err)
	}
}
