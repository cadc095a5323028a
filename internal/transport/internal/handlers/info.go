// Package handlers provides HTTP handlers for the transport layer.
package handlers

import (
	"net/http"

	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport/transportcore"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

// Info identifies the running server.
type Info struct {
	Name    string
	Version string
}

// infoResponse is the JSON body served at /.
type infoResponse struct {
	Name            string     `json:"name"`
	Version         string     `json:"version"`
	ProtocolVersion string     `json:"protocol_version"`
	Transport       string     `json:"transport"`
	Endpoint        string     `json:"endpoint"`
	Auth            infoAuth   `json:"auth"`
	Tools           int        `json:"tools"`
	Health          []string   `json:"health"`
	RateLimit       *infoQuota `json:"rate_limit,omitempty"`
}

type infoAuth struct {
	Header      string `json:"header"`
	Alternative string `json:"alternative"`
}

type infoQuota struct {
	Policy string `json:"policy"`
}

// infoHandler describes the server for discovery.
type infoHandler struct {
	info   Info
	tools  mcp.ToolRegistry
	policy string
}

// NewInfoHandler creates a handler for the unauthenticated / endpoint.
// It reports the server name and version, how to authenticate, and how
// many tools are registered. policy names the active rate-limit policy and
// may be empty.
func NewInfoHandler(info Info, tools mcp.ToolRegistry, policy string) http.Handler {
	if tools == nil {
		panic("tool registry cannot be nil")
	}
	return &infoHandler{info: info, tools: tools, policy: policy}
}

// ServeHTTP handles GET requests for server info.
func (h *infoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := infoResponse{
		Name:            h.info.Name,
		Version:         h.info.Version,
		ProtocolVersion: mcp.ProtocolVersion,
		Transport:       "streamable-http",
		Endpoint:        "/mcp",
		Auth: infoAuth{
			Header:      apikey.HeaderAPIKey,
			Alternative: apikey.HeaderAuthorization + ": " + apikey.BearerScheme + " <key>",
		},
		Tools:  len(h.tools.ListTools()),
		Health: []string{"/health", "/health/live", "/health/ready"},
	}
	if h.policy != "" {
		resp.RateLimit = &infoQuota{Policy: h.policy}
	}
	writeJSON(w, http.StatusOK, resp)
}

// authTestResponse is the JSON body served at /auth-test.
type authTestResponse struct {
	Authenticated bool     `json:"authenticated"`
	KeyPrefix     string   `json:"key_prefix"`
	KeyID         string   `json:"key_id"`
	Label         string   `json:"label"`
	Tier          string   `json:"tier"`
	Scopes        []string `json:"scopes"`
	Source        string   `json:"source"`
}

// authTestHandler echoes the authenticated caller.
type authTestHandler struct {
	responder transportcore.ErrorResponder
}

// NewAuthTestHandler creates a handler for /auth-test. It must be mounted
// behind authentication middleware.
func NewAuthTestHandler(responder transportcore.ErrorResponder) http.Handler {
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &authTestHandler{responder: responder}
}

// ServeHTTP handles GET requests for the authentication echo.
func (h *authTestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := transportcore.PrincipalFromContext(r.Context())
	if !ok {
		h.responder.Unauthenticated(w, nil)
		return
	}

	writeJSON(w, http.StatusOK, authTestResponse{
		Authenticated: true,
		KeyPrefix:     apikey.Prefix(transportcore.APIKeyFromRequest(r)),
		KeyID:         p.KeyID,
		Label:         p.Label,
		Tier:          p.Tier,
		Scopes:        p.Scopes,
		Source:        p.Source,
	})
}
