package tools

import (
	"context"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

var adminScopes = []string{apikey.ScopeAdmin}

func keyTool(spec mcpgo.Tool, run func(context.Context, *mcp.ToolCall) (any, error)) mcp.Tool {
	return &tool{def: mcp.NewDefinition(spec, adminScopes, false), run: run}
}

// KeyTools returns the API key administration tools. They never touch the
// store.
func KeyTools(keys auth.KeyManager) []mcp.Tool {
	h := &keyHandlers{keys: keys}
	return []mcp.Tool{
		keyTool(mcpgo.NewTool("generate_api_key",
			mcpgo.WithDescription("Generate a new API key, usable immediately. The key is shown once."),
			mcpgo.WithString("description", mcpgo.Required(), mcpgo.Description("Who or what the key is for")),
			mcpgo.WithString("tier", mcpgo.Description("Rate limit tier: default, elevated or unlimited")),
		), h.generate),
		keyTool(mcpgo.NewTool("list_active_api_keys",
			mcpgo.WithDescription("List the API keys currently accepted, masked"),
		), h.list),
		keyTool(mcpgo.NewTool("revoke_api_key",
			mcpgo.WithDescription("Revoke an API key"),
			mcpgo.WithString("key_to_revoke", mcpgo.Required(), mcpgo.Description("The full key to revoke")),
		), h.revoke),
	}
}

type keyHandlers struct {
	keys auth.KeyManager
}

// GeneratedKey is the generate_api_key result. Key is the only place the
// raw key ever appears.
type GeneratedKey struct {
	Key  string        `json:"api_key"`
	Info *auth.KeyInfo `json:"info"`
	Note string        `json:"note"`
}

func (h *keyHandlers) generate(ctx context.Context, call *mcp.ToolCall) (any, error) {
	tier := stringArg(call.Arguments, "tier")
	switch tier {
	case "", apikey.TierDefault, apikey.TierElevated:
	case apikey.TierUnlimited:
		// Only a caller already exempt from limits may mint an exempt key.
		if call.Principal == nil || call.Principal.Tier != apikey.TierUnlimited {
			return nil, mcp.InvalidArgumentError("tier", "unlimited requires an unlimited caller")
		}
	default:
		return nil, mcp.InvalidArgumentError("tier", "must be default, elevated or unlimited")
	}

	key, info, err := h.keys.Generate(ctx, auth.GenerateRequest{
		Description: stringArg(call.Arguments, "description"),
		Tier:        tier,
	})
	if err != nil {
		return nil, err
	}
	return &GeneratedKey{
		Key:  key,
		Info: info,
		Note: "Store this key now; it is held in memory only and is lost on restart.",
	}, nil
}

// KeyList is the list_active_api_keys result.
type KeyList struct {
	Count int            `json:"count"`
	Keys  []auth.KeyInfo `json:"keys"`
}

func (h *keyHandlers) list(ctx context.Context, call *mcp.ToolCall) (any, error) {
	keys := h.keys.List(ctx)
	return &KeyList{Count: len(keys), Keys: keys}, nil
}

// Revoked is the revoke_api_key result.
type Revoked struct {
	Revoked bool   `json:"revoked"`
	Key     string `json:"key"`
}

func (h *keyHandlers) revoke(ctx context.Context, call *mcp.ToolCall) (any, error) {
	key := stringArg(call.Arguments, "key_to_revoke")
	if err := h.keys.Revoke(ctx, key); err != nil {
		return nil, err
	}
	return &Revoked{Revoked: true, Key: apikey.Mask(key)}, nil
}
