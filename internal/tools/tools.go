// Package tools defines the MCP tools served by the gateway: read-only HR
// queries backed by the store and API key administration.
package tools

import (
	"context"
	"fmt"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	"github.com/jamesprial/hr-mcp-gateway/internal/hr"
	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
)

// tool adapts a definition and a handler func to mcp.Tool.
type tool struct {
	def mcp.ToolDefinition
	run func(ctx context.Context, call *mcp.ToolCall) (any, error)
}

func (t *tool) Execute(ctx context.Context, call *mcp.ToolCall) (any, error) {
	return t.run(ctx, call)
}

func (t *tool) Definition() mcp.ToolDefinition { return t.def }

// All returns every tool. keys may be nil, in which case the key
// administration tools are left out.
func All(dir *hr.Directory, keys auth.KeyManager) []mcp.Tool {
	out := HRTools(dir)
	if keys != nil {
		out = append(out, KeyTools(keys)...)
	}
	return out
}

// Register adds tools to the registry and fails on the first conflict.
func Register(reg mcp.ToolRegistry, tools []mcp.Tool) error {
	for _, t := range tools {
		name := t.Definition().Name
		if err := reg.RegisterTool(name, t); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}

// RegisterResources adds the gateway's resources to the registry.
func RegisterResources(reg mcp.ResourceRegistry, tools mcp.ToolRegistry) error {
	providers := []mcp.ResourceProvider{
		mcp.NewCatalogResource(tools),
		leaveWeightsResource{},
	}
	for _, p := range providers {
		uri := p.Definition().URI
		if err := reg.RegisterResource(uri, p); err != nil {
			return fmt.Errorf("register %s: %w", uri, err)
		}
	}
	return nil
}
