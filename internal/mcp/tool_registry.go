package mcp

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	ierrors "github.com/jamesprial/hr-mcp-gateway/internal/errors"
)

// toolRegistry implements ToolRegistry with thread-safe access.
type toolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewToolRegistry creates a new thread-safe tool registry.
func NewToolRegistry() ToolRegistry {
	return &toolRegistry{
		tools: make(map[string]Tool),
	}
}

// RegisterTool registers a tool with the given name.
// Returns an error if a tool with the same name is already registered
// or if the tool or name is invalid.
func (r *toolRegistry) RegisterTool(name string, tool Tool) error {
	if name == "" {
		return ierrors.New(domainMCP, "RegisterTool", ierrors.ErrBadRequest, fmt.Errorf("tool name cannot be empty"))
	}
	if tool == nil {
		return ierrors.New(domainMCP, "RegisterTool", ierrors.ErrBadRequest, fmt.Errorf("tool cannot be nil"))
	}
	if def := tool.Definition(); def.Name != name {
		return ierrors.New(domainMCP, "RegisterTool", ierrors.ErrBadRequest,
			fmt.Errorf("tool registered as %q declares name %q", name, def.Name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return ierrors.New(domainMCP, "RegisterTool", ierrors.ErrBadRequest, ErrToolAlreadyRegistered).
			WithContext(ContextTool, name)
	}

	r.tools[name] = tool
	return nil
}

// GetTool retrieves a tool by name.
// Returns an error of kind ErrUnknownTool if the tool does not exist.
func (r *toolRegistry) GetTool(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, unknownToolError(name)
	}

	return tool, nil
}

// ListTools returns definitions for all registered tools, sorted by name.
// The returned slice is a snapshot and safe for concurrent access.
func (r *toolRegistry) ListTools() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	definitions := make([]ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		definitions = append(definitions, tool.Definition())
	}
	slices.SortFunc(definitions, func(a, b ToolDefinition) int {
		return strings.Compare(a.Name, b.Name)
	})

	return definitions
}
