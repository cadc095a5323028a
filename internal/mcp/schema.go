package mcp

import (
	"math"
	"slices"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// NewDefinition converts an mcp-go tool into a registry definition.
func NewDefinition(tool mcpgo.Tool, scopes []string, usesStore bool) ToolDefinition {
	schema := map[string]any{
		"type": "object",
	}
	if tool.InputSchema.Properties != nil {
		schema["properties"] = tool.InputSchema.Properties
	} else {
		schema["properties"] = map[string]any{}
	}
	if len(tool.InputSchema.Required) > 0 {
		schema["required"] = tool.InputSchema.Required
	}

	return ToolDefinition{
		Name:           tool.Name,
		Description:    tool.Description,
		InputSchema:    schema,
		RequiredScopes: scopes,
		UsesStore:      usesStore,
	}
}

// ValidateArguments checks args against an input schema: every required
// property is present and every known property has the declared JSON type.
// Properties the schema does not declare are ignored.
func ValidateArguments(schema map[string]any, args map[string]any) error {
	for _, name := range requiredProperties(schema) {
		if v, ok := args[name]; !ok || v == nil {
			return InvalidArgumentError(name, "is required")
		}
	}

	props, _ := schema["properties"].(map[string]any)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		v, ok := args[name]
		if !ok || v == nil {
			continue
		}
		prop, _ := props[name].(map[string]any)
		want, _ := prop["type"].(string)
		if want != "" && !hasJSONType(v, want) {
			return InvalidArgumentError(name, "must be of type "+want)
		}
	}
	return nil
}

func requiredProperties(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func hasJSONType(v any, want string) bool {
	switch want {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		_, ok := toFloat(v)
		return ok
	case "integer":
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f)
	case "array":
		_, ok := v.([]any)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	default:
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
