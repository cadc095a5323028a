package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
)

// Arguments have been type-checked against the schema before a handler
// runs, so these helpers only supply defaults and range checks.

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return strings.TrimSpace(s)
}

func requiredString(args map[string]any, name string) (string, error) {
	s := stringArg(args, name)
	if s == "" {
		return "", mcp.InvalidArgumentError(name, "must not be empty")
	}
	return s, nil
}

func boolArg(args map[string]any, name string, def bool) bool {
	b, ok := args[name].(bool)
	if !ok {
		return def
	}
	return b
}

func numberArg(args map[string]any, name string) (float64, bool) {
	switch n := args[name].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// intArg reads a whole number in [lo, hi], or def when absent.
func intArg(args map[string]any, name string, def, lo, hi int) (int, error) {
	f, ok := numberArg(args, name)
	if !ok {
		return def, nil
	}
	if f != math.Trunc(f) || f < float64(lo) || f > float64(hi) {
		return 0, mcp.InvalidArgumentError(name, fmt.Sprintf("must be a whole number between %d and %d", lo, hi))
	}
	return int(f), nil
}
