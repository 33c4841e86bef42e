package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ParseArgs turns key=value pairs into tool arguments. Values are converted
// to the type the tool's input schema declares for the key.
func ParseArgs(tool mcp.Tool, pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", pair)
		}

		prop, known := tool.InputSchema.Properties[key]
		if !known {
			return nil, fmt.Errorf("unknown argument %q for tool %s (valid: %s)", key, tool.Name, strings.Join(argumentNames(tool), ", "))
		}

		converted, err := convertArg(schemaType(prop), value)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", key, err)
		}
		args[key] = converted
	}

	for _, required := range tool.InputSchema.Required {
		if _, ok := args[required]; !ok {
			return nil, fmt.Errorf("missing required argument %q for tool %s", required, tool.Name)
		}
	}
	return args, nil
}

func argumentNames(tool mcp.Tool) []string {
	names := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func schemaType(prop any) string {
	if m, ok := prop.(map[string]any); ok {
		if t, ok := m["type"].(string); ok {
			return t
		}
	}
	return "string"
}

func convertArg(kind, value string) (any, error) {
	switch kind {
	case "number", "integer":
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", value)
		}
		return n, nil
	case "boolean":
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", value)
		}
		return b, nil
	default:
		return value, nil
	}
}
