package main

import (
	"fmt"
	"strings"
)

// parseKeyValues turns repeated key=value flag values into a map.
func parseKeyValues(flag string, pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, kv := range pairs {
		key, value, found := strings.Cut(kv, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --%s %q, expected key=value", flag, kv)
		}
		out[key] = value
	}
	return out, nil
}
