// Package kv converts loosely typed config values. TOML decodes integers
// as int64 and arrays as []any, values set in code arrive as int or
// []string, and the config stores accept all of them.
package kv

import (
	"fmt"
	"maps"
	"strings"
)

func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int accepts whole floats; anything else non-integral is 0.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	return 0
}

func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// Strings keeps the string elements of a list and drops the rest.
func Strings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Flatten turns nested tables into dot keys: {"a": {"b": 1}} becomes
// {"a.b": 1}.
func Flatten(tables map[string]any) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, tables, "")
	return flat
}

func flattenInto(dst, tables map[string]any, prefix string) {
	for k, v := range tables {
		if prefix != "" {
			k = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(dst, nested, k)
			continue
		}
		dst[k] = v
	}
}

// Nest is the inverse of Flatten. It fails when one key is both a value and
// the prefix of another ("a" and "a.b").
func Nest(flat map[string]any) (map[string]any, error) {
	root := make(map[string]any)
	for key, value := range flat {
		path := strings.Split(key, ".")
		table := root
		for _, part := range path[:len(path)-1] {
			switch child := table[part].(type) {
			case nil:
				next := make(map[string]any)
				table[part] = next
				table = next
			case map[string]any:
				table = child
			default:
				return nil, fmt.Errorf("config key %q conflicts with value at %q", key, part)
			}
		}
		leaf := path[len(path)-1]
		if _, isTable := table[leaf].(map[string]any); isTable {
			return nil, fmt.Errorf("config key %q conflicts with a table", key)
		}
		table[leaf] = value
	}
	return root, nil
}

// Clone copies a flat map.
func Clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	maps.Copy(out, m)
	return out
}
