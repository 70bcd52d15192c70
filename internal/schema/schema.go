// Package schema implements the small JSON Schema subset used by task
// output contracts: type, properties, required, items, enum and minimum.
// Agent results are validated against their declared schema at the
// dispatch boundary instead of being trusted blindly.
package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Schema is a JSON Schema fragment expressed as a plain map, the same
// shape it has after decoding from a task spec.
type Schema map[string]any

// ViolationError reports a value that does not conform to its schema.
type ViolationError struct {
	Path   string
	Reason string
}

func (e *ViolationError) Error() string {
	path := e.Path
	if path == "" {
		path = "$"
	}
	return fmt.Sprintf("schema violation at %s: %s", path, e.Reason)
}

// Validate checks v against the schema and returns a *ViolationError
// describing the first mismatch found, or nil.
func Validate(s Schema, v any) error {
	return validate(s, v, "")
}

func validate(s Schema, v any, path string) error {
	if s == nil {
		return nil
	}

	if enum, ok := s["enum"].([]any); ok {
		found := false
		for _, allowed := range enum {
			if v == allowed {
				found = true
				break
			}
		}
		if !found {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("value %v not in enum", v)}
		}
	}

	typ, _ := s["type"].(string)
	switch typ {
	case "":
		return nil
	case "object":
		obj, ok := v.(map[string]any)
		if !ok {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected object, got %T", v)}
		}
		for _, req := range toStrings(s["required"]) {
			if _, present := obj[req]; !present {
				return &ViolationError{Path: join(path, req), Reason: "required property missing"}
			}
		}
		props, _ := s["properties"].(map[string]any)
		// Deterministic walk order so the first reported violation is stable.
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sub, ok := asSchema(props[k])
			if !ok {
				continue
			}
			val, present := obj[k]
			if !present {
				continue
			}
			if err := validate(sub, val, join(path, k)); err != nil {
				return err
			}
		}
	case "array":
		arr, ok := v.([]any)
		if !ok {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected array, got %T", v)}
		}
		if min, ok := asFloat(s["minItems"]); ok && float64(len(arr)) < min {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected at least %d items, got %d", int(min), len(arr))}
		}
		items, ok := asSchema(s["items"])
		if !ok {
			return nil
		}
		for i, el := range arr {
			if err := validate(items, el, fmt.Sprintf("%s[%d]", orRoot(path), i)); err != nil {
				return err
			}
		}
	case "string":
		if _, ok := v.(string); !ok {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected string, got %T", v)}
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected boolean, got %T", v)}
		}
	case "number", "integer":
		n, ok := asFloat(v)
		if !ok {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected %s, got %T", typ, v)}
		}
		if typ == "integer" && n != math.Trunc(n) {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected integer, got %v", n)}
		}
		if min, ok := asFloat(s["minimum"]); ok && n < min {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("value %v below minimum %v", n, min)}
		}
	default:
		return &ViolationError{Path: path, Reason: fmt.Sprintf("unsupported schema type %q", typ)}
	}
	return nil
}

// Synthesize builds the minimal value conforming to the schema: required
// object properties, empty arrays, enum first members and zero scalars.
// The stub dispatcher uses it to produce dry-run results that pass
// boundary validation.
func Synthesize(s Schema) any {
	if s == nil {
		return map[string]any{}
	}
	if def, ok := s["default"]; ok {
		return def
	}
	if enum, ok := s["enum"].([]any); ok && len(enum) > 0 {
		return enum[0]
	}

	typ, _ := s["type"].(string)
	switch typ {
	case "object":
		obj := map[string]any{}
		props, _ := s["properties"].(map[string]any)
		for _, req := range toStrings(s["required"]) {
			if sub, ok := asSchema(props[req]); ok {
				obj[req] = Synthesize(sub)
			} else {
				obj[req] = nil
			}
		}
		return obj
	case "array":
		return []any{}
	case "string":
		return ""
	case "boolean":
		return false
	case "integer", "number":
		if min, ok := asFloat(s["minimum"]); ok {
			return min
		}
		return float64(0)
	default:
		return map[string]any{}
	}
}

// asSchema accepts both Schema and the map[string]any shape that nested
// fragments have after JSON decoding.
func asSchema(v any) (Schema, bool) {
	switch s := v.(type) {
	case Schema:
		return s, true
	case map[string]any:
		return Schema(s), true
	}
	return nil, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toStrings(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, el := range vals {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func orRoot(path string) string {
	if strings.TrimSpace(path) == "" {
		return "$"
	}
	return path
}
