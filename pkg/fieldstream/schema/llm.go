package schema

import (
	"maps"
	"slices"
	"strings"
)

// TransformForOpenAI adapts a JSON schema for OpenAI's structured output
// requirements. Strict mode requires:
//   - type "object" at root level
//   - no $ref references (must be inlined)
//   - all properties must be in required array
//   - additionalProperties must be false
func TransformForOpenAI(schema map[string]any) map[string]any {
	defs, _ := schema["$defs"].(map[string]any)
	resolved, ok := resolveRefs(schema, defs).(map[string]any)
	if !ok {
		resolved = schema
	}

	delete(resolved, "$defs")
	delete(resolved, "$schema")
	delete(resolved, "$id")

	ensureAllPropertiesRequired(resolved)

	if _, hasType := resolved["type"]; !hasType {
		resolved["type"] = "object"
	}
	return resolved
}

// resolveRefs inlines every "#/$defs/Name" reference.
func resolveRefs(node any, defs map[string]any) any {
	switch v := node.(type) {
	case map[string]any:
		if ref, ok := v["$ref"].(string); ok {
			name, found := strings.CutPrefix(ref, "#/$defs/")
			def, isMap := defs[name].(map[string]any)
			if !found || !isMap {
				return v
			}
			resolved, _ := resolveRefs(maps.Clone(def), defs).(map[string]any)
			// Keep description and friends from the referencing node.
			for key, val := range v {
				if key != "$ref" {
					resolved[key] = val
				}
			}
			return resolved
		}

		result := make(map[string]any, len(v))
		for key, val := range v {
			if key == "$defs" {
				continue
			}
			result[key] = resolveRefs(val, defs)
		}
		return result

	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = resolveRefs(item, defs)
		}
		return result

	default:
		return v
	}
}

// ensureAllPropertiesRequired marks every object property required and
// closes every object to additional properties.
func ensureAllPropertiesRequired(node any) {
	switch v := node.(type) {
	case map[string]any:
		if props, ok := v["properties"].(map[string]any); ok {
			v["required"] = slices.Sorted(maps.Keys(props))
			v["additionalProperties"] = false
			for _, prop := range props {
				ensureAllPropertiesRequired(prop)
			}
		}
		if items, ok := v["items"]; ok {
			ensureAllPropertiesRequired(items)
		}
		for _, key := range []string{"anyOf", "oneOf", "allOf"} {
			if alts, ok := v[key].([]any); ok {
				ensureAllPropertiesRequired(alts)
			}
		}

	case []any:
		for _, item := range v {
			ensureAllPropertiesRequired(item)
		}
	}
}
