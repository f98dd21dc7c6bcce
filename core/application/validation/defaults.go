package validation

// ApplyDefaults writes the "default" of every property declared in schema
// that is missing from obj. Nested object properties are filled
// recursively, as are object items of arrays. Defaults are deep-copied so
// the schema is never aliased by the value.
func ApplyDefaults(schema map[string]any, obj map[string]any) {
	if schema == nil || obj == nil {
		return
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return
	}

	for key, raw := range props {
		propSchema, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		current, exists := obj[key]
		if !exists {
			if def, ok := propSchema["default"]; ok {
				obj[key] = Clone(def)
				current = obj[key]
			} else {
				continue
			}
		}

		switch v := current.(type) {
		case map[string]any:
			ApplyDefaults(propSchema, v)
		case []any:
			items, ok := propSchema["items"].(map[string]any)
			if !ok {
				continue
			}
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					ApplyDefaults(items, m)
				}
			}
		}
	}
}

// MergeProperties returns supplied with every missing key filled from
// defaults. Neither input is modified.
func MergeProperties(defaults, supplied map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(supplied))
	for k, v := range supplied {
		out[k] = v
	}
	for k, v := range defaults {
		if _, ok := out[k]; !ok {
			out[k] = Clone(v)
		}
	}
	return out
}

// Clone deep-copies JSON-like values (maps, slices and scalars)
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = val
		}
		return out
	default:
		return v
	}
}
