package validation

import (
	"github.com/hyperterse/querygate/core/domain"
)

const requestSchemaSource = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"properties": {"type": "object", "default": {}}
	},
	"additionalProperties": false,
	"required": ["name"]
}`

const definitionSchemaSource = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"expression": {"type": "string"},
		"properties": {"type": "object", "default": {}},
		"schema": {"type": "object", "default": {}},
		"access": {"type": "array", "items": {"type": "string"}, "default": []}
	},
	"additionalProperties": false,
	"required": ["name", "expression"]
}`

var (
	requestSchema    = mustCompile(requestSchemaSource)
	definitionSchema = mustCompile(definitionSchemaSource)

	requestDefaults = map[string]any{
		"properties": map[string]any{
			"properties": map[string]any{"default": map[string]any{}},
		},
	}
	definitionDefaults = map[string]any{
		"properties": map[string]any{
			"properties": map[string]any{"default": map[string]any{}},
			"schema":     map[string]any{"default": map[string]any{}},
			"access":     map[string]any{"default": []any{}},
		},
	}
)

// ValidateRequest checks one raw batch item against the request shape. On
// success the item is decoded with "properties" defaulted to an empty
// object.
func ValidateRequest(raw any) (domain.QueryRequest, domain.ValidationResult, error) {
	if obj, ok := raw.(map[string]any); ok {
		ApplyDefaults(requestDefaults, obj)
	}

	result, err := validate(requestSchema, raw)
	if err != nil || !result.Valid {
		return domain.QueryRequest{}, result, err
	}

	obj := raw.(map[string]any)
	req := domain.QueryRequest{
		Name:       obj["name"].(string),
		Properties: obj["properties"].(map[string]any),
	}
	return req, result, nil
}

// ValidateDefinition checks a registry document against the definition
// shape. A definition that was not found is an undefined instance and is
// accepted without inspection; the caller reports it as not found. The
// document itself is never modified.
func ValidateDefinition(doc domain.Document, found bool) (domain.QueryDefinition, domain.ValidationResult, error) {
	if !found {
		return domain.QueryDefinition{}, domain.Valid(), nil
	}

	obj := make(map[string]any, len(doc)+3)
	for k, v := range doc {
		obj[k] = v
	}
	ApplyDefaults(definitionDefaults, obj)

	result, err := validate(definitionSchema, obj)
	if err != nil || !result.Valid {
		return domain.QueryDefinition{}, result, err
	}

	def := domain.QueryDefinition{
		Name:       obj["name"].(string),
		Expression: obj["expression"].(string),
		Properties: obj["properties"].(map[string]any),
		Schema:     obj["schema"].(map[string]any),
		Access:     toStrings(obj["access"]),
	}
	return def, result, nil
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
