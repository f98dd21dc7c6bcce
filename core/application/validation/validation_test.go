package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/querygate/core/application/validation"
	"github.com/hyperterse/querygate/core/domain"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		valid     bool
		errorType string
	}{
		{
			name:  "name only",
			raw:   map[string]any{"name": "getUsers"},
			valid: true,
		},
		{
			name:  "name and properties",
			raw:   map[string]any{"name": "getUsers", "properties": map[string]any{"id": 1.0}},
			valid: true,
		},
		{
			name:      "missing name",
			raw:       map[string]any{"properties": map[string]any{}},
			errorType: "required",
		},
		{
			name:      "name not a string",
			raw:       map[string]any{"name": 42.0},
			errorType: "invalid_type",
		},
		{
			name:      "unexpected property",
			raw:       map[string]any{"name": "getUsers", "limit": 10.0},
			errorType: "additional_property_not_allowed",
		},
		{
			name:      "properties not an object",
			raw:       map[string]any{"name": "getUsers", "properties": "x"},
			errorType: "invalid_type",
		},
		{
			name:      "item not an object",
			raw:       "getUsers",
			errorType: "invalid_type",
		},
		{
			name:      "null item",
			raw:       nil,
			errorType: "invalid_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, result, err := validation.ValidateRequest(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.Equal(t, "getUsers", req.Name)
				assert.NotNil(t, req.Properties)
				return
			}
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.errorType, result.Errors[0].Type)
		})
	}
}

func TestValidateRequest_DefaultsProperties(t *testing.T) {
	raw := map[string]any{"name": "getUsers"}

	req, result, err := validation.ValidateRequest(raw)
	require.NoError(t, err)
	require.True(t, result.Valid)
	assert.Equal(t, map[string]any{}, req.Properties)
	assert.Contains(t, raw, "properties")
}

func TestValidateDefinition(t *testing.T) {
	t.Run("absent definition passes", func(t *testing.T) {
		_, result, err := validation.ValidateDefinition(nil, false)
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("defaults are filled on the decoded copy", func(t *testing.T) {
		doc := domain.Document{"name": "getUsers", "expression": "SELECT 1"}

		def, result, err := validation.ValidateDefinition(doc, true)
		require.NoError(t, err)
		require.True(t, result.Valid)
		assert.Equal(t, "getUsers", def.Name)
		assert.Equal(t, "SELECT 1", def.Expression)
		assert.Equal(t, map[string]any{}, def.Properties)
		assert.Equal(t, map[string]any{}, def.Schema)
		assert.Empty(t, def.Access)
		assert.Len(t, doc, 2, "registry document must not be modified")
	})

	t.Run("access decoded", func(t *testing.T) {
		doc := domain.Document{
			"name":       "getUsers",
			"expression": "SELECT 1",
			"access":     []any{"admin", "support"},
		}

		def, result, err := validation.ValidateDefinition(doc, true)
		require.NoError(t, err)
		require.True(t, result.Valid)
		assert.Equal(t, []string{"admin", "support"}, def.Access)
	})

	invalid := []struct {
		name string
		doc  domain.Document
	}{
		{name: "missing expression", doc: domain.Document{"name": "getUsers"}},
		{name: "empty document", doc: domain.Document{}},
		{name: "unknown key", doc: domain.Document{"name": "a", "expression": "b", "sql": "c"}},
		{name: "access not an array", doc: domain.Document{"name": "a", "expression": "b", "access": "admin"}},
		{name: "access with non-string", doc: domain.Document{"name": "a", "expression": "b", "access": []any{1}}},
		{name: "schema not an object", doc: domain.Document{"name": "a", "expression": "b", "schema": []any{}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, result, err := validation.ValidateDefinition(tt.doc, true)
			require.NoError(t, err)
			assert.False(t, result.Valid)
			assert.NotEmpty(t, result.Errors)
		})
	}
}

func TestHasAccess(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		granted  []string
		expected bool
	}{
		{name: "overlap", required: []string{"admin", "support"}, granted: []string{"support"}, expected: true},
		{name: "no overlap", required: []string{"admin"}, granted: []string{"support"}, expected: false},
		{name: "empty required denies", required: nil, granted: []string{"admin"}, expected: false},
		{name: "empty granted denies", required: []string{"admin"}, granted: nil, expected: false},
		{name: "duplicates", required: []string{"a", "a"}, granted: []string{"a", "a"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, validation.HasAccess(tt.required, tt.granted))
		})
	}
}
