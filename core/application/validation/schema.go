package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hyperterse/querygate/core/domain"
)

// SchemaValidator validates values against JSON-Schema documents using
// gojsonschema. Defaults declared in the schema are written into object
// values before validation.
type SchemaValidator struct{}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// Validate checks value against schema. A nil schema accepts everything.
// The returned error is non-nil only when the schema cannot be compiled.
func (v *SchemaValidator) Validate(schema map[string]any, value any) (domain.ValidationResult, error) {
	if schema == nil {
		schema = map[string]any{}
	}

	compiled, err := Compile(schema)
	if err != nil {
		return domain.ValidationResult{}, err
	}

	if obj, ok := value.(map[string]any); ok {
		ApplyDefaults(schema, obj)
	}

	return validate(compiled, value)
}

// Compile compiles a schema document
func Compile(schema map[string]any) (*gojsonschema.Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("invalid json schema: %w", err)
	}
	return compiled, nil
}

func mustCompile(source string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in schema: %v", err))
	}
	return compiled
}

func validate(compiled *gojsonschema.Schema, value any) (domain.ValidationResult, error) {
	result, err := compiled.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("validation failed: %w", err)
	}
	if result.Valid() {
		return domain.Valid(), nil
	}

	errs := make([]domain.ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, domain.ValidationError{
			Field:   desc.Field(),
			Type:    desc.Type(),
			Message: desc.Description(),
		})
	}
	return domain.Invalid(errs...), nil
}

// Messages flattens validation errors into "field: message" lines
func Messages(errs []domain.ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return out
}
