package interfaces

import "github.com/hyperterse/querygate/core/domain"

// SchemaValidator checks a value against a JSON-Schema document. Defaults
// declared in the schema are written into value when it is an object.
// A non-nil error means the schema itself could not be used.
type SchemaValidator interface {
	Validate(schema map[string]any, value any) (domain.ValidationResult, error)
}
