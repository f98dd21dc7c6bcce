package parser

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hyperterse/querygate/core/application/validation"
	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/infrastructure/connectors"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
)

var (
	// log is the logger instance for the validator package
	log = logging.New("parser")

	structValidator = validator.New(validator.WithRequiredStructEnabled())
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors struct {
	Errors []string
}

// Error implements the error interface
// Returns a simple message since detailed errors are already logged
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed with %d error(s)", len(ve.Errors))
}

// ValidateConfig checks the service settings. Query definitions are
// checked separately by ValidateDefinitions.
func ValidateConfig(cfg *domain.Config) error {
	if cfg == nil {
		return &ValidationErrors{Errors: []string{"config is required"}}
	}

	var errs []string
	if err := structValidator.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, describeFieldError(fe))
		}
	}

	if len(errs) > 0 {
		log.PrintValidationErrors(errs)
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s '%v' is invalid. Must be one of: %s", field, fe.Value(), strings.Join(domain.ValidConnectors(), ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "lowercase":
		return fmt.Sprintf("%s '%v' must be lowercase", field, fe.Value())
	case "numeric":
		return fmt.Sprintf("%s '%v' must be a port number", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed '%s' validation", field, fe.Tag())
	}
}

// ValidateDefinitions checks every registry entry: its shape, that its
// schema compiles, that its name is unique and that every placeholder in
// its expression can be resolved. Definitions with an empty
// access list are valid but reported as warnings since nobody can call them.
func ValidateDefinitions(docs []domain.Document) (warnings []string, err error) {
	var errs []string
	seen := make(map[string]bool, len(docs))

	for i, doc := range docs {
		prefix := fmt.Sprintf("Query [%d]", i)
		if name, ok := doc["name"].(string); ok && name != "" {
			prefix = fmt.Sprintf("Query '%s'", name)
		}

		def, result, verr := validation.ValidateDefinition(doc, true)
		if verr != nil {
			errs = append(errs, fmt.Sprintf("%s - %v", prefix, verr))
			continue
		}
		if !result.Valid {
			for _, msg := range validation.Messages(result.Errors) {
				errs = append(errs, fmt.Sprintf("%s - %s", prefix, msg))
			}
			continue
		}

		if seen[def.Name] {
			errs = append(errs, fmt.Sprintf("%s - already defined. Query names must be unique", prefix))
		}
		seen[def.Name] = true

		if _, cerr := validation.Compile(def.Schema); cerr != nil {
			errs = append(errs, fmt.Sprintf("%s - schema does not compile: %v", prefix, cerr))
		}

		for _, msg := range checkReferences(def) {
			errs = append(errs, fmt.Sprintf("%s - %s", prefix, msg))
		}

		if len(def.Access) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s - access list is empty; every caller will be denied", prefix))
		}
	}

	if len(errs) > 0 {
		return warnings, &ValidationErrors{Errors: errs}
	}
	return warnings, nil
}

// checkReferences reports placeholders that can never be bound. A property
// reference needs a default in properties or a declaration in
// schema.properties.
func checkReferences(def domain.QueryDefinition) []string {
	declared, _ := def.Schema["properties"].(map[string]any)

	var errs []string
	for _, ref := range connectors.ExtractReferences(def.Expression) {
		namespace, name, _ := strings.Cut(ref, ".")
		switch namespace {
		case "properties":
			if _, ok := def.Properties[name]; ok {
				continue
			}
			if _, ok := declared[name]; ok {
				continue
			}
			errs = append(errs, fmt.Sprintf("expression references '{{ %s }}' but neither properties nor schema.properties declares it", ref))
		case "caller":
			if !slices.Contains(connectors.CallerAttributes, name) {
				errs = append(errs, fmt.Sprintf("expression references unknown caller attribute '%s'. Must be one of: %s",
					name, strings.Join(connectors.CallerAttributes, ", ")))
			}
		}
	}
	return errs
}
