package connectors

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperterse/querygate/core/domain"
)

var (
	// Template pattern: {{ properties.fieldName }} or {{ caller.subject }}
	templatePattern = regexp.MustCompile(`\{\{\s*(properties|caller)\.(\w+)\s*\}\}`)
)

// CallerAttributes lists the names usable after "caller." in a placeholder
var CallerAttributes = []string{"subject", "access"}

// PlaceholderStyle is the bind parameter syntax of a SQL driver
type PlaceholderStyle int

const (
	// PlaceholderDollar numbers parameters ($1, $2, ...) as PostgreSQL does
	PlaceholderDollar PlaceholderStyle = iota
	// PlaceholderQuestion uses positional ? markers as MySQL and SQLite do
	PlaceholderQuestion
)

// BindSQL compiles template placeholders in expression into driver bind
// parameters. Values never become part of the SQL text. With
// PlaceholderDollar a repeated reference reuses its parameter index.
func BindSQL(expression string, properties map[string]any, caller *domain.Caller, style PlaceholderStyle) (string, []any, error) {
	var (
		args    []any
		indexes = make(map[string]int)
		bindErr error
	)

	statement := templatePattern.ReplaceAllStringFunc(expression, func(placeholder string) string {
		if bindErr != nil {
			return placeholder
		}
		match := templatePattern.FindStringSubmatch(placeholder)
		key := match[1] + "." + match[2]

		if style == PlaceholderDollar {
			if idx, ok := indexes[key]; ok {
				return "$" + strconv.Itoa(idx)
			}
		}

		value, err := resolve(match[1], match[2], properties, caller)
		if err != nil {
			bindErr = err
			return placeholder
		}
		args = append(args, sqlValue(value))

		if style == PlaceholderDollar {
			indexes[key] = len(args)
			return "$" + strconv.Itoa(len(args))
		}
		return "?"
	})
	if bindErr != nil {
		return "", nil, bindErr
	}

	return statement, args, nil
}

// SubstituteJSON replaces each placeholder with the JSON encoding of its
// value. Placeholders must stand for whole JSON values.
func SubstituteJSON(expression string, properties map[string]any, caller *domain.Caller) (string, error) {
	return substitute(expression, properties, caller, func(value any) (string, error) {
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	})
}

// SubstituteText replaces each placeholder with the plain text of its value
func SubstituteText(expression string, properties map[string]any, caller *domain.Caller) (string, error) {
	return substitute(expression, properties, caller, func(value any) (string, error) {
		return textValue(value), nil
	})
}

// ExtractReferences returns the distinct "namespace.name" references of
// expression in order of first appearance
func ExtractReferences(expression string) []string {
	matches := templatePattern.FindAllStringSubmatch(expression, -1)
	seen := make(map[string]bool)
	var result []string

	for _, match := range matches {
		key := match[1] + "." + match[2]
		if !seen[key] {
			seen[key] = true
			result = append(result, key)
		}
	}

	return result
}

func substitute(expression string, properties map[string]any, caller *domain.Caller, format func(any) (string, error)) (string, error) {
	var subErr error
	result := templatePattern.ReplaceAllStringFunc(expression, func(placeholder string) string {
		if subErr != nil {
			return placeholder
		}
		match := templatePattern.FindStringSubmatch(placeholder)
		value, err := resolve(match[1], match[2], properties, caller)
		if err != nil {
			subErr = err
			return placeholder
		}
		formatted, err := format(value)
		if err != nil {
			subErr = fmt.Errorf("format %s.%s: %w", match[1], match[2], err)
			return placeholder
		}
		return formatted
	})
	if subErr != nil {
		return "", subErr
	}
	return result, nil
}

func resolve(namespace, name string, properties map[string]any, caller *domain.Caller) (any, error) {
	switch namespace {
	case "properties":
		value, ok := properties[name]
		if !ok {
			return nil, fmt.Errorf("property '%s' not found for substitution", name)
		}
		return value, nil
	case "caller":
		if caller == nil {
			return nil, fmt.Errorf("caller.%s referenced without an authenticated caller", name)
		}
		switch name {
		case "subject":
			return caller.Subject, nil
		case "access":
			return caller.Access, nil
		}
		return nil, fmt.Errorf("unknown caller attribute '%s'", name)
	}
	return nil, fmt.Errorf("unknown placeholder namespace '%s'", namespace)
}

// sqlValue adapts decoded JSON values to driver arguments. Whole numbers
// become int64; objects and arrays are passed as JSON text.
func sqlValue(value any) any {
	switch v := value.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any, []any, []string:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	default:
		return v
	}
}

func textValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, ",")
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	default:
		return fmt.Sprint(v)
	}
}
