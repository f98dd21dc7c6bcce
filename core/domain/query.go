package domain

import "encoding/json"

// Document is an untyped JSON-like object as decoded from a request body or
// a registry file.
type Document = map[string]any

// Row is a single result row keyed by column name
type Row = map[string]any

// QueryRequest is one item of a caller-supplied batch after its shape has
// been validated.
type QueryRequest struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

// QueryDefinition is a trusted, registered query template
type QueryDefinition struct {
	Name       string         `json:"name"`
	Expression string         `json:"expression"`
	Properties map[string]any `json:"properties"`
	Schema     map[string]any `json:"schema"`
	Access     []string       `json:"access"`
}

// Caller is the externally authenticated identity issuing a batch
type Caller struct {
	Subject string   `json:"subject"`
	Access  []string `json:"access"`
}

// ErrorBody is the wire form of a failure
type ErrorBody struct {
	Errno   int    `json:"errno"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// ResultItem is the outcome of one batch item: either Results or Error is set
type ResultItem struct {
	// Name echoes the caller-supplied name verbatim, which may be missing
	// or not a string when the item failed shape validation.
	Name    any
	Results []Row
	Error   *ErrorBody
}

// Success reports whether the item executed
func (r ResultItem) Success() bool {
	return r.Error == nil
}

// MarshalJSON always emits results on success, even when empty
func (r ResultItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 2)
	if r.Name != nil {
		out["name"] = r.Name
	}
	if r.Error != nil {
		out["error"] = r.Error
	} else {
		results := r.Results
		if results == nil {
			results = []Row{}
		}
		out["results"] = results
	}
	return json.Marshal(out)
}

// BatchResponse is either the ordered per-item results or a single
// envelope-level error.
type BatchResponse struct {
	Queries []ResultItem
	Error   *ErrorBody
}

// MarshalJSON emits {"queries": [...]} or {"error": {...}}
func (b *BatchResponse) MarshalJSON() ([]byte, error) {
	if b.Error != nil {
		return json.Marshal(map[string]any{"error": b.Error})
	}
	queries := b.Queries
	if queries == nil {
		queries = []ResultItem{}
	}
	return json.Marshal(map[string]any{"queries": queries})
}

// ValidationError is one structured complaint from a schema validator
type ValidationError struct {
	Field   string `json:"field"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ValidationResult is the tagged outcome of a schema validation
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Valid is the successful ValidationResult
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid builds a failed ValidationResult
func Invalid(errs ...ValidationError) ValidationResult {
	return ValidationResult{Valid: false, Errors: errs}
}
