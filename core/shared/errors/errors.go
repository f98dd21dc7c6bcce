package errors

import (
	"errors"
	"fmt"
)

// Errno is the numeric error identifier returned to callers. The values are
// a stable wire contract.
type Errno int

const (
	ErrnoRequestValidation    Errno = 1000
	ErrnoDefinitionValidation Errno = 1001
	ErrnoQueryNotFound        Errno = 1002
	ErrnoQueryNoAccess        Errno = 1003
	ErrnoPropertiesValidation Errno = 1004
	ErrnoBadQuery             Errno = 1005
	ErrnoBatchFailed          Errno = 1006
)

// ErrorCode is the symbolic error identifier paired with an Errno
type ErrorCode string

const (
	ErrCodeRequestValidation    ErrorCode = "ERROR_REQUEST_VALIDATION"
	ErrCodeDefinitionValidation ErrorCode = "ERROR_QUERY_DEFINITION_VALIDATION"
	ErrCodeQueryNotFound        ErrorCode = "ERROR_QUERY_NOT_FOUND"
	ErrCodeQueryNoAccess        ErrorCode = "ERROR_QUERY_NO_ACCESS"
	ErrCodePropertiesValidation ErrorCode = "ERROR_QUERY_PROPERTIES_VALIDATION"
	ErrCodeBadQuery             ErrorCode = "ERROR_BAD_QUERY"

	// Transport-level, never produced by the batch pipeline
	ErrCodeUnauthorized ErrorCode = "ERROR_UNAUTHORIZED"
)

// Class groups error numbers by who has to act on them
type Class string

const (
	ClassClient        Class = "client"
	ClassConfiguration Class = "configuration"
	ClassNotFound      Class = "not_found"
	ClassAuthorization Class = "authorization"
	ClassExecution     Class = "execution"
	ClassEnvelope      Class = "envelope"
)

var codes = map[Errno]ErrorCode{
	ErrnoRequestValidation:    ErrCodeRequestValidation,
	ErrnoDefinitionValidation: ErrCodeDefinitionValidation,
	ErrnoQueryNotFound:        ErrCodeQueryNotFound,
	ErrnoQueryNoAccess:        ErrCodeQueryNoAccess,
	ErrnoPropertiesValidation: ErrCodePropertiesValidation,
	ErrnoBadQuery:             ErrCodeBadQuery,
	ErrnoBatchFailed:          ErrCodeBadQuery,
}

// Code returns the symbolic code for an errno
func (n Errno) Code() ErrorCode {
	if code, ok := codes[n]; ok {
		return code
	}
	return ErrCodeBadQuery
}

// Class returns the taxonomy class of an errno
func (n Errno) Class() Class {
	switch n {
	case ErrnoRequestValidation, ErrnoPropertiesValidation:
		return ClassClient
	case ErrnoDefinitionValidation:
		return ClassConfiguration
	case ErrnoQueryNotFound:
		return ClassNotFound
	case ErrnoQueryNoAccess:
		return ClassAuthorization
	case ErrnoBadQuery:
		return ClassExecution
	default:
		return ClassEnvelope
	}
}

// QueryError is a classified failure of one batch item or of a whole batch
type QueryError struct {
	Errno   Errno
	Code    ErrorCode
	Details any
	Err     error
}

// Error implements the error interface
func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %v", e.Code, e.Errno, e.Err)
	}
	return fmt.Sprintf("%s (%d)", e.Code, e.Errno)
}

// Unwrap returns the underlying error
func (e *QueryError) Unwrap() error {
	return e.Err
}

// New creates a QueryError for errno with optional details
func New(errno Errno, details any) *QueryError {
	return &QueryError{
		Errno:   errno,
		Code:    errno.Code(),
		Details: details,
	}
}

// Wrap creates a QueryError for errno caused by err. The error message is
// used as details.
func Wrap(errno Errno, err error) *QueryError {
	qe := New(errno, nil)
	qe.Err = err
	if err != nil {
		qe.Details = err.Error()
	}
	return qe
}

// RequestValidation reports an invalid request item shape
func RequestValidation(details any) *QueryError {
	return New(ErrnoRequestValidation, details)
}

// DefinitionValidation reports a malformed registry entry
func DefinitionValidation(details any) *QueryError {
	return New(ErrnoDefinitionValidation, details)
}

// QueryNotFound reports a name with no registered definition
func QueryNotFound() *QueryError {
	return New(ErrnoQueryNotFound, nil)
}

// QueryNoAccess reports a caller lacking every required access tag
func QueryNoAccess() *QueryError {
	return New(ErrnoQueryNoAccess, nil)
}

// PropertiesValidation reports properties rejected by the definition schema
func PropertiesValidation(details any) *QueryError {
	return New(ErrnoPropertiesValidation, details)
}

// BadQuery reports an executor failure for one item
func BadQuery(err error) *QueryError {
	return Wrap(ErrnoBadQuery, err)
}

// BatchFailed reports a failure outside the per-item pipeline
func BatchFailed(err error) *QueryError {
	return Wrap(ErrnoBatchFailed, err)
}

// As extracts a QueryError from an error chain
func As(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) && qe != nil {
		return qe, true
	}
	return nil, false
}

// IsClientError checks if the error is caller-fixable
func IsClientError(err error) bool {
	if qe, ok := As(err); ok {
		return qe.Errno.Class() == ClassClient
	}
	return false
}

// IsConfigError checks if the error comes from a registry authoring defect
func IsConfigError(err error) bool {
	if qe, ok := As(err); ok {
		return qe.Errno.Class() == ClassConfiguration
	}
	return false
}
