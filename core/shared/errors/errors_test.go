package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hyperterse/querygate/core/shared/errors"
)

func TestErrnoCode(t *testing.T) {
	tests := []struct {
		errno    errors.Errno
		expected errors.ErrorCode
		class    errors.Class
	}{
		{errors.ErrnoRequestValidation, "ERROR_REQUEST_VALIDATION", errors.ClassClient},
		{errors.ErrnoDefinitionValidation, "ERROR_QUERY_DEFINITION_VALIDATION", errors.ClassConfiguration},
		{errors.ErrnoQueryNotFound, "ERROR_QUERY_NOT_FOUND", errors.ClassNotFound},
		{errors.ErrnoQueryNoAccess, "ERROR_QUERY_NO_ACCESS", errors.ClassAuthorization},
		{errors.ErrnoPropertiesValidation, "ERROR_QUERY_PROPERTIES_VALIDATION", errors.ClassClient},
		{errors.ErrnoBadQuery, "ERROR_BAD_QUERY", errors.ClassExecution},
		{errors.ErrnoBatchFailed, "ERROR_BAD_QUERY", errors.ClassEnvelope},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(int(tt.errno)), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.errno.Code())
			assert.Equal(t, tt.class, tt.errno.Class())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")

	qe := errors.BadQuery(cause)

	assert.Equal(t, errors.ErrnoBadQuery, qe.Errno)
	assert.Equal(t, errors.ErrCodeBadQuery, qe.Code)
	assert.Equal(t, "connection refused", qe.Details)
	assert.ErrorIs(t, qe, cause)
	assert.Equal(t, "ERROR_BAD_QUERY (1005): connection refused", qe.Error())
}

func TestNewWithoutCause(t *testing.T) {
	qe := errors.QueryNotFound()

	assert.Nil(t, qe.Details)
	assert.Nil(t, qe.Unwrap())
	assert.Equal(t, "ERROR_QUERY_NOT_FOUND (1002)", qe.Error())
}

func TestClassHelpers(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		client bool
		config bool
	}{
		{name: "request validation", err: errors.RequestValidation(nil), client: true},
		{name: "properties validation", err: errors.PropertiesValidation(nil), client: true},
		{name: "definition validation", err: errors.DefinitionValidation(nil), config: true},
		{name: "wrapped", err: fmt.Errorf("item 2: %w", errors.DefinitionValidation(nil)), config: true},
		{name: "no access", err: errors.QueryNoAccess()},
		{name: "plain error", err: stderrors.New("regular error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.client, errors.IsClientError(tt.err))
			assert.Equal(t, tt.config, errors.IsConfigError(tt.err))
		})
	}
}

func TestAs(t *testing.T) {
	_, ok := errors.As(stderrors.New("plain"))
	assert.False(t, ok)

	qe, ok := errors.As(fmt.Errorf("batch: %w", errors.BatchFailed(stderrors.New("boom"))))
	assert.True(t, ok)
	assert.Equal(t, errors.ErrnoBatchFailed, qe.Errno)
}
