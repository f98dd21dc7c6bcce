// Package mocks provides testify mocks for the collaborator interfaces
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/domain/interfaces"
)

// MockRegistry is a mock implementation of interfaces.Registry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Lookup(name string) (domain.Document, bool) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(domain.Document), args.Bool(1)
}

func (m *MockRegistry) Names() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

// MockRegistrySource is a mock implementation of interfaces.RegistrySource
type MockRegistrySource struct {
	mock.Mock
}

func (m *MockRegistrySource) Load(ctx context.Context) (interfaces.Registry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.Registry), args.Error(1)
}

// MockExecutor is a mock implementation of interfaces.Executor
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) NewSession() interfaces.Session {
	args := m.Called()
	return args.Get(0).(interfaces.Session)
}

// MockSession is a mock implementation of interfaces.Session
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Execute(ctx context.Context, expression string, properties map[string]any, caller *domain.Caller) ([]domain.Row, error) {
	args := m.Called(ctx, expression, properties, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Row), args.Error(1)
}

func (m *MockSession) Release() {
	m.Called()
}

// MockSchemaValidator is a mock implementation of interfaces.SchemaValidator
type MockSchemaValidator struct {
	mock.Mock
}

func (m *MockSchemaValidator) Validate(schema map[string]any, value any) (domain.ValidationResult, error) {
	args := m.Called(schema, value)
	return args.Get(0).(domain.ValidationResult), args.Error(1)
}

var (
	_ interfaces.Registry        = (*MockRegistry)(nil)
	_ interfaces.RegistrySource  = (*MockRegistrySource)(nil)
	_ interfaces.Executor        = (*MockExecutor)(nil)
	_ interfaces.Session         = (*MockSession)(nil)
	_ interfaces.SchemaValidator = (*MockSchemaValidator)(nil)
)
