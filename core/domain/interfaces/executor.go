package interfaces

import (
	"context"

	"github.com/hyperterse/querygate/core/domain"
)

// Executor runs registered query expressions against a data store. One
// session is opened per batch.
type Executor interface {
	// NewSession opens a per-request session. It does not block; any pooled
	// resource is acquired on first use.
	NewSession() Session
}

// Session is the per-request handle on the executor
type Session interface {
	// Execute runs expression with bound properties on behalf of caller
	Execute(ctx context.Context, expression string, properties map[string]any, caller *domain.Caller) ([]domain.Row, error)

	// Release returns any resource held by the session. It is called
	// exactly once per request.
	Release()
}

// Connector is an Executor owning a connection pool
type Connector interface {
	Executor

	// Ping verifies the data store is reachable
	Ping(ctx context.Context) error

	// Close closes the connector and releases resources
	Close() error
}
