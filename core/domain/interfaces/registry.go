package interfaces

import (
	"context"

	"github.com/hyperterse/querygate/core/domain"
)

// Registry is a read-only snapshot of the query allow-list
type Registry interface {
	// Lookup returns the raw definition registered under name
	Lookup(name string) (domain.Document, bool)

	// Names returns every registered name in a stable order
	Names() []string
}

// RegistrySource yields the registry snapshot to use for one batch
type RegistrySource interface {
	Load(ctx context.Context) (Registry, error)
}
