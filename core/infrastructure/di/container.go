package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperterse/querygate/core/application/services"
	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/auth"
	infraconnectors "github.com/hyperterse/querygate/core/infrastructure/connectors"
	"github.com/hyperterse/querygate/core/infrastructure/registry"
)

// Container holds all dependencies
type Container struct {
	Config        *domain.Config
	Connector     interfaces.Connector
	Registry      *registry.FileSource
	Authenticator *auth.Authenticator
	QueryService  interfaces.QueryService
}

// NewContainer opens the configured connector and builds the services on
// top of it
func NewContainer(cfg *domain.Config) (*Container, error) {
	connector, err := infraconnectors.NewConnector(cfg.Adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s connector: %w", cfg.Adapter.Connector, err)
	}

	c, err := NewContainerWithConnector(cfg, connector)
	if err != nil {
		connector.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithConnector builds the services on top of an existing
// connector. The container takes ownership of connector.
func NewContainerWithConnector(cfg *domain.Config, connector interfaces.Connector) (*Container, error) {
	source, err := registry.NewSourceFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	authenticator, err := auth.NewAuthenticator(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authentication: %w", err)
	}

	queryService := services.NewQueryService(source, connector,
		services.WithProduction(cfg.IsProduction()),
	)

	return &Container{
		Config:        cfg,
		Connector:     connector,
		Registry:      source,
		Authenticator: authenticator,
		QueryService:  queryService,
	}, nil
}

// Ping verifies the data store is reachable
func (c *Container) Ping(ctx context.Context) error {
	if c.Connector == nil {
		return errors.New("no connector")
	}
	return c.Connector.Ping(ctx)
}

// Close closes all resources
func (c *Container) Close() error {
	if c.Connector != nil {
		return c.Connector.Close()
	}
	return nil
}
