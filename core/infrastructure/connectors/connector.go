package connectors

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/domain/interfaces"
)

// Session is re-exported for connector implementations
type Session = interfaces.Session

// NewConnector opens the connector named by cfg.Connector and verifies the
// data store is reachable
func NewConnector(cfg domain.AdapterConfig) (interfaces.Connector, error) {
	switch cfg.Connector {
	case domain.ConnectorPostgres:
		return NewPostgresConnector(cfg.ConnectionString, cfg.Options)
	case domain.ConnectorMySQL:
		return NewMySQLConnector(cfg.ConnectionString, cfg.Options)
	case domain.ConnectorSQLite:
		return NewSQLiteConnector(cfg.ConnectionString, cfg.Options)
	case domain.ConnectorMongoDB:
		return NewMongoDBConnector(cfg.ConnectionString, cfg.Options)
	case domain.ConnectorRedis:
		return NewRedisConnector(cfg.ConnectionString, cfg.Options)
	default:
		return nil, fmt.Errorf("unsupported connector '%s'. Must be one of: %s", cfg.Connector, strings.Join(domain.ValidConnectors(), ", "))
	}
}

// appendURLOptions merges options into the query string of a URL-style
// connection string
func appendURLOptions(connectionString string, options map[string]string) (string, error) {
	if len(options) == 0 {
		return connectionString, nil
	}
	parsedURL, err := url.Parse(connectionString)
	if err != nil {
		return "", err
	}
	query := parsedURL.Query()
	for key, value := range options {
		query.Set(key, value)
	}
	parsedURL.RawQuery = query.Encode()
	return parsedURL.String(), nil
}

// optionPairs renders options as key=value pairs sorted by key
func optionPairs(options map[string]string) []string {
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", key, options[key]))
	}
	return parts
}
