package di_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/infrastructure/di"
)

func sqliteConfig(t *testing.T, environment string) *domain.Config {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "queries.yaml"), []byte(`
queries:
  countTables:
    expression: SELECT count(*) AS n FROM sqlite_master WHERE type = 'table'
    access: [reader]
  broken:
    expression: SELECT * FROM nowhere
    access: [reader]
`), 0o644))

	return &domain.Config{
		Name:        "test",
		Environment: environment,
		Adapter: domain.AdapterConfig{
			Connector:        domain.ConnectorSQLite,
			ConnectionString: filepath.Join(dir, "app.db"),
		},
		Auth:     domain.AuthConfig{Secret: "0123456789abcdef0123456789abcdef"},
		Registry: domain.RegistryConfig{File: "queries.yaml"},
		Queries: []domain.Document{
			{"name": "one", "expression": "SELECT 1 AS one", "access": []any{"reader"}},
		},
		Dir: dir,
	}
}

func TestContainer_EndToEnd(t *testing.T) {
	c, err := di.NewContainer(sqliteConfig(t, "development"))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Ping(context.Background()))
	assert.ElementsMatch(t, []string{"broken", "countTables", "one"}, c.Registry.Snapshot().Names())

	resp := c.QueryService.ExecuteBatch(context.Background(),
		[]byte(`{"queries": [{"name": "one"}, {"name": "countTables"}, {"name": "broken"}]}`),
		&domain.Caller{Subject: "alice", Access: []string{"reader"}})

	require.Nil(t, resp.Error)
	require.Len(t, resp.Queries, 3)
	assert.Equal(t, []domain.Row{{"one": int64(1)}}, resp.Queries[0].Results)
	assert.Equal(t, []domain.Row{{"n": int64(0)}}, resp.Queries[1].Results)
	require.NotNil(t, resp.Queries[2].Error)
	assert.Equal(t, 1005, resp.Queries[2].Error.Errno)
	assert.NotNil(t, resp.Queries[2].Error.Details)
}

func TestContainer_ProductionHidesDetails(t *testing.T) {
	c, err := di.NewContainer(sqliteConfig(t, "production"))
	require.NoError(t, err)
	defer c.Close()

	resp := c.QueryService.ExecuteBatch(context.Background(),
		[]byte(`{"queries": [{"name": "broken"}]}`),
		&domain.Caller{Subject: "alice", Access: []string{"reader"}})

	encoded, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"queries": [{"name": "broken", "error": {"errno": 1005, "code": "ERROR_BAD_QUERY"}}]}`, string(encoded))
}

func TestContainer_Errors(t *testing.T) {
	cfg := sqliteConfig(t, "")
	cfg.Adapter.Connector = "oracle"
	_, err := di.NewContainer(cfg)
	assert.Error(t, err)

	cfg = sqliteConfig(t, "")
	cfg.Registry.File = "missing.yaml"
	_, err = di.NewContainer(cfg)
	assert.Error(t, err)

	cfg = sqliteConfig(t, "")
	cfg.Auth.Secret = ""
	_, err = di.NewContainer(cfg)
	assert.Error(t, err)
}
