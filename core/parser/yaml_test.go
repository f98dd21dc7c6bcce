package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/querygate/core/domain"
)

func TestParseConfig_SubstitutesEnv(t *testing.T) {
	t.Setenv("QG_TEST_DSN", "postgres://u:p@localhost/app")
	t.Setenv("QG_TEST_SECRET", "0123456789abcdef")

	content := []byte(`name: reporting
environment: production
server:
  port: "8080"
adapter:
  connector: Postgres
  connection_string: "{{ env.QG_TEST_DSN }}"
auth:
  secret: "{{ env.QG_TEST_SECRET }}"
queries:
  - name: getUsers
    expression: "SELECT * FROM users WHERE team = '{{ env.QG_TEST_SECRET }}'"
    access: [admin]
`)

	cfg, err := ParseConfig(content)
	require.NoError(t, err)

	assert.Equal(t, "reporting", cfg.Name)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, domain.ConnectorPostgres, cfg.Adapter.Connector)
	assert.Equal(t, "postgres://u:p@localhost/app", cfg.Adapter.ConnectionString)
	assert.Equal(t, "0123456789abcdef", cfg.Auth.Secret)
	require.Len(t, cfg.Queries, 1)
	assert.Equal(t, "SELECT * FROM users WHERE team = '0123456789abcdef'", cfg.Queries[0]["expression"])
	assert.NoError(t, ValidateConfig(cfg))
}

func TestParseConfig_MissingEnv(t *testing.T) {
	_, err := ParseConfig([]byte(`adapter:
  connection_string: "{{ env.QG_TEST_DOES_NOT_EXIST }}"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QG_TEST_DOES_NOT_EXIST")
}

func TestParseConfig_KeepsPropertyPlaceholders(t *testing.T) {
	cfg, err := ParseConfig([]byte(`queries:
  - name: getUser
    expression: "SELECT * FROM users WHERE id = {{ properties.id }}"
`))
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE id = {{ properties.id }}", cfg.Queries[0]["expression"])
}

func TestValidateConfig(t *testing.T) {
	cfg := &domain.Config{
		Name:    "Reporting",
		Adapter: domain.AdapterConfig{Connector: "oracle"},
		Auth:    domain.AuthConfig{Secret: "short"},
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)

	verrs, ok := err.(*ValidationErrors)
	require.True(t, ok)
	assert.Len(t, verrs.Errors, 4)
	assert.Contains(t, verrs.Errors, "Name 'Reporting' must be lowercase")
	assert.Contains(t, verrs.Errors, "Adapter.ConnectionString is required")
}

func TestParseDefinitions_Layouts(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "top-level list",
			content: `- name: getUsers
  expression: SELECT 1
- name: getTeams
  expression: SELECT 2
`,
		},
		{
			name: "queries list",
			content: `queries:
  - name: getUsers
    expression: SELECT 1
  - name: getTeams
    expression: SELECT 2
`,
		},
		{
			name: "queries map",
			content: `queries:
  getUsers:
    expression: SELECT 1
  getTeams:
    expression: SELECT 2
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := ParseDefinitions([]byte(tt.content))
			require.NoError(t, err)
			require.Len(t, docs, 2)

			names := []any{docs[0]["name"], docs[1]["name"]}
			assert.ElementsMatch(t, []any{"getUsers", "getTeams"}, names)
		})
	}
}

func TestParseDefinitions_Invalid(t *testing.T) {
	_, err := ParseDefinitions([]byte(`queries: 12`))
	assert.Error(t, err)

	_, err = ParseDefinitions([]byte(`- just a string`))
	assert.Error(t, err)

	docs, err := ParseDefinitions([]byte(``))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestParseDefinitionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`- name: getUsers
  expression: SELECT 1
  access: [admin]
`), 0o644))

	docs, err := ParseDefinitionsFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, []any{"admin"}, docs[0]["access"])
}

func TestValidateDefinitions(t *testing.T) {
	docs := []domain.Document{
		{"name": "getUsers", "expression": "SELECT 1", "access": []any{"admin"}},
		{"name": "getUsers", "expression": "SELECT 2", "access": []any{"admin"}},
		{"name": "open", "expression": "SELECT 3", "access": []any{}},
		{"name": "badSchema", "expression": "SELECT 4", "access": []any{"admin"}, "schema": map[string]any{"type": 5}},
		{"expression": "SELECT 5"},
	}

	warnings, err := ValidateDefinitions(docs)
	require.Error(t, err)

	verrs := err.(*ValidationErrors)
	assert.Len(t, verrs.Errors, 3)
	assert.Contains(t, verrs.Errors[0], "already defined")
	assert.Contains(t, verrs.Errors[1], "schema does not compile")
	assert.Contains(t, verrs.Errors[2], "Query [4]")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Query 'open'")
}

func TestValidateDefinitions_References(t *testing.T) {
	docs := []domain.Document{
		{
			"name":       "declared",
			"expression": "SELECT * FROM t WHERE id = {{ properties.id }} AND owner = {{ caller.subject }} LIMIT {{ properties.limit }}",
			"properties": map[string]any{"limit": 10},
			"schema":     map[string]any{"properties": map[string]any{"id": map[string]any{"type": "integer"}}},
			"access":     []any{"admin"},
		},
		{
			"name":       "undeclared",
			"expression": "SELECT * FROM t WHERE id = {{ properties.id }}",
			"access":     []any{"admin"},
		},
		{
			"name":       "badCaller",
			"expression": "SELECT * FROM t WHERE team = {{ caller.team }}",
			"access":     []any{"admin"},
		},
	}

	_, err := ValidateDefinitions(docs)
	require.Error(t, err)

	verrs := err.(*ValidationErrors)
	require.Len(t, verrs.Errors, 2)
	assert.Contains(t, verrs.Errors[0], "Query 'undeclared'")
	assert.Contains(t, verrs.Errors[0], "{{ properties.id }}")
	assert.Contains(t, verrs.Errors[1], "Query 'badCaller'")
	assert.Contains(t, verrs.Errors[1], "unknown caller attribute 'team'")
}
