package connectors_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/infrastructure/connectors"
)

func TestBindSQL(t *testing.T) {
	caller := &domain.Caller{Subject: "alice", Access: []string{"admin"}}
	properties := map[string]any{"id": 7.0, "team": "core", "ratio": 0.5, "filter": map[string]any{"a": 1},
		"big": json.Number("9007199254740993"), "price": json.Number("2.5")}

	tests := []struct {
		name       string
		expression string
		style      connectors.PlaceholderStyle
		statement  string
		args       []any
	}{
		{
			name:       "dollar placeholders",
			expression: "SELECT * FROM users WHERE id = {{ properties.id }} AND team = {{properties.team}}",
			style:      connectors.PlaceholderDollar,
			statement:  "SELECT * FROM users WHERE id = $1 AND team = $2",
			args:       []any{int64(7), "core"},
		},
		{
			name:       "dollar reuses repeated references",
			expression: "SELECT {{ properties.team }}, {{ caller.subject }} WHERE t = {{ properties.team }}",
			style:      connectors.PlaceholderDollar,
			statement:  "SELECT $1, $2 WHERE t = $1",
			args:       []any{"core", "alice"},
		},
		{
			name:       "question placeholders repeat arguments",
			expression: "SELECT {{ properties.team }} WHERE t = {{ properties.team }} AND r > {{ properties.ratio }}",
			style:      connectors.PlaceholderQuestion,
			statement:  "SELECT ? WHERE t = ? AND r > ?",
			args:       []any{"core", "core", 0.5},
		},
		{
			name:       "objects are passed as json text",
			expression: "SELECT {{ properties.filter }}",
			style:      connectors.PlaceholderQuestion,
			statement:  "SELECT ?",
			args:       []any{`{"a":1}`},
		},
		{
			name:       "json numbers keep integer precision",
			expression: "SELECT {{ properties.big }}, {{ properties.price }}",
			style:      connectors.PlaceholderQuestion,
			statement:  "SELECT ?, ?",
			args:       []any{int64(9007199254740993), 2.5},
		},
		{
			name:       "no placeholders",
			expression: "SELECT 1",
			style:      connectors.PlaceholderDollar,
			statement:  "SELECT 1",
			args:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statement, args, err := connectors.BindSQL(tt.expression, properties, caller, tt.style)
			require.NoError(t, err)
			assert.Equal(t, tt.statement, statement)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestBindSQL_Errors(t *testing.T) {
	_, _, err := connectors.BindSQL("SELECT {{ properties.missing }}", map[string]any{}, nil, connectors.PlaceholderDollar)
	assert.ErrorContains(t, err, "missing")

	_, _, err = connectors.BindSQL("SELECT {{ caller.subject }}", nil, nil, connectors.PlaceholderQuestion)
	assert.Error(t, err)

	_, _, err = connectors.BindSQL("SELECT {{ caller.email }}", nil, &domain.Caller{}, connectors.PlaceholderQuestion)
	assert.ErrorContains(t, err, "email")
}

func TestBindSQL_InjectionStaysInArguments(t *testing.T) {
	statement, args, err := connectors.BindSQL(
		"SELECT * FROM users WHERE name = {{ properties.name }}",
		map[string]any{"name": "x'; DROP TABLE users; --"},
		nil,
		connectors.PlaceholderQuestion,
	)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE name = ?", statement)
	assert.Equal(t, []any{"x'; DROP TABLE users; --"}, args)
}

func TestSubstituteJSON(t *testing.T) {
	out, err := connectors.SubstituteJSON(
		`{"find": "users", "filter": {"team": {{ properties.team }}, "age": {{ properties.age }}, "owner": {{ caller.subject }}}}`,
		map[string]any{"team": `core"}`, "age": 30.0},
		&domain.Caller{Subject: "alice"},
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"find": "users", "filter": {"team": "core\"}", "age": 30, "owner": "alice"}}`, out)
}

func TestSubstituteText(t *testing.T) {
	out, err := connectors.SubstituteText("user:{{ properties.id }}:{{ caller.access }}",
		map[string]any{"id": 42.0}, &domain.Caller{Access: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "user:42:a,b", out)
}

func TestExtractReferences(t *testing.T) {
	refs := connectors.ExtractReferences("{{ properties.a }} {{ caller.subject }} {{ properties.a }} {{ env.HOME }}")
	assert.Equal(t, []string{"properties.a", "caller.subject"}, refs)
}
