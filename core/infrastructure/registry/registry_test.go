package registry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/infrastructure/registry"
)

func TestNewSnapshot(t *testing.T) {
	snapshot, err := registry.NewSnapshot([]domain.Document{
		{"name": "getUsers", "expression": "SELECT 1", "access": []any{"admin"}},
		{"name": "broken", "sql": "SELECT 2"},
	})
	require.NoError(t, err)

	doc, ok := snapshot.Lookup("getUsers")
	require.True(t, ok)
	assert.Equal(t, "SELECT 1", doc["expression"])

	_, ok = snapshot.Lookup("broken")
	assert.True(t, ok, "malformed entries are kept so callers see a definition error")

	_, ok = snapshot.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"broken", "getUsers"}, snapshot.Names())
}

func TestNewSnapshot_Rejects(t *testing.T) {
	tests := []struct {
		name string
		docs []domain.Document
	}{
		{
			name: "duplicate names",
			docs: []domain.Document{
				{"name": "getUsers", "expression": "SELECT 1"},
				{"name": "getUsers", "expression": "SELECT 2"},
			},
		},
		{
			name: "missing name",
			docs: []domain.Document{{"expression": "SELECT 1"}},
		},
		{
			name: "name not a string",
			docs: []domain.Document{{"name": 3, "expression": "SELECT 1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.NewSnapshot(tt.docs)
			assert.Error(t, err)
		})
	}
}

func writeRegistry(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileSource_MergesInlineAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	writeRegistry(t, path, `- name: fromFile
  expression: SELECT 1
  access: [admin]
`)

	source, err := registry.NewFileSource(path, []domain.Document{
		{"name": "inline", "expression": "SELECT 2", "access": []any{"admin"}},
	})
	require.NoError(t, err)

	reg, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fromFile", "inline"}, reg.Names())
}

func TestFileSource_DuplicateAcrossInlineAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	writeRegistry(t, path, `- name: getUsers
  expression: SELECT 1
`)

	_, err := registry.NewFileSource(path, []domain.Document{{"name": "getUsers", "expression": "SELECT 2"}})
	assert.Error(t, err)
}

func TestFileSource_ReloadKeepsSnapshotOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	writeRegistry(t, path, `- name: getUsers
  expression: SELECT 1
`)

	source, err := registry.NewFileSource(path, nil)
	require.NoError(t, err)
	before, err := source.Load(context.Background())
	require.NoError(t, err)

	writeRegistry(t, path, `- name: a
  expression: SELECT 1
- name: a
  expression: SELECT 2
`)
	require.Error(t, source.Reload())

	after, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, before, after)
}

func TestFileSource_LoadHonoursCancelledContext(t *testing.T) {
	source, err := registry.NewFileSource("", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = source.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSourceFromConfig_ResolvesRelativePath(t *testing.T) {
	dir := t.TempDir()
	writeRegistry(t, filepath.Join(dir, "queries.yaml"), `- name: getUsers
  expression: SELECT 1
`)

	source, err := registry.NewSourceFromConfig(&domain.Config{
		Dir:      dir,
		Registry: domain.RegistryConfig{File: "queries.yaml"},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "queries.yaml"), source.Path())
	assert.Equal(t, 1, source.Snapshot().Len())
}

func TestStaticSource(t *testing.T) {
	snapshot, err := registry.NewSnapshot(nil)
	require.NoError(t, err)

	reg, err := registry.NewStaticSource(snapshot).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reg.Names())

	_, err = registry.NewStaticSource(nil).Load(context.Background())
	assert.Error(t, err)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	writeRegistry(t, path, `- name: getUsers
  expression: SELECT 1
`)

	source, err := registry.NewFileSource(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, registry.Watch(ctx, source))

	writeRegistry(t, path, `- name: getUsers
  expression: SELECT 1
- name: getTeams
  expression: SELECT 2
`)

	require.Eventually(t, func() bool {
		_, ok := source.Snapshot().Lookup("getTeams")
		return ok
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatch_RequiresFile(t *testing.T) {
	source, err := registry.NewFileSource("", nil)
	require.NoError(t, err)

	assert.Error(t, registry.Watch(context.Background(), source))
}
