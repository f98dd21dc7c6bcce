package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
	"github.com/hyperterse/querygate/core/parser"
)

// StaticSource always yields the same snapshot
type StaticSource struct {
	snapshot interfaces.Registry
}

// NewStaticSource wraps a fixed registry
func NewStaticSource(snapshot interfaces.Registry) *StaticSource {
	return &StaticSource{snapshot: snapshot}
}

// Load returns the wrapped registry
func (s *StaticSource) Load(ctx context.Context) (interfaces.Registry, error) {
	if s.snapshot == nil {
		return nil, fmt.Errorf("registry is not loaded")
	}
	return s.snapshot, nil
}

// FileSource serves definitions from inline config entries plus an
// optional registry file. Reload swaps the snapshot atomically; requests
// already running keep the snapshot they loaded.
type FileSource struct {
	path    string
	inline  []domain.Document
	current atomic.Pointer[Snapshot]
}

// NewFileSource builds the initial snapshot. path may be empty.
func NewFileSource(path string, inline []domain.Document) (*FileSource, error) {
	s := &FileSource{path: path, inline: inline}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSourceFromConfig creates a FileSource for the registry of cfg. A
// relative registry path is resolved against the config directory.
func NewSourceFromConfig(cfg *domain.Config) (*FileSource, error) {
	path := cfg.Registry.File
	if path != "" && !filepath.IsAbs(path) && cfg.Dir != "" {
		path = filepath.Join(cfg.Dir, path)
	}
	return NewFileSource(path, cfg.Queries)
}

// Path returns the registry file path, if any
func (s *FileSource) Path() string {
	return s.path
}

// Reload re-reads the registry file. On error the previous snapshot stays
// active.
func (s *FileSource) Reload() error {
	docs := make([]domain.Document, 0, len(s.inline))
	docs = append(docs, s.inline...)

	if s.path != "" {
		fileDocs, err := parser.ParseDefinitionsFile(s.path)
		if err != nil {
			return err
		}
		docs = append(docs, fileDocs...)
	}

	snapshot, err := NewSnapshot(docs)
	if err != nil {
		return err
	}

	s.current.Store(snapshot)
	logging.New("registry").Infof("Registry ready with %d query definition(s)", snapshot.Len())
	return nil
}

// Load returns the active snapshot
func (s *FileSource) Load(ctx context.Context) (interfaces.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, fmt.Errorf("registry is not loaded")
	}
	return snapshot, nil
}

// Snapshot returns the active snapshot
func (s *FileSource) Snapshot() *Snapshot {
	return s.current.Load()
}

var (
	_ interfaces.RegistrySource = (*StaticSource)(nil)
	_ interfaces.RegistrySource = (*FileSource)(nil)
)
