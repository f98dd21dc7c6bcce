package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hyperterse/querygate/core/domain"
)

// ParseConfig parses YAML content into a Config and substitutes
// environment variables
func ParseConfig(data []byte) (*domain.Config, error) {
	cfg := &domain.Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if err := SubstituteEnvVarsInConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseConfigFile reads and parses a config file. Dir is set to the
// directory of the file.
func ParseConfigFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.Dir = filepath.Dir(abs)
	return cfg, nil
}

// ParseDefinitions parses a registry file. Three layouts are accepted: a
// top-level list of definitions, a "queries" list, or a "queries" map whose
// keys are the definition names.
func ParseDefinitions(data []byte) ([]domain.Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	var docs []domain.Document
	var err error
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		docs, err = definitionList(v)
	case map[string]any:
		switch queries := v["queries"].(type) {
		case nil:
			return nil, nil
		case []any:
			docs, err = definitionList(queries)
		case map[string]any:
			docs, err = definitionMap(queries)
		default:
			return nil, fmt.Errorf("queries must be a list or a map")
		}
	default:
		return nil, fmt.Errorf("registry file must contain a list or a map")
	}
	if err != nil {
		return nil, err
	}

	for i, doc := range docs {
		substituted, err := SubstituteEnvVarsInDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("configuration error at server startup: queries[%d]: %w", i, err)
		}
		docs[i] = substituted
	}
	return docs, nil
}

// ParseDefinitionsFile reads and parses a registry file
func ParseDefinitionsFile(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	return ParseDefinitions(data)
}

func definitionList(items []any) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(items))
	for i, item := range items {
		doc, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid query structure at index %d", i)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func definitionMap(items map[string]any) ([]domain.Document, error) {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make([]domain.Document, 0, len(items))
	for _, name := range names {
		doc, ok := items[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid query structure for '%s'", name)
		}
		if _, ok := doc["name"]; !ok {
			doc["name"] = name
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
