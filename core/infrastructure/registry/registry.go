package registry

import (
	"fmt"
	"sort"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
)

// Snapshot is an immutable allow-list of query definitions keyed by name.
// Entries are kept as loaded; their shape is checked when they are used.
type Snapshot struct {
	definitions map[string]domain.Document
	names       []string
}

// NewSnapshot indexes docs by name. Every entry must carry a string name
// and names must be unique.
func NewSnapshot(docs []domain.Document) (*Snapshot, error) {
	log := logging.New("registry")

	s := &Snapshot{
		definitions: make(map[string]domain.Document, len(docs)),
		names:       make([]string, 0, len(docs)),
	}

	for i, doc := range docs {
		name, ok := doc["name"].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("query definition [%d] has no name", i)
		}
		if _, exists := s.definitions[name]; exists {
			return nil, fmt.Errorf("query definition '%s' is defined more than once", name)
		}
		s.definitions[name] = doc
		s.names = append(s.names, name)

		if access, ok := doc["access"].([]any); !ok || len(access) == 0 {
			log.Warnf("Query '%s' has no access tags; every caller will be denied", name)
		}
	}

	sort.Strings(s.names)
	log.Debugf("Loaded %d query definition(s)", len(s.names))
	return s, nil
}

// Lookup returns the definition registered under name
func (s *Snapshot) Lookup(name string) (domain.Document, bool) {
	doc, ok := s.definitions[name]
	return doc, ok
}

// Names returns every registered name in sorted order
func (s *Snapshot) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of definitions
func (s *Snapshot) Len() int {
	return len(s.names)
}

var _ interfaces.Registry = (*Snapshot)(nil)
