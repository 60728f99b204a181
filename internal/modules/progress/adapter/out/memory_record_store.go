package out

import (
	"context"
	"fmt"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"progresscard/internal/modules/progress/domain"
)

// MemoryRecordStore is an in-process document store, optionally loaded from
// a YAML fixture of the form collection -> id -> fields.
type MemoryRecordStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]domain.Document
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{docs: map[string]map[string]domain.Document{}}
}

func NewYAMLRecordStore(path string) (*MemoryRecordStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record fixture: %w", err)
	}
	fixture := map[string]map[string]map[string]any{}
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return nil, fmt.Errorf("decode record fixture: %w", err)
	}
	store := NewMemoryRecordStore()
	for collection, docs := range fixture {
		for id, fields := range docs {
			if fields == nil {
				fields = map[string]any{}
			}
			_ = store.PutDocument(context.Background(), collection, id, fields)
		}
	}
	return store, nil
}

func (s *MemoryRecordStore) GetDocument(_ context.Context, collection, id string) (domain.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(doc), true, nil
}

func (s *MemoryRecordStore) PutDocument(_ context.Context, collection, id string, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[collection] == nil {
		s.docs[collection] = map[string]domain.Document{}
	}
	s.docs[collection][id] = maps.Clone(doc)
	return nil
}
