package service

import (
	"context"
	"fmt"
	"sort"

	"progresscard/internal/modules/progress/domain"
	progressout "progresscard/internal/modules/progress/port/out"
)

// Seed writes every document of fixture through w in collection/id order
// and returns how many were written.
func Seed(ctx context.Context, w progressout.RecordWriter, fixture map[string]map[string]map[string]any) (int, error) {
	if w == nil {
		return 0, fmt.Errorf("record store is read-only")
	}
	collections := make([]string, 0, len(fixture))
	for c := range fixture {
		collections = append(collections, c)
	}
	sort.Strings(collections)

	written := 0
	for _, collection := range collections {
		docs := fixture[collection]
		ids := make([]string, 0, len(docs))
		for id := range docs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			doc := domain.Document(docs[id])
			if doc == nil {
				doc = domain.Document{}
			}
			if err := w.PutDocument(ctx, collection, id, doc); err != nil {
				return written, fmt.Errorf("seed %s/%s: %w", collection, id, err)
			}
			written++
		}
	}
	return written, nil
}
