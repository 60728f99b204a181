package out

import (
	"context"

	"progresscard/internal/modules/progress/domain"
)

// RecordStore is the read side of the document store. A missing document is
// (nil, false, nil); transient failures wrap apperrors.ErrUnavailable.
type RecordStore interface {
	GetDocument(ctx context.Context, collection, id string) (domain.Document, bool, error)
}

type RecordWriter interface {
	PutDocument(ctx context.Context, collection, id string, doc domain.Document) error
}
