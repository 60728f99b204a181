package out

import (
	"context"
	"time"

	"progresscard/internal/modules/card/domain"
)

// ArtifactStore is the filename-indexed card cache.
type ArtifactStore interface {
	Find(ctx context.Context, userID string) (domain.Lookup, error)
	// Store writes a new artifact stamped with generatedAt. It never
	// removes older artifacts; EvictSuperseded does.
	Store(ctx context.Context, userID string, img domain.Image, generatedAt time.Time) (domain.ArtifactRef, error)
	// EvictSuperseded keeps the newest artifact of userID and removes the rest.
	EvictSuperseded(ctx context.Context, userID string) (domain.Eviction, error)
	List(ctx context.Context) ([]domain.ArtifactRef, error)
}

type ProgressSource interface {
	// Fetch reports ok=false for unknown users.
	Fetch(ctx context.Context, userID string) (domain.Progress, bool, error)
}

type Renderer interface {
	Render(ctx context.Context, displayName string, ratio float64) (domain.Image, error)
}
