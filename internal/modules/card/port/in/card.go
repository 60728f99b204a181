package in

import (
	"context"

	"progresscard/internal/modules/card/dto"
)

type Usecase interface {
	// Card fails with apperrors.ErrInvalidIdentifier before touching any
	// store when the user id is not alphanumeric.
	Card(ctx context.Context, input dto.CardInput) (dto.CardOutput, error)
	Page(ctx context.Context, input dto.CardInput) (dto.PageOutput, error)
	// Fallback is the page served when anything else fails.
	Fallback() dto.PageOutput
	// Artifact resolves a cache filename to a file that currently exists.
	Artifact(ctx context.Context, filename string) (dto.ArtifactOutput, error)
	List(ctx context.Context) ([]dto.ArtifactOutput, error)
	// Evict reconciles one user, or every user when userID is empty.
	Evict(ctx context.Context, userID string) ([]dto.EvictOutput, error)
}
