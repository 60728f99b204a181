package in

import (
	"context"

	"progresscard/internal/modules/progress/dto"
)

type Usecase interface {
	// Fetch never fails for unknown users; it reports Found=false instead.
	Fetch(ctx context.Context, input dto.FetchInput) (dto.ProgressOutput, error)
	Seed(ctx context.Context, fixture dto.Fixture) (dto.SeedOutput, error)
}
