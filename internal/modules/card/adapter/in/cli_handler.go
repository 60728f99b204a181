package in

import (
	"context"

	"progresscard/internal/modules/card/dto"
	cardin "progresscard/internal/modules/card/port/in"
)

type CLIHandler struct {
	usecase cardin.Usecase
}

func NewCLIHandler(usecase cardin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Card(ctx context.Context, userID string, refresh bool) (dto.CardOutput, error) {
	return h.usecase.Card(ctx, dto.CardInput{UserID: userID, Refresh: refresh})
}

func (h CLIHandler) List(ctx context.Context) ([]dto.ArtifactOutput, error) {
	return h.usecase.List(ctx)
}

// Evict reconciles userID, or the whole cache when userID is empty.
func (h CLIHandler) Evict(ctx context.Context, userID string) ([]dto.EvictOutput, error) {
	return h.usecase.Evict(ctx, userID)
}
