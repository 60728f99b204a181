package in

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"progresscard/internal/modules/progress/dto"
	progressin "progresscard/internal/modules/progress/port/in"
	apperrors "progresscard/internal/platform/errors"
)

type CLIHandler struct {
	usecase progressin.Usecase
}

func NewCLIHandler(usecase progressin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Progress fails with apperrors.ErrNotFound for unknown users.
func (h CLIHandler) Progress(ctx context.Context, userID string) (dto.ProgressOutput, error) {
	out, err := h.usecase.Fetch(ctx, dto.FetchInput{UserID: userID})
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	if !out.Found {
		return out, fmt.Errorf("user %q: %w", userID, apperrors.ErrNotFound)
	}
	return out, nil
}

// SeedFile loads a YAML fixture (collection -> id -> fields) into the store.
func (h CLIHandler) SeedFile(ctx context.Context, path string) (dto.SeedOutput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dto.SeedOutput{}, fmt.Errorf("read fixture: %w", err)
	}
	fixture := dto.Fixture{}
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return dto.SeedOutput{}, fmt.Errorf("decode fixture: %w", err)
	}
	return h.usecase.Seed(ctx, fixture)
}
