package in

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"progresscard/internal/modules/render/dto"
	renderin "progresscard/internal/modules/render/port/in"
)

type CLIHandler struct {
	usecase renderin.Usecase
}

func NewCLIHandler(usecase renderin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// RenderToFile writes a card to path. The format follows the file extension.
func (h CLIHandler) RenderToFile(ctx context.Context, name string, ratio float64, path string) (dto.RenderOutput, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	out, err := h.usecase.Render(ctx, dto.RenderInput{DisplayName: name, Ratio: ratio, Format: format})
	if err != nil {
		return dto.RenderOutput{}, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return dto.RenderOutput{}, fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, out.Data, 0o644); err != nil {
		return dto.RenderOutput{}, fmt.Errorf("write card: %w", err)
	}
	return out, nil
}

func (h CLIHandler) Plan(ctx context.Context, name string, ratio float64) (string, error) {
	out, err := h.usecase.Plan(ctx, dto.RenderInput{DisplayName: name, Ratio: ratio})
	if err != nil {
		return "", err
	}
	return string(out.JSON), nil
}
