package in

import (
	"context"

	"progresscard/internal/modules/render/dto"
)

type Usecase interface {
	Render(ctx context.Context, input dto.RenderInput) (dto.RenderOutput, error)
	Plan(ctx context.Context, input dto.RenderInput) (dto.PlanOutput, error)
	Formats() []string
}
