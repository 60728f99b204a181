package usecase

import (
	"context"
	"fmt"

	"progresscard/internal/modules/render/domain"
	"progresscard/internal/modules/render/dto"
	renderin "progresscard/internal/modules/render/port/in"
	"progresscard/internal/modules/render/service"
)

type Interactor struct {
	svc *service.RenderService
}

func NewInteractor(svc *service.RenderService) renderin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Render(ctx context.Context, input dto.RenderInput) (dto.RenderOutput, error) {
	contentType, err := i.svc.ContentType(input.Format)
	if err != nil {
		return dto.RenderOutput{}, err
	}
	data, err := i.svc.Render(ctx, input.DisplayName, input.Ratio, input.Format)
	if err != nil {
		return dto.RenderOutput{}, err
	}
	return dto.RenderOutput{Data: data, ContentType: contentType, Format: input.Format}, nil
}

func (i *Interactor) Plan(_ context.Context, input dto.RenderInput) (dto.PlanOutput, error) {
	cmds := i.svc.Plan(input.DisplayName, input.Ratio)
	raw, err := domain.MarshalPlan(cmds)
	if err != nil {
		return dto.PlanOutput{}, fmt.Errorf("marshal plan: %w", err)
	}
	return dto.PlanOutput{JSON: raw, Commands: len(cmds)}, nil
}

func (i *Interactor) Formats() []string {
	return i.svc.Formats()
}
