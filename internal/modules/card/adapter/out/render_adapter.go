package out

import (
	"context"

	"progresscard/internal/modules/card/domain"
	cardout "progresscard/internal/modules/card/port/out"
	"progresscard/internal/modules/render/dto"
	renderin "progresscard/internal/modules/render/port/in"
)

// RenderAdapter renders every card in one configured format.
type RenderAdapter struct {
	render renderin.Usecase
	format string
}

func NewRenderAdapter(render renderin.Usecase, format string) cardout.Renderer {
	return &RenderAdapter{render: render, format: format}
}

func (a *RenderAdapter) Render(ctx context.Context, displayName string, ratio float64) (domain.Image, error) {
	out, err := a.render.Render(ctx, dto.RenderInput{DisplayName: displayName, Ratio: ratio, Format: a.format})
	if err != nil {
		return domain.Image{}, err
	}
	return domain.Image{Data: out.Data, Ext: out.Format, ContentType: out.ContentType}, nil
}
