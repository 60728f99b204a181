package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"progresscard/internal/modules/render/domain"
	renderout "progresscard/internal/modules/render/port/out"
	apperrors "progresscard/internal/platform/errors"
)

type RenderService struct {
	layout    domain.Layout
	factories map[string]renderout.CanvasFactory
}

func NewRenderService(layout domain.Layout, factories ...renderout.CanvasFactory) (*RenderService, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if len(factories) == 0 {
		return nil, fmt.Errorf("no canvas factory configured")
	}
	byFormat := make(map[string]renderout.CanvasFactory, len(factories))
	for _, f := range factories {
		byFormat[f.Format()] = f
	}
	return &RenderService{layout: layout, factories: byFormat}, nil
}

func (s *RenderService) Formats() []string {
	formats := make([]string, 0, len(s.factories))
	for f := range s.factories {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

func (s *RenderService) ContentType(format string) (string, error) {
	f, ok := s.factories[format]
	if !ok {
		return "", fmt.Errorf("%w: unsupported format %q", apperrors.ErrInvalidInput, format)
	}
	return f.ContentType(), nil
}

// Plan returns the drawing commands for a card without rasterising them.
func (s *RenderService) Plan(name string, ratio float64) []domain.Command {
	return domain.BuildPlan(name, ratio, s.layout)
}

// Render draws the card for name and ratio and returns the encoded image.
// Drawing failures wrap apperrors.ErrRender.
func (s *RenderService) Render(ctx context.Context, name string, ratio float64, format string) ([]byte, error) {
	factory, ok := s.factories[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format %q", apperrors.ErrInvalidInput, format)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	canvas, err := factory.NewCanvas(s.layout.Width, s.layout.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: new %s canvas: %w", apperrors.ErrRender, format, err)
	}
	for _, cmd := range s.Plan(name, ratio) {
		if err := apply(canvas, cmd); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrRender, cmd.Kind(), err)
		}
	}
	var buf bytes.Buffer
	if err := canvas.Encode(&buf); err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", apperrors.ErrRender, format, err)
	}
	return buf.Bytes(), nil
}

func apply(c renderout.Canvas, cmd domain.Command) error {
	switch op := cmd.(type) {
	case domain.FillRect:
		c.FillRect(op.Rect, op.Top, op.Bottom)
	case domain.FillDisc:
		c.FillPolygon(domain.CirclePolygon(op.Center, op.Radius), op.Color)
	case domain.StrokeArc:
		c.FillPolygon(domain.ArcOutline(op.Center, op.Radius, op.Width, op.StartDeg, op.SweepDeg), op.Color)
	case domain.PercentLabel:
		return drawPercent(c, op)
	case domain.Chip:
		return drawChip(c, op)
	case domain.CenteredText:
		m, err := c.MeasureText(op.Text, op.Size)
		if err != nil {
			return err
		}
		return c.DrawText(domain.Point{X: op.Anchor.X - m.Advance/2, Y: op.Anchor.Y}, op.Text, op.Size, op.Color)
	case domain.Image:
		return c.DrawImage(op.Rect, op.Path)
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
	return nil
}

func drawPercent(c renderout.Canvas, op domain.PercentLabel) error {
	value, err := c.MeasureText(op.Value, op.Size)
	if err != nil {
		return err
	}
	suffix, err := c.MeasureText(op.Suffix, op.SuffixSize)
	if err != nil {
		return err
	}
	x := op.Center.X - (value.Advance+suffix.Advance)/2
	baseline := op.Center.Y + (value.Ascent-value.Descent)/2
	if err := c.DrawText(domain.Point{X: x, Y: baseline}, op.Value, op.Size, op.Color); err != nil {
		return err
	}
	return c.DrawText(domain.Point{X: x + value.Advance, Y: baseline}, op.Suffix, op.SuffixSize, op.Color)
}

func drawChip(c renderout.Canvas, op domain.Chip) error {
	m, err := c.MeasureText(op.Text, op.Size)
	if err != nil {
		return err
	}
	bg := domain.Rect{
		Min: domain.Point{X: op.Origin.X - op.Padding, Y: op.Origin.Y - m.Ascent - op.Padding},
		Max: domain.Point{X: op.Origin.X + m.Advance + op.Padding, Y: op.Origin.Y + m.Descent + op.Padding},
	}
	c.FillRect(bg, op.Background, op.Background)
	return c.DrawText(op.Origin, op.Text, op.Size, op.Color)
}
