package out

import (
	"io"

	"progresscard/internal/modules/render/domain"
)

// TextMetrics are in canvas pixels. Descent is positive below the baseline.
type TextMetrics struct {
	Advance float64
	Ascent  float64
	Descent float64
}

// Canvas is a fixed-size 2-D drawing surface for one render call.
type Canvas interface {
	FillRect(r domain.Rect, top, bottom domain.Color)
	FillPolygon(pts []domain.Point, c domain.Color)
	MeasureText(text string, size float64) (TextMetrics, error)
	DrawText(baseline domain.Point, text string, size float64, c domain.Color) error
	DrawImage(r domain.Rect, path string) error
	Encode(w io.Writer) error
}

// CanvasFactory creates canvases for one output format.
type CanvasFactory interface {
	Format() string
	ContentType() string
	NewCanvas(width, height int) (Canvas, error)
}
