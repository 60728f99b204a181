package out

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"progresscard/internal/modules/render/domain"
	renderout "progresscard/internal/modules/render/port/out"
)

// RasterFactory produces anti-aliased RGBA canvases encoded as PNG.
type RasterFactory struct {
	fonts *FontSet
}

func NewRasterFactory(fonts *FontSet) renderout.CanvasFactory {
	return &RasterFactory{fonts: fonts}
}

func (f *RasterFactory) Format() string      { return "png" }
func (f *RasterFactory) ContentType() string { return "image/png" }

func (f *RasterFactory) NewCanvas(width, height int) (renderout.Canvas, error) {
	if f.fonts == nil {
		return nil, fmt.Errorf("no font loaded")
	}
	return &rasterCanvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		faces: f.fonts.newFaceCache(),
	}, nil
}

type rasterCanvas struct {
	img   *image.RGBA
	faces *faceCache
}

func (c *rasterCanvas) FillRect(r domain.Rect, top, bottom domain.Color) {
	area := image.Rect(
		int(math.Round(r.Min.X)), int(math.Round(r.Min.Y)),
		int(math.Round(r.Max.X)), int(math.Round(r.Max.Y)),
	).Intersect(c.img.Bounds())
	if area.Empty() {
		return
	}
	if top == bottom {
		draw.Draw(c.img, area, image.NewUniform(top.RGBA()), image.Point{}, draw.Over)
		return
	}
	rows := area.Dy()
	for i := 0; i < rows; i++ {
		t := 0.0
		if rows > 1 {
			t = float64(i) / float64(rows-1)
		}
		row := image.Rect(area.Min.X, area.Min.Y+i, area.Max.X, area.Min.Y+i+1)
		draw.Draw(c.img, row, image.NewUniform(top.Lerp(bottom, t).RGBA()), image.Point{}, draw.Over)
	}
}

func (c *rasterCanvas) FillPolygon(pts []domain.Point, col domain.Color) {
	if len(pts) < 3 {
		return
	}
	b := c.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(c.img, b, image.NewUniform(col.RGBA()), image.Point{})
}

func (c *rasterCanvas) MeasureText(text string, size float64) (renderout.TextMetrics, error) {
	return c.faces.measure(text, size)
}

func (c *rasterCanvas) DrawText(baseline domain.Point, text string, size float64, col domain.Color) error {
	face, err := c.faces.face(size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col.RGBA()),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(baseline.X), Y: toFixed(baseline.Y)},
	}
	d.DrawString(text)
	return nil
}

func (c *rasterCanvas) DrawImage(r domain.Rect, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	src, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	w, h := fitInto(r, src.Bounds().Dx(), src.Bounds().Dy())
	x, y := int(math.Round(r.Min.X)), int(math.Round(r.Min.Y))
	xdraw.ApproxBiLinear.Scale(c.img, image.Rect(x, y, x+w, y+h), src, src.Bounds(), xdraw.Over, nil)
	return nil
}

func (c *rasterCanvas) Encode(w io.Writer) error {
	return png.Encode(w, c.img)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

// fitInto scales an iw x ih image to fit r, keeping its aspect ratio.
func fitInto(r domain.Rect, iw, ih int) (int, int) {
	if iw == 0 || ih == 0 {
		return 0, 0
	}
	scale := math.Min(r.Width()/float64(iw), r.Height()/float64(ih))
	return int(math.Round(float64(iw) * scale)), int(math.Round(float64(ih) * scale))
}
