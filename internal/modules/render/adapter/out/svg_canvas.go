package out

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image/png"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"progresscard/internal/modules/render/domain"
	renderout "progresscard/internal/modules/render/port/out"
)

// SVGFactory produces vector canvases. Text is measured with the same font
// as the raster canvas so chip backgrounds line up.
type SVGFactory struct {
	fonts *FontSet
}

func NewSVGFactory(fonts *FontSet) renderout.CanvasFactory {
	return &SVGFactory{fonts: fonts}
}

func (f *SVGFactory) Format() string      { return "svg" }
func (f *SVGFactory) ContentType() string { return "image/svg+xml" }

func (f *SVGFactory) NewCanvas(width, height int) (renderout.Canvas, error) {
	if f.fonts == nil {
		return nil, fmt.Errorf("no font loaded")
	}
	var family bytes.Buffer
	if err := xml.EscapeText(&family, []byte(f.fonts.Family())); err != nil {
		return nil, fmt.Errorf("escape font family: %w", err)
	}
	return &svgCanvas{width: width, height: height, family: family.String(), faces: f.fonts.newFaceCache()}, nil
}

type svgCanvas struct {
	width, height int
	family        string // attribute-escaped
	faces         *faceCache
	body          bytes.Buffer
	gradients     int
}

func (c *svgCanvas) FillRect(r domain.Rect, top, bottom domain.Color) {
	fill := paint(top)
	if top != bottom {
		c.gradients++
		id := "g" + strconv.Itoa(c.gradients)
		fmt.Fprintf(&c.body, `<defs><linearGradient id="%s" x1="0" y1="0" x2="0" y2="1"><stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s"/></linearGradient></defs>`+"\n",
			id, top.Hex(), bottom.Hex())
		fill = fmt.Sprintf(`fill="url(#%s)"`, id)
	}
	fmt.Fprintf(&c.body, `<rect x="%s" y="%s" width="%s" height="%s" %s/>`+"\n",
		num(r.Min.X), num(r.Min.Y), num(r.Width()), num(r.Height()), fill)
}

func (c *svgCanvas) FillPolygon(pts []domain.Point, col domain.Color) {
	if len(pts) < 3 {
		return
	}
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = num(p.X) + "," + num(p.Y)
	}
	fmt.Fprintf(&c.body, `<polygon points="%s" %s/>`+"\n", strings.Join(coords, " "), paint(col))
}

func (c *svgCanvas) MeasureText(text string, size float64) (renderout.TextMetrics, error) {
	return c.faces.measure(text, size)
}

func (c *svgCanvas) DrawText(baseline domain.Point, text string, size float64, col domain.Color) error {
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return err
	}
	fmt.Fprintf(&c.body, `<text x="%s" y="%s" font-family="%s" font-weight="bold" font-size="%s" %s>%s</text>`+"\n",
		num(baseline.X), num(baseline.Y), c.family, num(size), paint(col), escaped.String())
	return nil
}

func (c *svgCanvas) DrawImage(r domain.Rect, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	w, h := fitInto(r, cfg.Width, cfg.Height)
	fmt.Fprintf(&c.body, `<image x="%s" y="%s" width="%d" height="%d" href="data:image/png;base64,%s"/>`+"\n",
		num(r.Min.X), num(r.Min.Y), w, h, base64.StdEncoding.EncodeToString(raw))
	return nil
}

func (c *svgCanvas) Encode(w io.Writer) error {
	if _, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		c.width, c.height, c.width, c.height); err != nil {
		return err
	}
	if _, err := w.Write(c.body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</svg>\n")
	return err
}

func paint(c domain.Color) string {
	if c.A == 255 {
		return fmt.Sprintf(`fill="%s"`, c.Hex())
	}
	return fmt.Sprintf(`fill="%s" fill-opacity="%s"`, domain.RGB(c.R, c.G, c.B).Hex(), num(float64(c.A)/255))
}

// num prints v with at most two decimals.
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
