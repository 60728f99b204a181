package out

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	renderout "progresscard/internal/modules/render/port/out"
	apperrors "progresscard/internal/platform/errors"
)

// FontSet holds one parsed TrueType font. It is safe for concurrent use;
// the faces derived from it are not, so every canvas gets its own faceCache.
type FontSet struct {
	font   *opentype.Font
	family string
}

// LoadFont parses the font at path, or the embedded Go Bold font when path
// is empty.
func LoadFont(path string) (*FontSet, error) {
	raw, family := gobold.TTF, "Go"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read font: %w", apperrors.ErrRender, err)
		}
		raw, family = b, ""
	}
	f, err := opentype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parse font: %w", apperrors.ErrRender, err)
	}
	if family == "" {
		family = "sans-serif"
		var buf sfnt.Buffer
		if name, err := f.Name(&buf, sfnt.NameIDFamily); err == nil && name != "" {
			family = name
		}
	}
	return &FontSet{font: f, family: family}, nil
}

func (s *FontSet) Family() string {
	return s.family
}

func (s *FontSet) newFaceCache() *faceCache {
	return &faceCache{font: s.font, faces: map[float64]font.Face{}}
}

type faceCache struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

func (c *faceCache) face(size float64) (font.Face, error) {
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(c.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("new face %.1fpx: %w", size, err)
	}
	c.faces[size] = f
	return f, nil
}

func (c *faceCache) measure(text string, size float64) (renderout.TextMetrics, error) {
	f, err := c.face(size)
	if err != nil {
		return renderout.TextMetrics{}, err
	}
	m := f.Metrics()
	return renderout.TextMetrics{
		Advance: float64(font.MeasureString(f, text)) / 64,
		Ascent:  float64(m.Ascent) / 64,
		Descent: float64(m.Descent) / 64,
	}, nil
}
