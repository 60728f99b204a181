package service_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	renderadapter "progresscard/internal/modules/render/adapter/out"
	"progresscard/internal/modules/render/domain"
	renderout "progresscard/internal/modules/render/port/out"
	"progresscard/internal/modules/render/service"
	apperrors "progresscard/internal/platform/errors"
)

func newService(t *testing.T) *service.RenderService {
	t.Helper()
	fonts, err := renderadapter.LoadFont("")
	require.NoError(t, err)
	svc, err := service.NewRenderService(domain.DefaultLayout(),
		renderadapter.NewRasterFactory(fonts),
		renderadapter.NewSVGFactory(fonts),
	)
	require.NoError(t, err)
	return svc
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func assertColor(t *testing.T, img image.Image, x, y int, want domain.Color) {
	t.Helper()
	r, g, b, _ := img.At(x, y).RGBA()
	got := []int{int(r >> 8), int(g >> 8), int(b >> 8)}
	exp := []int{int(want.R), int(want.G), int(want.B)}
	for i := range got {
		assert.InDelta(t, exp[i], got[i], 3, "pixel (%d,%d) = %v, want %s", x, y, got, want.Hex())
	}
}

func TestRenderPNG(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	data, err := svc.Render(context.Background(), "ada lovelace", 0.25, "png")
	require.NoError(t, err)

	img := decode(t, data)
	assert.Equal(t, image.Rect(0, 0, 600, 315), img.Bounds())

	l := domain.DefaultLayout()
	assertColor(t, img, 1, 1, l.BackgroundTop)
	// Progress starts at 12 o'clock; a quarter never reaches 6 o'clock.
	assertColor(t, img, 460, 52, l.Brand)
	assertColor(t, img, 460, 208, l.Track)
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	for _, format := range svc.Formats() {
		first, err := svc.Render(context.Background(), "ada", 0.6, format)
		require.NoError(t, err)
		second, err := svc.Render(context.Background(), "ada", 0.6, format)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first, second), "%s output differs between calls", format)
	}
}

func TestRenderOverRangeDoesNotClamp(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	data, err := svc.Render(context.Background(), "ada", 1.3, "png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 600, 315), decode(t, data).Bounds())

	svg, err := svc.Render(context.Background(), "ada", 1.3, "svg")
	require.NoError(t, err)
	assert.Contains(t, string(svg), ">130</text>")
}

func TestRenderSurvivesExtremeRatios(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	for _, ratio := range []float64{-0.5, 2.5, 1e7, -1e7, math.Inf(1), math.Inf(-1), math.NaN()} {
		for _, format := range []string{"png", "svg"} {
			data, err := svc.Render(context.Background(), "ada", ratio, format)
			require.NoError(t, err, "ratio %v %s", ratio, format)
			assert.NotEmpty(t, data, "ratio %v %s", ratio, format)
		}
	}

	svg, err := svc.Render(context.Background(), "ada", 1e7, "svg")
	require.NoError(t, err)
	assert.Contains(t, string(svg), ">1000000000</text>")
}

func TestRenderSVG(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	data, err := svc.Render(context.Background(), "ada & co", 0.5, "svg")
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="600" height="315"`))
	assert.Contains(t, out, "Ada &amp; Co")
	assert.Contains(t, out, "voterpourleclimat.fr")
	assert.Contains(t, out, "linearGradient")

	ct, err := svc.ContentType("svg")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", ct)
}

func TestRenderUnsupportedFormat(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	_, err := svc.Render(context.Background(), "ada", 0.5, "gif")
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, []string{"png", "svg"}, svc.Formats())
}

func TestRenderWrapsCanvasFailures(t *testing.T) {
	t.Parallel()
	svc, err := service.NewRenderService(domain.DefaultLayout(), brokenFactory{})
	require.NoError(t, err)
	_, err = svc.Render(context.Background(), "ada", 0.5, "broken")
	require.ErrorIs(t, err, apperrors.ErrRender)
	require.ErrorIs(t, err, errNoGlyphs)
}

func TestRenderHonoursCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newService(t).Render(ctx, "ada", 0.5, "png")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRenderServiceRejectsBadInput(t *testing.T) {
	t.Parallel()
	_, err := service.NewRenderService(domain.DefaultLayout())
	require.Error(t, err)

	l := domain.DefaultLayout()
	l.Height = 0
	_, err = service.NewRenderService(l, brokenFactory{})
	require.Error(t, err)
}

func TestMissingFont(t *testing.T) {
	t.Parallel()
	_, err := renderadapter.LoadFont("testdata/does-not-exist.ttf")
	require.ErrorIs(t, err, apperrors.ErrRender)
}

var errNoGlyphs = errors.New("no glyphs")

type brokenFactory struct{}

func (brokenFactory) Format() string      { return "broken" }
func (brokenFactory) ContentType() string { return "application/octet-stream" }
func (brokenFactory) NewCanvas(int, int) (renderout.Canvas, error) {
	return brokenCanvas{}, nil
}

type brokenCanvas struct{}

func (brokenCanvas) FillRect(domain.Rect, domain.Color, domain.Color) {}
func (brokenCanvas) FillPolygon([]domain.Point, domain.Color)         {}
func (brokenCanvas) MeasureText(string, float64) (renderout.TextMetrics, error) {
	return renderout.TextMetrics{}, errNoGlyphs
}
func (brokenCanvas) DrawText(domain.Point, string, float64, domain.Color) error { return errNoGlyphs }
func (brokenCanvas) DrawImage(domain.Rect, string) error                        { return nil }
func (brokenCanvas) Encode(io.Writer) error                                     { return nil }
