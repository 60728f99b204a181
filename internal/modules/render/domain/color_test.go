package domain_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progresscard/internal/modules/render/domain"
)

func TestParseHex(t *testing.T) {
	t.Parallel()
	cases := map[string]domain.Color{
		"#03b37f":   domain.RGB(0x03, 0xb3, 0x7f),
		"03B37F":    domain.RGB(0x03, 0xb3, 0x7f),
		"#fff":      domain.White,
		"#00000080": {A: 0x80},
	}
	for in, want := range cases {
		got, err := domain.ParseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "#12", "#gggggg", "#1234567"} {
		_, err := domain.ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestColorText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "#03b37f", domain.RGB(0x03, 0xb3, 0x7f).Hex())
	assert.Equal(t, "#00000080", domain.Color{A: 0x80}.Hex())

	var c domain.Color
	require.NoError(t, c.UnmarshalText([]byte("#1d3557")))
	assert.Equal(t, domain.RGB(0x1d, 0x35, 0x57), c)
	require.Error(t, c.UnmarshalText([]byte("nope")))
}

func TestColorMixing(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domain.Black, domain.Black.Lerp(domain.White, 0))
	assert.Equal(t, domain.White, domain.Black.Lerp(domain.White, 1))
	assert.Equal(t, domain.RGB(128, 128, 128), domain.Black.Lerp(domain.White, 0.5))

	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, domain.White.RGBA())
	assert.Equal(t, color.RGBA{R: 127, A: 127}, domain.Color{R: 255, A: 127}.RGBA())
}
