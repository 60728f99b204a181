package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	carddomain "progresscard/internal/modules/card/domain"
	renderdomain "progresscard/internal/modules/render/domain"
	"progresscard/internal/platform/clock"
	"progresscard/internal/platform/config"
	"progresscard/internal/platform/id"
)

const fixture = `
user:
  abc123:
    name: ada lovelace
transport:
  abc123:
    bike: true
    train: true
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	cfg := config.DefaultConfig()
	cfg.Store.Driver = "yaml"
	cfg.Store.Path = path
	cfg.Cache.Dir = filepath.Join(dir, "cards")
	cfg.Cache.Format = "svg"
	cfg.Progress.TotalItems = 4
	return cfg
}

func TestNewWiresCardPipeline(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	app, err := NewWithOptions(cfg, zaptest.NewLogger(t), Options{Clock: clock.NewManual(now), IDs: &id.Sequence{IDs: []string{"req-1"}}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	progress, err := app.ProgressCLI.Progress(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Percent)
	assert.Equal(t, "ada lovelace", progress.DisplayName)

	card, err := app.CardCLI.Card(context.Background(), "abc123", false)
	require.NoError(t, err)
	assert.False(t, card.Default)
	assert.Equal(t, "abc123.1709294400.svg", card.Filename)

	svg, err := os.ReadFile(filepath.Join(cfg.Cache.Dir, card.Filename))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "Ada Lovelace")
	assert.Contains(t, string(svg), ">50</text>")
}

func TestNewServesDefaultCardOverHTTP(t *testing.T) {
	app, err := New(testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(app.CardHTTP.Routes())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/cards/nobody")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "default.png", body["artifact_filename"])
	assert.Equal(t, true, body["default"])
}

func TestNewRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"missing fixture", func(c *config.Config) { c.Store.Path = filepath.Join(t.TempDir(), "nope.yaml") }, "read record fixture"},
		{"bad max age", func(c *config.Config) { c.Cache.MaxAge = "soon" }, "cache.max_age"},
		{"bad retry delay", func(c *config.Config) { c.Store.Retry.InitialDelay = "x" }, "store.retry.initial_delay"},
		{"bad color", func(c *config.Config) { c.Card.ChipColor = "navy" }, "card.chip_color"},
		{"missing font", func(c *config.Config) { c.Card.FontPath = filepath.Join(t.TempDir(), "none.ttf") }, "font"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)
			_, err := New(cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLayoutFromCardConfig(t *testing.T) {
	cfg := config.DefaultConfig().Card
	l, err := Layout(cfg)
	require.NoError(t, err)
	def := renderdomain.DefaultLayout()
	assert.Equal(t, def.Brand, l.Brand)
	assert.Equal(t, def.Footer, l.Footer)
	assert.Equal(t, def.Lines, l.Lines)
	assert.Empty(t, l.LogoPath)

	cfg.BrandColor = "#000000"
	cfg.LogoPath = "logo.png"
	cfg.Lines = []string{"only one line"}
	l, err = Layout(cfg)
	require.NoError(t, err)
	assert.Equal(t, renderdomain.Black, l.BackgroundTop)
	assert.Equal(t, renderdomain.Black, l.BackgroundBottom)
	assert.Equal(t, []string{"only one line"}, l.Lines)
	assert.Equal(t, "logo.png", l.LogoPath)
	assert.InDelta(t, 130, l.LogoRect.Width(), 1e-9)
}

func TestRetryPolicyFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Retry.MaxAttempts = 5
	cfg.Store.Retry.MaxDelay = "10s"
	p, err := retryPolicy(cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, p.InitialDelay)
	assert.Equal(t, 10*time.Second, p.MaxDelay)
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
}

// The card image and the share page must spell a name the same way.
func TestCardAndShareTitleAgreeOnCasing(t *testing.T) {
	for _, name := range []string{"ada lovelace", "jean-pierre o'neil", "ÉLISE dupont", "zoë d'arc"} {
		title := carddomain.ShareTitle(name, 50)
		assert.True(t, strings.HasPrefix(title, renderdomain.TitleCase(name)+" "), "%q -> %q", name, title)
	}
}
