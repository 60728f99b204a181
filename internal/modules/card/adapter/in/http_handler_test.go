package in_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	cardhttp "progresscard/internal/modules/card/adapter/in"
	cardstore "progresscard/internal/modules/card/adapter/out"
	"progresscard/internal/modules/card/domain"
	"progresscard/internal/modules/card/service"
	"progresscard/internal/modules/card/usecase"
	"progresscard/internal/platform/clock"
	apperrors "progresscard/internal/platform/errors"
	"progresscard/internal/platform/id"
)

var t0 = time.Unix(1_700_000_000, 0).UTC()

type stubProgress struct{ err error }

func (p stubProgress) Fetch(_ context.Context, userID string) (domain.Progress, bool, error) {
	if p.err != nil {
		return domain.Progress{}, false, p.err
	}
	if userID != "abc123" {
		return domain.Progress{}, false, nil
	}
	return domain.Progress{UserID: userID, DisplayName: "ada", Ratio: 0.42, Percent: 42}, true, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(context.Context, string, float64) (domain.Image, error) {
	return domain.Image{Data: []byte("\x89PNG card"), Ext: "png"}, nil
}

type server struct {
	*httptest.Server
	cacheDir string
	logs     *observer.ObservedLogs
}

func newServer(t *testing.T, progress stubProgress) *server {
	t.Helper()
	root := t.TempDir()
	cacheDir, staticDir := filepath.Join(root, "cards"), filepath.Join(root, "static")
	require.NoError(t, os.MkdirAll(staticDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "default.png"), []byte("default"), 0o644))

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	c := clock.NewManual(t0)
	store, err := cardstore.NewFSArtifactStore(cacheDir, logger)
	require.NoError(t, err)
	svc, err := service.NewCardService(store, progress, stubRenderer{}, time.Hour, "default.png",
		service.WithClock(c), service.WithLogger(logger))
	require.NoError(t, err)

	h := cardhttp.NewHTTPHandler(usecase.NewInteractor(svc, c), cardhttp.HTTPConfig{
		StaticDir: staticDir,
		SiteURL:   "https://example.org/",
	}, &id.Sequence{IDs: []string{"req-1", "req-2", "req-3"}}, logger)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return &server{Server: srv, cacheDir: cacheDir, logs: logs}
}

func (s *server) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := s.Client().Get(s.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

type cardBody struct {
	Filename    string    `json:"artifact_filename"`
	Default     bool      `json:"default"`
	GeneratedAt time.Time `json:"generated_at"`
}

func decodeCard(t *testing.T, body string) cardBody {
	t.Helper()
	var out cardBody
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestAPICard(t *testing.T) {
	t.Parallel()
	s := newServer(t, stubProgress{})

	resp, body := s.get(t, "/api/cards/abc123")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-1", resp.Header.Get("X-Request-ID"))
	card := decodeCard(t, body)
	assert.Equal(t, "abc123.1700000000.png", card.Filename)
	assert.False(t, card.Default)
	assert.True(t, card.GeneratedAt.Equal(t0))

	resp, body = s.get(t, "/api/cards/abc123/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, body)
}

func TestAPICardInvalidID(t *testing.T) {
	t.Parallel()
	s := newServer(t, stubProgress{})

	resp, body := s.get(t, "/api/cards/abc-123")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"invalid user id"}`, body)

	entries, err := os.ReadDir(s.cacheDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAPICardUnknownUser(t *testing.T) {
	t.Parallel()
	s := newServer(t, stubProgress{})

	resp, body := s.get(t, "/api/cards/nobody")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	card := decodeCard(t, body)
	assert.Equal(t, "default.png", card.Filename)
	assert.True(t, card.Default)
	assert.NotContains(t, body, "generated_at")
}

func TestAPICardDegradesToDefault(t *testing.T) {
	t.Parallel()
	s := newServer(t, stubProgress{err: apperrors.ErrUnavailable})

	resp, body := s.get(t, "/api/cards/abc123?refresh=true")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	card := decodeCard(t, body)
	assert.Equal(t, "default.png", card.Filename)
	assert.True(t, card.Default)

	failures := s.logs.FilterMessage("card request failed, serving default card").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.ErrorLevel, failures[0].Level)
	assert.Equal(t, "req-1", failures[0].ContextMap()["request_id"])
}

func TestPageAndArtifact(t *testing.T) {
	t.Parallel()
	s := newServer(t, stubProgress{})

	resp, body := s.get(t, "/card/abc123")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `<meta property="og:image" content="https://example.org/cards/abc123.1700000000.png">`)
	assert.Contains(t, body, "Ada a voté sur 42 % des mesures")

	resp, body = s.get(t, "/cards/abc123.1700000000.png")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "\x89PNG card", body)

	for _, path := range []string{"/cards/README", "/cards/abc123.1600000000.png", "/cards/nobody.1700000000.png"} {
		resp, _ = s.get(t, path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestPageFallbacks(t *testing.T) {
	t.Parallel()
	s := newServer(t, stubProgress{})

	resp, body := s.get(t, "/card/nobody")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `content="https://example.org/static/default.png"`)

	resp, body = s.get(t, "/card/abc.123")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid uid", strings.TrimSpace(body))

	resp, body = s.get(t, "/static/default.png")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "default", body)
}

func TestRequestsAreLogged(t *testing.T) {
	t.Parallel()
	s := newServer(t, stubProgress{})

	req, err := http.NewRequest(http.MethodGet, s.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "from-proxy")
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "from-proxy", resp.Header.Get("X-Request-ID"))

	entries := s.logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "from-proxy", fields["request_id"])
	assert.Equal(t, "/healthz", fields["path"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
}
