package in

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"progresscard/internal/modules/card/dto"
	cardin "progresscard/internal/modules/card/port/in"
	apperrors "progresscard/internal/platform/errors"
	"progresscard/internal/platform/id"
)

const requestIDHeader = "X-Request-ID"

type HTTPConfig struct {
	StaticDir string
	// SiteURL prefixes absolute links in the Open Graph page.
	SiteURL string
}

type HTTPHandler struct {
	usecase cardin.Usecase
	cfg     HTTPConfig
	ids     id.Generator
	logger  *zap.Logger
}

func NewHTTPHandler(usecase cardin.Usecase, cfg HTTPConfig, ids id.Generator, logger *zap.Logger) *HTTPHandler {
	if ids == nil {
		ids = id.UUID{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	return &HTTPHandler{usecase: usecase, cfg: cfg, ids: ids, logger: logger}
}

func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cards/{uid}", h.apiCard)
	mux.HandleFunc("GET /card/{uid}", h.page)
	mux.HandleFunc("GET /cards/{filename}", h.artifact)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(h.cfg.StaticDir))))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return h.logRequests(mux)
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) apiCard(w http.ResponseWriter, r *http.Request) {
	input := dto.CardInput{UserID: r.PathValue("uid"), Refresh: refreshParam(r)}
	out, err := h.usecase.Card(r.Context(), input)
	switch {
	case errors.Is(err, apperrors.ErrInvalidIdentifier):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid user id"})
	case err != nil:
		h.logger.Error("card request failed, serving default card",
			zap.String("request_id", requestID(r)),
			zap.String("user_id", input.UserID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, h.usecase.Fallback().Card)
	case out.Default:
		writeJSON(w, http.StatusNotFound, out)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

var pageTemplate = template.Must(template.New("opengraph").Parse(`<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:title" content="{{.Title}}">
<meta property="og:type" content="website">
<meta property="og:url" content="{{.URL}}">
<meta property="og:image" content="{{.Image}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:image" content="{{.Image}}">
</head>
<body>
<img src="{{.Image}}" alt="{{.Title}}">
</body>
</html>
`))

type pageData struct {
	Title string
	URL   string
	Image string
}

func (h *HTTPHandler) page(w http.ResponseWriter, r *http.Request) {
	input := dto.CardInput{UserID: r.PathValue("uid"), Refresh: refreshParam(r)}
	out, err := h.usecase.Page(r.Context(), input)
	if errors.Is(err, apperrors.ErrInvalidIdentifier) {
		http.Error(w, "Invalid uid", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("card page failed, serving default card",
			zap.String("request_id", requestID(r)),
			zap.String("user_id", input.UserID),
			zap.Error(err),
		)
		out = h.usecase.Fallback()
	}

	data := pageData{
		Title: out.Title,
		URL:   h.cfg.SiteURL + "/card/" + input.UserID,
		Image: h.imageURL(out.Card),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("write card page", zap.String("request_id", requestID(r)), zap.Error(err))
	}
}

func (h *HTTPHandler) artifact(w http.ResponseWriter, r *http.Request) {
	out, err := h.usecase.Artifact(r.Context(), r.PathValue("filename"))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrInvalidInput) {
			h.logger.Error("resolve artifact", zap.String("request_id", requestID(r)), zap.Error(err))
		}
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	http.ServeFile(w, r, out.Path)
}

func (h *HTTPHandler) imageURL(card dto.CardOutput) string {
	if card.Default {
		return h.cfg.SiteURL + "/static/" + card.Filename
	}
	return h.cfg.SiteURL + "/cards/" + card.Filename
}

func refreshParam(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return err == nil && v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := r.Header.Get(requestIDHeader)
		if rid == "" {
			rid = h.ids.New()
			r.Header.Set(requestIDHeader, rid)
		}
		w.Header().Set(requestIDHeader, rid)
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		h.logger.Info("http request",
			zap.String("request_id", rid),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", lrw.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func requestID(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}
