package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	cardinadapter "progresscard/internal/modules/card/adapter/in"
	cardoutadapter "progresscard/internal/modules/card/adapter/out"
	cardservice "progresscard/internal/modules/card/service"
	cardusecase "progresscard/internal/modules/card/usecase"
	progressinadapter "progresscard/internal/modules/progress/adapter/in"
	progressoutadapter "progresscard/internal/modules/progress/adapter/out"
	progressdomain "progresscard/internal/modules/progress/domain"
	progressout "progresscard/internal/modules/progress/port/out"
	progressservice "progresscard/internal/modules/progress/service"
	progressusecase "progresscard/internal/modules/progress/usecase"
	renderinadapter "progresscard/internal/modules/render/adapter/in"
	renderoutadapter "progresscard/internal/modules/render/adapter/out"
	renderdomain "progresscard/internal/modules/render/domain"
	renderservice "progresscard/internal/modules/render/service"
	renderusecase "progresscard/internal/modules/render/usecase"
	"progresscard/internal/platform/clock"
	"progresscard/internal/platform/config"
	"progresscard/internal/platform/id"
	"progresscard/internal/platform/retry"
	uiapp "progresscard/internal/ui/app"
)

type App struct {
	Config config.Config
	Logger *zap.Logger

	ProgressCLI progressinadapter.CLIHandler
	RenderCLI   renderinadapter.CLIHandler
	CardCLI     cardinadapter.CLIHandler
	CardHTTP    *cardinadapter.HTTPHandler

	closers []func() error
}

// Options swaps infrastructure for tests. Zero values select the real ones.
type Options struct {
	Clock clock.Clock
	IDs   id.Generator
}

func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	return NewWithOptions(cfg, logger, Options{})
}

func NewWithOptions(cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	ids := opts.IDs
	if ids == nil {
		ids = id.UUID{}
	}
	app := &App{Config: cfg, Logger: logger}

	store, writer, err := app.openRecordStore(cfg.Store)
	if err != nil {
		app.Close()
		return nil, err
	}
	policy, err := retryPolicy(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	progressSvc, err := progressservice.NewProgressService(store, progressdomain.Schema{
		Version:    cfg.Progress.SchemaVersion,
		Categories: cfg.Progress.Categories,
		TotalItems: cfg.Progress.TotalItems,
	},
		progressservice.WithRetryPolicy(policy),
		progressservice.WithConcurrency(cfg.Progress.Concurrency),
		progressservice.WithLogger(logger.Named("progress")),
	)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("new progress service: %w", err)
	}
	progressUC := progressusecase.NewInteractor(progressSvc, writer)

	layout, err := Layout(cfg.Card)
	if err != nil {
		app.Close()
		return nil, err
	}
	fonts, err := renderoutadapter.LoadFont(cfg.Card.FontPath)
	if err != nil {
		app.Close()
		return nil, err
	}
	renderSvc, err := renderservice.NewRenderService(layout,
		renderoutadapter.NewRasterFactory(fonts),
		renderoutadapter.NewSVGFactory(fonts),
	)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("new render service: %w", err)
	}
	renderUC := renderusecase.NewInteractor(renderSvc)

	maxAge, err := cfg.MaxAge()
	if err != nil {
		app.Close()
		return nil, err
	}
	artifacts, err := cardoutadapter.NewFSArtifactStore(cfg.Cache.Dir, logger.Named("cache"))
	if err != nil {
		app.Close()
		return nil, err
	}
	cardSvc, err := cardservice.NewCardService(
		artifacts,
		cardoutadapter.NewProgressAdapter(progressUC),
		cardoutadapter.NewRenderAdapter(renderUC, cfg.Cache.Format),
		maxAge,
		cfg.Card.DefaultCard,
		cardservice.WithClock(clk),
		cardservice.WithLogger(logger.Named("card")),
	)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("new card service: %w", err)
	}
	cardUC := cardusecase.NewInteractor(cardSvc, clk)

	app.ProgressCLI = progressinadapter.NewCLIHandler(progressUC)
	app.RenderCLI = renderinadapter.NewCLIHandler(renderUC)
	app.CardCLI = cardinadapter.NewCLIHandler(cardUC)
	app.CardHTTP = cardinadapter.NewHTTPHandler(cardUC, cardinadapter.HTTPConfig{
		StaticDir: cfg.Server.StaticDir,
		SiteURL:   cfg.Server.SiteURL,
	}, ids, logger.Named("http"))
	return app, nil
}

func (a *App) openRecordStore(cfg config.StoreConfig) (progressout.RecordStore, progressout.RecordWriter, error) {
	switch cfg.Driver {
	case "yaml":
		store, err := progressoutadapter.NewYAMLRecordStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open yaml record store: %w", err)
		}
		return store, store, nil
	default:
		store, err := progressoutadapter.NewSQLiteRecordStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite record store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, store, nil
	}
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Server.Addr,
		Handler:           a.CardHTTP.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func retryPolicy(cfg config.Config) (retry.Policy, error) {
	p := retry.DefaultPolicy()
	initial, maxDelay, err := cfg.RetryDelays()
	if err != nil {
		return retry.Policy{}, err
	}
	if n := cfg.Store.Retry.MaxAttempts; n > 0 {
		p.MaxAttempts = n
	}
	if m := cfg.Store.Retry.Multiplier; m > 0 {
		p.Multiplier = m
	}
	p.InitialDelay, p.MaxDelay = initial, maxDelay
	return p, nil
}

// Layout maps the card settings onto the default layout.
func Layout(cfg config.CardConfig) (renderdomain.Layout, error) {
	l := renderdomain.DefaultLayout()
	colors := []struct {
		key string
		raw string
		dst *renderdomain.Color
	}{
		{"card.brand_color", cfg.BrandColor, &l.Brand},
		{"card.text_color", cfg.TextColor, &l.ChipText},
		{"card.chip_color", cfg.ChipColor, &l.Chip},
		{"card.footer_color", cfg.FooterColor, &l.Footer},
	}
	for _, c := range colors {
		if c.raw == "" {
			continue
		}
		parsed, err := renderdomain.ParseHex(c.raw)
		if err != nil {
			return renderdomain.Layout{}, fmt.Errorf("%s: %w", c.key, err)
		}
		*c.dst = parsed
	}
	l.BackgroundTop = l.Brand
	l.BackgroundBottom = l.Brand.Lerp(renderdomain.Black, 0.23)

	if cfg.Width > 0 && cfg.Height > 0 {
		l.Width, l.Height = cfg.Width, cfg.Height
	}
	if cfg.RingRadius > 0 {
		l.RingCenter = renderdomain.Point{X: float64(cfg.RingCenterX), Y: float64(cfg.RingCenterY)}
		l.RingRadius = float64(cfg.RingRadius)
	}
	if cfg.Lines != nil {
		l.Lines = cfg.Lines
	}
	l.FooterText = cfg.Footer
	if cfg.LogoPath != "" {
		l.LogoPath = cfg.LogoPath
		l.LogoRect = renderdomain.Rect{Min: renderdomain.Point{X: 20, Y: 20}, Max: renderdomain.Point{X: 150, Y: 150}}
	}
	return l, l.Validate()
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Config.Cache.Dir, app.CardCLI, app.ProgressCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
