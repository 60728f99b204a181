package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"progresscard/internal/bootstrap"
	"progresscard/internal/platform/config"
	"progresscard/internal/platform/logging"
	"progresscard/internal/ui/theme"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "progresscard",
		Short:         "Render and serve shareable progress cards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "progresscard.yaml", "config file (missing file keeps defaults)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newCardCmd(&configPath))
	root.AddCommand(newProgressCmd(&configPath))
	root.AddCommand(newRenderCmd(&configPath))
	root.AddCommand(newCacheCmd(&configPath))
	root.AddCommand(newSeedCmd(&configPath))
	root.AddCommand(newTUICmd(&configPath))
	return root
}

func loadApp(configPath string) (*bootstrap.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, logger)
}

func closeApp(app *bootstrap.App) {
	if err := app.Close(); err != nil {
		app.Logger.Warn("close failed", zap.Error(err))
	}
	_ = app.Logger.Sync()
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve card images and share pages over HTTP",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer closeApp(app)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx)
		},
	}
}

func newCardCmd(configPath *string) *cobra.Command {
	var refresh, asJSON bool
	cmd := &cobra.Command{
		Use:   "card <uid>",
		Short: "Return the cached card for a user, rendering it when stale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer closeApp(app)
			out, err := app.CardCLI.Card(cmd.Context(), args[0], refresh)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			if out.Default {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: no progress, default card %s\n", args[0], out.Filename)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (generated %s)\n",
				args[0], out.Filename, out.GeneratedAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-render even when the cached card is fresh")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the HTTP API body")
	return cmd
}

func newProgressCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <uid>",
		Short: "Show a user's completion progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer closeApp(app)
			out, err := app.ProgressCLI.Progress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d %%  (%d answered, ratio %.4f)\n",
				out.DisplayName, theme.Gauge(out.Percent, 30), out.Percent, out.Answered, out.Ratio)
			return nil
		},
	}
}

func newRenderCmd(configPath *string) *cobra.Command {
	var name, out string
	var ratio float64
	var planOnly bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a card for arbitrary inputs without touching the cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer closeApp(app)
			if planOnly {
				plan, err := app.RenderCLI.Plan(cmd.Context(), name, ratio)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), plan)
				return nil
			}
			if out == "" {
				return fmt.Errorf("--out is required unless --plan is set")
			}
			res, err := app.RenderCLI.RenderToFile(cmd.Context(), name, ratio, out)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d bytes)\n", out, res.ContentType, len(res.Data))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().Float64Var(&ratio, "ratio", 0, "completion ratio, 0.5 means 50 %")
	cmd.Flags().StringVar(&out, "out", "", "output file; the extension picks the format (png, svg)")
	cmd.Flags().BoolVar(&planOnly, "plan", false, "print the drawing plan as JSON instead of rendering")
	return cmd
}

func newCacheCmd(configPath *string) *cobra.Command {
	cache := &cobra.Command{Use: "cache", Short: "Inspect and prune the card cache"}

	cache.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer closeApp(app)
			artifacts, err := app.CardCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(artifacts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no cached cards")
				return nil
			}
			for _, a := range artifacts {
				state := theme.Fresh.Render("fresh")
				if a.Stale {
					state = theme.Stale.Render("stale")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-36s %s %s\n",
					a.UserID, a.Filename, a.GeneratedAt.Format(time.RFC3339), state)
			}
			return nil
		},
	})

	cache.AddCommand(&cobra.Command{
		Use:   "evict [uid]",
		Short: "Delete superseded artifacts, for one user or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer closeApp(app)
			uid := ""
			if len(args) == 1 {
				uid = args[0]
			}
			results, err := app.CardCLI.Evict(cmd.Context(), uid)
			if err != nil {
				return err
			}
			removed := 0
			for _, r := range results {
				removed += len(r.Removed)
				for _, name := range r.Removed {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s (kept %s)\n", name, r.Kept)
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d artifact(s) removed\n", removed)
			return nil
		},
	})
	return cache
}

func newSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load a record fixture into the progress store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer closeApp(app)
			out, err := app.ProgressCLI.SeedFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d document(s)\n", out.Documents)
			return nil
		},
	}
}

func newTUICmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the card cache in a terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			// Log lines would tear the alternate screen.
			app, err := bootstrap.New(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			defer closeApp(app)
			return bootstrap.RunTUI(app)
		},
	}
}
