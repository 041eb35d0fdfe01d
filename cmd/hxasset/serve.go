package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	hxassetecho "github.com/pthm/hxasset/adapters/echo"
	"github.com/pthm/hxasset/lib/config"
)

const defaultListen = ":8080"

// newServeCmd creates the `serve` command.
// Usage: hxasset serve [--listen addr]
func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Publish every bundle and serve them over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// maxprocs.Set only fails on an invalid GOMAXPROCS env, in
			// which case runtime defaults apply.
			_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
				opts.logger.Debug(fmt.Sprintf(format, args...))
			}))

			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			e, err := newServer(cmd.OutOrStdout(), cfg, opts.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, e, cfg.Listen, opts.logger)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides the bundle file, default "+defaultListen+")")
	return cmd
}

// newServer publishes every bundle, prints their URLs to w and returns an
// Echo instance serving all managers.
func newServer(w io.Writer, cfg *config.Config, logger *slog.Logger) (*echo.Echo, error) {
	reg, managers, err := buildRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	for _, mgr := range managers {
		hxassetecho.Mount(e,
			hxassetecho.WithManager(mgr),
			hxassetecho.WithPath(mgr.BaseURL()),
			hxassetecho.WithoutDefault(),
		)
	}

	results, err := publishBundles(cfg, reg)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Owner, r.URL, r.Dir)
	}
	return e, nil
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, e *echo.Echo, listen string, logger *slog.Logger) error {
	if listen == "" {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving assets", "addr", listen)
		errCh <- e.Start(listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
