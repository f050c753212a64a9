package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerviz/viewrouter/internal/app"
	"github.com/nerviz/viewrouter/internal/config"
	"github.com/nerviz/viewrouter/internal/errors"
	"github.com/nerviz/viewrouter/pkg/middleware"
	"github.com/nerviz/viewrouter/pkg/router"
	"github.com/nerviz/viewrouter/pkg/shell"
	"github.com/nerviz/viewrouter/pkg/static"
	"github.com/nerviz/viewrouter/pkg/views"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd(load configLoader) *cobra.Command {
	var (
		port int
		host string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the application server",
		Long: `Start the HTTP server.

The server answers every application path with the page shell and
drives navigation over a WebSocket. Assets are served from the
configured directory or S3 bucket.

Examples:
  viewrouter serve
  viewrouter serve --port=9000 --history=hash
  VIEWROUTER_LOG_LEVEL=debug viewrouter serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if mode != "" {
				cfg.History = mode
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, os.Stderr)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from viewrouter.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from viewrouter.json)")
	cmd.Flags().StringVar(&mode, "history", "", "History mode: web or hash (default from viewrouter.json)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	logger := cfg.NewLogger(logOut)

	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	success("Serving %s (%s history)", cfg.Name, cfg.History)
	info("http://%s", cfg.Address())

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		return errors.New("R302").Wrap(err)
	}
	return nil
}

// newServer builds the shell for cfg. It does not listen.
func newServer(cfg *config.Config, logger *slog.Logger) (*shell.Server, error) {
	mode, err := cfg.HistoryMode()
	if err != nil {
		return nil, errors.New("R103").Wrap(err)
	}
	table, err := router.Compile(cfg.RouteTable())
	if err != nil {
		return nil, errors.FromRouter(err)
	}

	opts := shell.Options{
		Name:        cfg.Name,
		Mode:        mode,
		Table:       table,
		Views:       app.Views(app.Info{Name: cfg.Name, History: mode.String(), Routes: table.Entries()}),
		Assets:      assetSource(cfg),
		AssetPrefix: cfg.Assets.Prefix,
		AssetCache:  static.CacheProduction,
		MetricsPath: cfg.Metrics.Path,
		Tracing:     cfg.Tracing.Enabled,
		TracerName:  cfg.Tracing.TracerName,
		Address:     cfg.Address(),
		Logger:      logger,
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts.Metrics = middleware.NewMetrics(
			middleware.WithRegistry(reg),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)
		opts.Gatherer = reg
	}

	srv, err := shell.New(opts)
	if err != nil {
		if stderrors.Is(err, views.ErrUnknownView) {
			return nil, errors.New("R109").
				WithDetail(err.Error()).
				WithSuggestion(fmt.Sprintf("Registered views: %v", opts.Views.Handles())).
				Wrap(err)
		}
		return nil, errors.FromRouter(err)
	}
	return srv, nil
}

// assetSource returns the configured asset source, or nil when none is set.
func assetSource(cfg *config.Config) static.Source {
	if s3cfg := cfg.Assets.S3; s3cfg != nil {
		client := static.NewS3Client(static.S3Config{
			Bucket:    s3cfg.Bucket,
			Prefix:    s3cfg.Prefix,
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			PathStyle: s3cfg.PathStyle,
		})
		return static.NewS3(client, s3cfg.Bucket, s3cfg.Prefix)
	}
	if dir := cfg.AssetsPath(); dir != "" {
		return static.NewDir(os.DirFS(dir))
	}
	return nil
}
