package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rubiojr/hackfinder/pkg/api"
	"github.com/rubiojr/hackfinder/pkg/config"
	"github.com/rubiojr/hackfinder/pkg/ingest"
	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/metrics"
	"github.com/rubiojr/hackfinder/pkg/realtime"
	"github.com/rubiojr/hackfinder/pkg/storage"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 30 * time.Second

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web server with the JSON API, the web UI and live sessions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides web.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides web.port)",
			},
			&cli.DurationFlag{
				Name:  "optimize-interval",
				Usage: "How often to optimize the index (0 disables)",
				Value: time.Hour,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if h := c.String("host"); h != "" {
				cfg.Web.Host = h
			}
			if p := c.Int("port"); p != 0 {
				cfg.Web.Port = p
			}
			return serve(ctx, cfg, c.Duration("optimize-interval"))
		},
	}
}

// serve runs the HTTP server, the drop directory watcher and periodic
// index optimization until SIGINT or SIGTERM.
func serve(ctx context.Context, cfg *config.Config, optimizeInterval time.Duration) error {
	logger := log.ForService("serve")

	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := idx.Close(); err != nil {
			logger.Warnf("failed to close index: %v", err)
		}
	}()

	hub := realtime.NewHub(0)
	importer := ingest.NewImporter(idx, ingest.WithHub(hub))

	var apiOpts []api.Option
	if cfg.Import.APIKey != "" {
		apiOpts = append(apiOpts, api.WithImporter(importer, cfg.Import.APIKey))
	}

	mux := http.NewServeMux()
	api.NewServer(idx, apiOpts...).RegisterRoutes(mux)
	newWebServer(idx, cfg, hub).RegisterRoutes(mux)

	addr := cfg.WebAddr()
	server := &http.Server{
		Addr:              addr,
		Handler:           metrics.Middleware(api.CorsMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("starting web server on http://%s", displayAddr(cfg))
		logger.Infof("available endpoints:")
		logger.Infof("  GET  / - search page (live updates over /live)")
		logger.Infof("  GET  /hack/{id} - a hack and similar hacks")
		logger.Infof("  GET  /api/search?query=&page=&page_size= - text search")
		logger.Infof("  GET  /api/categories[/{name}] - top categories, category browsing")
		logger.Infof("  GET  /api/hacks/{id}[/similar] - a hack, similar hacks")
		logger.Infof("  GET  /api/stats, /health, /metrics")
		if cfg.Import.APIKey != "" {
			logger.Infof("  POST /api/hacks - import hacks (bearer token)")
		}
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("shutting down web server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Import.WatchDir != "" {
		watcher := ingest.NewWatcher(cfg.Import.WatchDir, importer, ingest.DefaultSettle)
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	if optimizeInterval > 0 {
		g.Go(func() error {
			runOptimization(gctx, idx, optimizeInterval)
			return nil
		})
	}

	return g.Wait()
}

// runOptimization optimizes the index every interval until ctx is done.
func runOptimization(ctx context.Context, idx *storage.Index, interval time.Duration) {
	logger := log.ForService("serve")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Debugf("running index optimization")
			if err := idx.Optimize(ctx); err != nil {
				logger.Warnf("index optimization failed: %v", err)
			}
		}
	}
}

func displayAddr(cfg *config.Config) string {
	host := cfg.Web.Host
	if host == "" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(cfg.Web.Port))
}
