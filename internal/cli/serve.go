package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowprof/pkg/observability"
	"github.com/matzehuels/flowprof/pkg/session"
)

const (
	shutdownTimeout = 5 * time.Second
	sessionSweep    = 10 * time.Minute
)

type serveOpts struct {
	addr        string
	sessionsDir string
	noCache     bool
	watch       bool
	archive     bool
}

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve <profile.log> <ops.json>",
		Short: "Serve a report over HTTP",
		Long: `Serve a report over HTTP.

  GET  /                              html report
  GET  /api/report                    report JSON
  GET  /api/layout                    layout JSON
  GET  /api/graph.svg?selected=NAME   graph SVG
  POST /api/sessions                  new interactive session
  GET  /api/sessions/{id}             session state and rendered frame
  POST /api/sessions/{id}/events      apply an event, returns the new frame
  GET  /api/sessions/{id}/graph.svg   graph with the session's selection and view
  GET  /api/archive[/{id}]            archived runs (with --archive)
  GET  /metrics                       Prometheus metrics`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&opts.sessionsDir, "sessions-dir", "", "persist sessions as files in this directory")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload the report whenever an input changes")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "expose the configured archive under /api/archive")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, logPath, specPath string, opts serveOpts) error {
	cfg := c.config()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewPrometheus(reg)
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	popts, err := c.baseOptions()
	if err != nil {
		return err
	}
	popts.LogPath, popts.SpecPath = logPath, specPath

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := &server{
		logger:  c.Logger,
		title:   popts.Title,
		layout:  cfg.Layout,
		ttl:     cfg.Server.SessionTTL,
		metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	if srv.ttl == 0 {
		srv.ttl = session.DefaultTTL
	}
	if srv.sessions, err = openSessions(opts.sessionsDir); err != nil {
		return err
	}
	if opts.archive {
		store, err := c.openArchive(ctx)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())
		srv.archive = store
	}

	reload := func(ctx context.Context) error {
		rep, err := runner.Build(ctx, popts)
		if err != nil {
			return err
		}
		return srv.setReport(ctx, rep)
	}
	if err := reload(ctx); err != nil {
		return err
	}

	if opts.watch {
		go func() {
			err := watchFiles(ctx, []string{logPath, specPath}, watchDebounce, c.Logger, func(ctx context.Context) error {
				prog := newProgress(c.Logger)
				if err := reload(ctx); err != nil {
					return err
				}
				prog.done("Reloaded report")
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				c.Logger.Error("watcher stopped", "err", err)
			}
		}()
	}
	go sweepSessions(ctx, srv.sessions, sessionSweep, c.Logger)

	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	return c.listen(ctx, addr, srv.routes())
}

func openSessions(dir string) (session.Store, error) {
	if dir == "" {
		return session.NewMemoryStore(), nil
	}
	return session.NewFileStore(dir)
}

// sweepSessions drops expired sessions every interval until ctx ends.
func sweepSessions(ctx context.Context, store session.Store, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}

// listen serves h on addr until ctx ends, then shuts down gracefully.
func (c *CLI) listen(ctx context.Context, addr string, h http.Handler) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- hs.ListenAndServe()
	}()
	printSuccess("Serving on http://%s", addr)
	c.Logger.Info("server started", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	c.Logger.Info("shutting down")
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
