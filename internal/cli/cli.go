// Package cli implements the flowprof command-line interface.
//
// The commands turn a profile log plus a topology spec into reports and
// serve them interactively:
//   - report: build the report and write html, json, layout, svg, dot or png
//   - layout: lay out a report or graph JSON file
//   - browse: explore a report in the terminal
//   - serve: HTTP surface with per-client sessions and Prometheus metrics
//   - archive: list and re-render archived reports
//   - cache: inspect and clear the build cache
//
// Settings come from the TOML config file (see package config), FLOWPROF_*
// environment variables and flags, in increasing priority.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowprof/pkg/archive"
	"github.com/matzehuels/flowprof/pkg/buildinfo"
	"github.com/matzehuels/flowprof/pkg/cache"
	"github.com/matzehuels/flowprof/pkg/config"
	"github.com/matzehuels/flowprof/pkg/pipeline"
	"github.com/matzehuels/flowprof/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "flowprof"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "flowprof turns dataflow profile logs into navigable reports",
		Long:          `flowprof joins a per-operator profile log with the topology spec of a dataflow program and produces reports: a collapsible tree of self times, operator tables, rule plans and a layered graph of the topology.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/flowprof/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.reportCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.archiveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend)
	return nil
}

// config returns the loaded settings, or the defaults when no command
// pre-run has happened (as in unit tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		cfg := config.Default()
		c.cfg = &cfg
	}
	return c.cfg
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, c.config().Cache.Keyer(), c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc, err := cache.Open(ctx, c.config().Cache.Options())
	if err != nil {
		// A broken cache never blocks a report.
		c.Logger.Warn("cache unavailable, continuing without", "backend", c.config().Cache.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return cc, nil
}

// openArchive connects to the configured archive. It fails when no archive
// URI is configured.
func (c *CLI) openArchive(ctx context.Context) (archive.Store, error) {
	cfg := c.config().Archive
	if cfg.MongoURI == "" {
		return nil, errNoArchive
	}
	sp := newSpinnerWithContext(ctx, "Connecting to archive...")
	sp.Start()
	store, err := archive.NewMongo(ctx, archive.MongoConfig{URI: cfg.MongoURI, Database: cfg.Database})
	sp.Stop()
	if err != nil {
		return nil, err
	}
	return store, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns pipeline options seeded from the config file.
func (c *CLI) baseOptions() (pipeline.Options, error) {
	cfg := c.config()
	formats, err := render.ParseFormats(strings.Join(cfg.Report.Formats, ","))
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("config report.formats: %w", err)
	}
	return pipeline.Options{
		Title:   cfg.Report.Title,
		Layout:  cfg.Layout,
		Formats: formats,
		Logger:  c.Logger,
	}, nil
}
