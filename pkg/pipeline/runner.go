package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowprof/pkg/cache"
	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/observability"
	"github.com/matzehuels/flowprof/pkg/render"
	"github.com/matzehuels/flowprof/pkg/report"
)

// Runner executes the pipeline with caching. It holds no per-run state and
// is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// means cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs build → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	buildStart := time.Now()
	rep, hash, hit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Report = rep
	result.ReportHash = hash
	result.CacheInfo.BuildHit = hit
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Nodes = rep.Totals.Names
	result.Stats.Operators = rep.Totals.OperatorsInLog
	result.Stats.Mapped = rep.Totals.OperatorsMapped

	r.Logger.Info("built report",
		"nodes", rep.Totals.Names,
		"operators", rep.Totals.OperatorsInLog,
		"mapped", rep.Totals.OperatorsMapped,
		"cached", hit,
		"duration", result.Stats.BuildTime)

	layoutStart := time.Now()
	result.Layout = r.ComputeLayout(ctx, rep, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Crossings = result.Layout.Crossings

	r.Logger.Debug("computed layout",
		"layers", len(result.Layout.Layers),
		"crossings", result.Layout.Crossings,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, rep, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo returns the report, the hash of its canonical JSON
// and whether it came from the cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (*report.Report, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, "", false, err
	}
	logData, specData, err := opts.readInputs()
	if err != nil {
		return nil, "", false, err
	}

	key := r.Keyer.ReportKey(cache.Hash(logData), cache.Hash(specData),
		cache.ReportKeyOpts{SpecFormat: string(opts.SpecFormat)})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if rep, err := report.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "report")
				return rep, cache.Hash(data), true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
	}
	observability.Cache().OnCacheMiss(ctx, "report")

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.LogPath, opts.SpecPath)
	start := time.Now()
	rep, err := BuildReport(logData, specData, opts)
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		return nil, "", false, err
	}
	hooks.OnBuildComplete(ctx, rep.Totals.Names, rep.Totals.OperatorsInLog, time.Since(start), nil)

	data, err := report.Marshal(rep)
	if err != nil {
		return nil, "", false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLReport); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "report", len(data))
	}
	return rep, cache.Hash(data), false, nil
}

// Build is BuildWithCacheInfo without the cache details.
func (r *Runner) Build(ctx context.Context, opts Options) (*report.Report, error) {
	rep, _, _, err := r.BuildWithCacheInfo(ctx, opts)
	return rep, err
}

// ComputeLayout lays out the report graph. Layouts are cheap relative to
// rendering and are not cached.
func (r *Runner) ComputeLayout(ctx context.Context, rep *report.Report, opts Options) layout.Layout {
	r.applyLogger(&opts)
	if opts.Layout == (layout.Config{}) {
		opts.Layout = layout.DefaultConfig()
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(rep.Nodes))
	start := time.Now()
	l := layout.Compute(layout.InputFromReport(rep), opts.LayoutOptions()...)
	hooks.OnLayoutComplete(ctx, l.Crossings, time.Since(start), nil)
	return l
}

// RenderWithCacheInfo produces every requested format. The second result
// reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, rep *report.Report, reportHash string, opts Options) (map[render.Format][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	useCache := reportHash != "" && opts.Measurer == nil
	layoutHash := cache.HashJSON(opts.Layout)

	keyFor := func(f render.Format) string {
		return r.Keyer.ArtifactKey(reportHash, cache.ArtifactKeyOpts{
			Format:     string(f),
			Title:      opts.Title,
			Detailed:   opts.Detailed,
			LayoutHash: layoutHash,
		})
	}

	artifacts := make(map[render.Format][]byte, len(opts.Formats))
	allCached := useCache && !opts.Refresh
	hooks := observability.Pipeline()
	formats := make([]string, len(opts.Formats))
	for i, f := range opts.Formats {
		formats[i] = string(f)
	}
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()

	for _, f := range opts.Formats {
		if useCache && !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, keyFor(f)); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[f] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		data, err := render.Render(ctx, rep, f, opts.RenderOptions())
		if err != nil {
			hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
			return nil, false, fmt.Errorf("%s: %w", f, err)
		}
		artifacts[f] = data
		if useCache {
			if err := r.Cache.Set(ctx, keyFor(f), data, cache.TTLArtifact); err != nil {
				r.Logger.Warn("cache write failed", "format", f, "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}

	hooks.OnRenderComplete(ctx, formats, time.Since(start), nil)
	return artifacts, allCached, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
