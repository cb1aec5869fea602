// Package pipeline runs the profile → report → layout → render pipeline.
//
// The CLI, the file watcher and the HTTP server all drive the same
// [Runner], so caching, logging and metrics behave identically whichever
// entry point is used.
//
// # Stages
//
//  1. Build: parse the profile log and the topology spec, aggregate
//     operator measurements and resolve the node hierarchy
//  2. Layout: compute the layered graph geometry
//  3. Render: produce the requested formats (html, json, layout, svg, dot, png)
//
// Build results and artefacts are cached by content hash, so rerunning on
// unchanged inputs is a lookup.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    LogPath:  "profile.log",
//	    SpecPath: "ops.json",
//	    Formats:  []render.Format{render.FormatHTML},
//	})
//	if err != nil {
//	    return err
//	}
//	page := result.Artifacts[render.FormatHTML]
package pipeline

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/render"
	"github.com/matzehuels/flowprof/pkg/report"
	"github.com/matzehuels/flowprof/pkg/topology"
)

// DefaultFormats is used when Options.Formats is empty.
var DefaultFormats = []render.Format{render.FormatHTML}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Inputs. Data fields take precedence over paths; paths still name the
	// inputs in messages.
	LogPath    string          `json:"log_path,omitempty"`
	SpecPath   string          `json:"spec_path,omitempty"`
	LogData    []byte          `json:"-"`
	SpecData   []byte          `json:"-"`
	SpecFormat topology.Format `json:"spec_format,omitempty"` // default from SpecPath extension

	// Rendering
	Formats  []render.Format `json:"formats,omitempty"`
	Title    string          `json:"title,omitempty"`
	Layout   layout.Config   `json:"layout"`
	Detailed bool            `json:"detailed,omitempty"`

	// Refresh skips cache lookups but still writes results.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Measurer layout.Measurer `json:"-"` // custom measurers bypass the artefact cache
	Logger   *log.Logger     `json:"-"`

	validated bool
}

// Result holds the outputs of a pipeline run.
type Result struct {
	Report *report.Report

	// ReportHash is the SHA-256 of the report's canonical JSON.
	ReportHash string

	Layout    layout.Layout
	Artifacts map[render.Format][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds sizes and timings of a run.
type Stats struct {
	Nodes      int
	Operators  int
	Mapped     int
	Crossings  int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	BuildHit  bool
	RenderHit bool // all requested artefacts came from the cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks inputs and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks that both inputs are present.
func (o *Options) ValidateForBuild() error {
	if o.LogPath == "" && o.LogData == nil {
		return flowerrors.New(flowerrors.ErrCodeInvalidInput, "profile log is required")
	}
	if o.SpecPath == "" && o.SpecData == nil {
		return flowerrors.New(flowerrors.ErrCodeInvalidInput, "topology spec is required")
	}
	if o.SpecFormat == "" {
		o.SpecFormat = topology.FormatFromPath(o.SpecPath)
	}
	switch o.SpecFormat {
	case topology.FormatJSON, topology.FormatYAML:
	default:
		return flowerrors.New(flowerrors.ErrCodeUnsupported, "unsupported spec format %q", o.SpecFormat)
	}
	o.setLogger()
	return nil
}

// ValidateForRender applies layout and format defaults and validates them.
func (o *Options) ValidateForRender() error {
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.DefaultConfig()
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = append([]render.Format(nil), DefaultFormats...)
	}
	for _, f := range o.Formats {
		if _, err := render.ParseFormat(string(f)); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// RenderOptions converts o to render options.
func (o *Options) RenderOptions() render.Options {
	return render.Options{
		Title:    o.Title,
		Layout:   o.Layout,
		Measurer: o.Measurer,
		Detailed: o.Detailed,
		Logger:   o.Logger,
	}
}

// LayoutOptions returns the options for layout.Compute.
func (o *Options) LayoutOptions() []layout.Option {
	opts := []layout.Option{layout.WithConfig(o.Layout), layout.WithLogger(o.Logger)}
	if o.Measurer != nil {
		opts = append(opts, layout.WithMeasurer(o.Measurer))
	}
	return opts
}

// readInputs returns the log and spec bytes.
func (o *Options) readInputs() (logData, specData []byte, err error) {
	logData = o.LogData
	if logData == nil {
		if logData, err = os.ReadFile(o.LogPath); err != nil {
			return nil, nil, flowerrors.Wrap(flowerrors.ErrCodeInvalidPath, err, "read profile log")
		}
	}
	specData = o.SpecData
	if specData == nil {
		if specData, err = os.ReadFile(o.SpecPath); err != nil {
			return nil, nil, flowerrors.Wrap(flowerrors.ErrCodeInvalidPath, err, "read topology spec")
		}
	}
	return logData, specData, nil
}

func (o *Options) logSource() string {
	if o.LogPath != "" {
		return o.LogPath
	}
	return "<log>"
}
