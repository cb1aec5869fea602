package render

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/layout"
	reporthtml "github.com/matzehuels/flowprof/pkg/render/html"
	"github.com/matzehuels/flowprof/pkg/render/nodelink"
	"github.com/matzehuels/flowprof/pkg/render/sink"
	"github.com/matzehuels/flowprof/pkg/report"
)

// Format names an output artefact.
type Format string

const (
	FormatHTML   Format = "html"
	FormatJSON   Format = "json"
	FormatLayout Format = "layout"
	FormatSVG    Format = "svg"
	FormatDOT    Format = "dot"
	FormatPNG    Format = "png"
)

var allFormats = []Format{FormatHTML, FormatJSON, FormatLayout, FormatSVG, FormatDOT, FormatPNG}

// Formats returns every supported format in a stable order.
func Formats() []Format { return slices.Clone(allFormats) }

// Ext returns the file extension (without dot) for f.
func (f Format) Ext() string {
	if f == FormatLayout {
		return "layout.json"
	}
	return string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON, FormatLayout:
		return "application/json"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseFormat validates a single format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(allFormats, f) {
		return "", flowerrors.New(flowerrors.ErrCodeInvalidInput,
			"invalid format: %s (must be one of %s)", s, joinFormats(allFormats))
	}
	return f, nil
}

// ParseFormats parses a comma-separated list. Empty entries are skipped and
// duplicates collapse; an empty list yields html.
func ParseFormats(csv string) ([]Format, error) {
	var out []Format
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = []Format{FormatHTML}
	}
	return out, nil
}

func joinFormats(fs []Format) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

// Options configures Render.
type Options struct {
	Title    string          // html page title
	Layout   layout.Config   // zero value means layout.DefaultConfig
	Measurer layout.Measurer // nil means the embedded Go font
	Detailed bool            // dot/png: include names and self time in labels
	Logger   *log.Logger
}

func (o Options) layoutOptions() []layout.Option {
	cfg := o.Layout
	if cfg == (layout.Config{}) {
		cfg = layout.DefaultConfig()
	}
	opts := []layout.Option{layout.WithConfig(cfg)}
	if o.Measurer != nil {
		opts = append(opts, layout.WithMeasurer(o.Measurer))
	}
	if o.Logger != nil {
		opts = append(opts, layout.WithLogger(o.Logger))
	}
	return opts
}

// Render produces r in format f.
func Render(ctx context.Context, r *report.Report, f Format, opts Options) ([]byte, error) {
	if r == nil {
		return nil, flowerrors.New(flowerrors.ErrCodeInvalidInput, "nil report")
	}
	switch f {
	case FormatHTML:
		return reporthtml.RenderBytes(r, reporthtml.Options{Title: opts.Title, Layout: opts.layoutOptions()})
	case FormatJSON:
		return report.MarshalIndent(r)
	case FormatLayout:
		return sink.RenderJSON(computeLayout(r, opts))
	case FormatSVG:
		return sink.RenderSVG(computeLayout(r, opts), sink.WithReport(r), sink.WithStyles()), nil
	case FormatDOT:
		return []byte(nodelink.FromReport(r, dotOptions(opts))), nil
	case FormatPNG:
		return nodelink.RenderPNG(ctx, nodelink.FromReport(r, dotOptions(opts)))
	default:
		return nil, flowerrors.New(flowerrors.ErrCodeUnsupported, "unsupported format: %s", f)
	}
}

func computeLayout(r *report.Report, opts Options) layout.Layout {
	return layout.Compute(layout.InputFromReport(r), opts.layoutOptions()...)
}

func dotOptions(opts Options) nodelink.Options {
	cfg := opts.Layout
	if cfg == (layout.Config{}) {
		cfg = layout.DefaultConfig()
	}
	return nodelink.Options{Detailed: opts.Detailed, Colors: &cfg}
}
