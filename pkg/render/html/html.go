// Package html renders a report as a single self-contained HTML page.
//
// The page embeds the report JSON, the pre-computed graph drawing and a
// small script that handles tree expansion, search, selection and the
// graph viewport in the browser. The first frame is rendered on the server
// from the initial surface state, so the page reads correctly before the
// script runs.
package html

import (
	"bytes"
	"html/template"
	"io"
	"strings"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/render/sink"
	"github.com/matzehuels/flowprof/pkg/report"
	"github.com/matzehuels/flowprof/pkg/surface"
)

// DefaultTitle is the page title when Options.Title is empty.
const DefaultTitle = "FlowLog Profiler"

// Options configures the page.
type Options struct {
	Title  string
	Layout []layout.Option // passed to layout.Compute for the graph tab
}

type pageData struct {
	Title    string
	PageCSS  template.CSS
	GraphCSS template.CSS
	Summary  []surface.Pill
	Tree     []surface.Row
	Detail   *surface.Detail
	Rules    []report.RuleView
	GraphSVG template.HTML
	DataJSON template.JS
	Script   template.JS
}

var funcMap = template.FuncMap{
	"indent": func(depth int) int { return depth * 16 },
	"join":   func(s []string) string { return strings.Join(s, ", ") },
	"hasOps": func(d *surface.Detail) bool { return d != nil && len(d.Operators) > 0 },
}

var page = template.Must(template.New("page").Funcs(funcMap).Parse(tmplPage))

// Render writes the page for r to w.
func Render(w io.Writer, r *report.Report, opts Options) error {
	data, err := buildPageData(r, opts)
	if err != nil {
		return err
	}
	if err := page.ExecuteTemplate(w, "page", data); err != nil {
		return flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "execute page template")
	}
	return nil
}

// RenderBytes is Render into a byte slice.
func RenderBytes(r *report.Report, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, r, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildPageData(r *report.Report, opts Options) (pageData, error) {
	raw, err := report.Marshal(r)
	if err != nil {
		return pageData{}, err
	}

	state := surface.Initial(r)
	frame := surface.Render(state, r)
	l := layout.Compute(layout.InputFromReport(r), opts.Layout...)
	svg := sink.RenderSVG(l, sink.WithReport(r), sink.WithSelected(state.Selected))

	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	// Marshalled JSON escapes <, > and & so it cannot close the script tag.
	return pageData{
		Title:    title,
		PageCSS:  template.CSS(pageCSS),
		GraphCSS: template.CSS(sink.GraphCSS),
		Summary:  frame.Summary,
		Tree:     frame.Tree,
		Detail:   frame.Detail,
		Rules:    r.Rules,
		GraphSVG: template.HTML(svg),
		DataJSON: template.JS(raw),
		Script:   template.JS(appJS),
	}, nil
}
