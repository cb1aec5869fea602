// Package render turns a profile report into its output artefacts.
//
// # Overview
//
// A report can be written in several formats:
//
//   - html: the self-contained interactive page (in [html] subpackage)
//   - json: the report document itself
//   - layout: the computed graph layout as JSON
//   - svg: the layered graph drawing (in [sink] subpackage)
//   - dot, png: Graphviz node-link diagrams (in [nodelink] subpackage)
//
// [Render] dispatches on a [Format] so the CLI, the watcher and the HTTP
// server share one code path:
//
//	data, err := render.Render(ctx, rep, render.FormatSVG, render.Options{})
//
// [html]: github.com/matzehuels/flowprof/pkg/render/html
// [sink]: github.com/matzehuels/flowprof/pkg/render/sink
// [nodelink]: github.com/matzehuels/flowprof/pkg/render/nodelink
package render
