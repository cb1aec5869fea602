// Package nodelink renders topologies as Graphviz node-link diagrams.
//
// # Overview
//
// The layered layout in package layout is the primary drawing. This package
// is an export path for users who want the graph in Graphviz: DOT source
// for their own tooling, or SVG and PNG rendered in-process.
//
// # Usage
//
//	dot := nodelink.FromReport(rep, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Boxes are filled on the same cold-to-hot scale as the layered layout,
// driven by each node's self active time.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which bundles Graphviz
// as WebAssembly, so no system installation is needed.
package nodelink
