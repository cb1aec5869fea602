// Package pkg provides the core libraries for flowprof, the dataflow profile
// reporter.
//
// # Overview
//
// flowprof joins a per-operator profiling log with a topology spec that
// groups operators into named nodes, and turns the result into a report: an
// aggregated tree of nodes with their own and inherited cost, plus a layered
// drawing of the full node graph. The pkg directory is organized into four
// main areas:
//
//  1. Inputs - [logfile], [topology], [addr]
//  2. Domain - [report], [dag], [layout], [surface], [viewport]
//  3. Output - [render], [io]
//  4. Infrastructure - [pipeline], [cache], [archive], [session], [config],
//     [observability], [errors]
//
// # Architecture
//
// The typical data flow:
//
//	profile.log + ops.json
//	         ↓
//	    [logfile], [topology] packages (parse and validate)
//	         ↓
//	    [report] package (ownership, aggregation, spanning tree)
//	         ↓
//	    [layout] package (layers, ordering, geometry)
//	         ↓
//	    [render] package (HTML, JSON, SVG, DOT, PNG)
//
// [pipeline] runs these stages for the CLI and the HTTP server and caches
// the intermediate results in [cache].
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/flowprof/pkg/pipeline"
//	    "github.com/matzehuels/flowprof/pkg/render"
//	)
//
//	r, _ := pipeline.BuildReport(logData, specData, pipeline.Options{})
//	page, _ := render.Render(context.Background(), r, render.FormatHTML, render.Options{})
//
// # Main Packages
//
// [report] - The aggregation core. Every log row is claimed by at most one
// node; rows outside any node are diagnosed, never dropped silently.
//
// [layout] - Layered drawing of the topology DAG with barycenter crossing
// reduction. [surface] and [viewport] hold the interactive state shared by
// the web page, the HTTP sessions and the terminal browser.
//
// [cache] - Content-addressed caching of reports and artefacts with file,
// Redis and null backends. [archive] keeps past runs in MongoDB.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/report/...             # Specific package
//	go test -run Example                 # Examples only
package pkg
