package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowprof/pkg/dag"
	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	flowio "github.com/matzehuels/flowprof/pkg/io"
	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/render/sink"
	"github.com/matzehuels/flowprof/pkg/report"
)

// Output formats of the layout command.
const (
	layoutFormatJSON  = "layout" // layout geometry JSON
	layoutFormatSVG   = "svg"
	layoutFormatGraph = "graph" // graph JSON (see package io)
)

// layoutInput is a parsed layout command input: a report or a bare graph.
type layoutInput struct {
	report *report.Report // nil for graph input
	graph  *dag.DAG
}

func (in layoutInput) layoutInput() layout.Input {
	if in.report != nil {
		return layout.InputFromReport(in.report)
	}
	return flowio.ToInput(in.graph)
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var output, format, selected string

	cmd := &cobra.Command{
		Use:   "layout <report.json|graph.json>",
		Short: "Lay out a report or graph as layered geometry",
		Long: `Lay out a report or graph as layered geometry.

The input is either a report document ('flowprof report -f json') or a plain
graph document with "nodes" and "edges" arrays. The output is the layout JSON
(boxes, edges, layers, crossings), a standalone SVG, or the graph document
of the input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(args[0], output, format, selected)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format ext>)")
	cmd.Flags().StringVarP(&format, "format", "f", layoutFormatJSON, "output format: layout, svg, graph")
	cmd.Flags().StringVar(&selected, "select", "", "highlight this node in svg output")

	return cmd
}

func (c *CLI) runLayout(input, output, format, selected string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return flowerrors.Wrap(flowerrors.ErrCodeInvalidPath, err, "read %s", input)
	}
	in, err := parseLayoutInput(data)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	prog := newProgress(c.Logger)
	out, ext, err := c.renderLayout(in, format, selected)
	if err != nil {
		return err
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + ext
	}
	if err := writeOutput(output, out); err != nil {
		return err
	}
	prog.done("Laid out " + filepath.Base(input))
	printFile(output)
	return nil
}

func (c *CLI) renderLayout(in layoutInput, format, selected string) ([]byte, string, error) {
	opts := []layout.Option{layout.WithConfig(c.config().Layout), layout.WithLogger(c.Logger)}

	switch format {
	case layoutFormatJSON:
		l := layout.Compute(in.layoutInput(), opts...)
		data, err := sink.RenderJSON(l)
		return data, "layout.json", err

	case layoutFormatSVG:
		l := layout.Compute(in.layoutInput(), opts...)
		svgOpts := []sink.SVGOption{sink.WithStyles(), sink.WithSelected(selected)}
		if in.report != nil {
			svgOpts = append(svgOpts, sink.WithReport(in.report))
		}
		return sink.RenderSVG(l, svgOpts...), "svg", nil

	case layoutFormatGraph:
		g := in.graph
		if g == nil {
			g = flowio.FromReport(in.report)
		}
		var buf bytes.Buffer
		if err := flowio.WriteJSON(g, &buf); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "graph.json", nil
	}
	return nil, "", flowerrors.New(flowerrors.ErrCodeUnsupported, "layout format %q (want layout, svg or graph)", format)
}

// parseLayoutInput tells the two documents apart by their "nodes" member:
// an object keyed by name in a report, an array in a graph.
func parseLayoutInput(data []byte) (layoutInput, error) {
	var probe struct {
		Nodes json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return layoutInput{}, flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "decode input")
	}
	switch first := firstByte(probe.Nodes); first {
	case '{':
		r, err := report.Unmarshal(data)
		if err != nil {
			return layoutInput{}, err
		}
		return layoutInput{report: r}, nil
	case '[':
		g, err := flowio.ReadJSON(bytes.NewReader(data))
		if err != nil {
			return layoutInput{}, err
		}
		return layoutInput{graph: g}, nil
	}
	return layoutInput{}, flowerrors.New(flowerrors.ErrCodeInvalidInput, `input has no "nodes" object or array`)
}

func firstByte(raw json.RawMessage) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
