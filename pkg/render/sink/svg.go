package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/report"
	"github.com/matzehuels/flowprof/pkg/viewport"
)

// GraphCSS styles the graph markup. It is embedded by [WithStyles] and by
// the HTML report.
const GraphCSS = `
  .g-edge { stroke: #999; stroke-width: 1.4; fill: none; pointer-events: none; }
  .g-node rect { rx: 6; ry: 6; stroke: #5570d4; stroke-width: 1; }
  .g-node text { font-size: 12px; fill: #111; pointer-events: none; }
  .g-node.selected rect { stroke: #111; stroke-width: 2; }`

// SVGID is the id of the root svg element; the HTML page script finds the
// graph by it.
const SVGID = "graphSvg"

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	report    *report.Report
	selected  string
	transform viewport.Transform
	styles    bool
}

// WithReport adds each node's self activation count to its tooltip.
func WithReport(r *report.Report) SVGOption { return func(s *svgRenderer) { s.report = r } }

// WithSelected highlights the node with the given name.
func WithSelected(name string) SVGOption { return func(s *svgRenderer) { s.selected = name } }

// WithStyles embeds a stylesheet so the SVG renders on its own, outside the
// HTML page.
func WithStyles() SVGOption { return func(s *svgRenderer) { s.styles = true } }

// WithTransform sets the viewport transform. The default is the identity.
func WithTransform(t viewport.Transform) SVGOption {
	return func(s *svgRenderer) { s.transform = t }
}

// RenderSVG draws l. Edges are drawn before nodes so boxes cover them.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{transform: viewport.Identity()}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" id="%s" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		SVGID, num(l.Width), num(l.Height), num(l.Width), num(l.Height))
	if r.styles {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", GraphCSS)
	}

	fmt.Fprintf(&buf, `  <g id="viewport" transform="%s">`+"\n", r.transform.SVG())
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, `    <path class="g-edge" d="%s" />`+"\n", e.Path())
	}
	for _, b := range l.Boxes {
		r.renderNode(&buf, l, b)
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderNode(buf *bytes.Buffer, l layout.Layout, b layout.Box) {
	class := "g-node"
	if b.Name == r.selected {
		class += " selected"
	}
	half := num(b.Width / 2)

	fmt.Fprintf(buf, `    <g class="%s" data-name="%s" transform="translate(%s, %s)">`+"\n",
		class, EscapeXML(b.Name), num(b.X), num(b.Y))
	fmt.Fprintf(buf, `      <rect width="%s" height="%s" fill="%s"></rect>`+"\n",
		num(b.Width), num(b.Height), b.Fill)

	fmt.Fprintf(buf, `      <text x="%s" y="%s" text-anchor="middle">`, half, num(l.TextTop))
	for i, line := range b.Lines {
		dy := 0.0
		if i > 0 {
			dy = l.LineHeight
		}
		fmt.Fprintf(buf, `<tspan x="%s" dy="%s">%s</tspan>`, half, num(dy), EscapeXML(line))
	}
	buf.WriteString("</text>\n")

	fmt.Fprintf(buf, "      <title>%s</title>\n", r.tooltip(b))
	buf.WriteString("    </g>\n")
}

// tooltip returns the escaped title text of a node.
func (r *svgRenderer) tooltip(b layout.Box) string {
	text := EscapeXML(b.Label) + "\nself_ms: " + report.FormatMs(b.Weight)
	if r.report != nil {
		if n, ok := r.report.Nodes[b.Name]; ok {
			text += fmt.Sprintf("\nactivations: %d", n.SelfActivations)
		}
	}
	return text
}

// EscapeXML escapes s for use in XML text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func num(v float64) string { return layout.FormatNum(v) }
