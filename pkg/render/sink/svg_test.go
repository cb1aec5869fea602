package sink

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/report"
	"github.com/matzehuels/flowprof/pkg/viewport"
)

func sampleLayout() layout.Layout {
	in := layout.Input{
		Names:    []string{"1", "2"},
		Children: map[string][]string{"1": {"2"}},
		Labels:   map[string]string{"1": "scan <orders>", "2": "filter & project rows"},
		Weights:  map[string]float64{"1": 1, "2": 2.5},
	}
	return layout.Compute(in, layout.WithMeasurer(layout.FixedMeasurer(7)))
}

func TestRenderSVG(t *testing.T) {
	rep := &report.Report{Nodes: map[string]report.NodeView{
		"1": {Name: "1", SelfActivations: 3},
	}}
	out := string(RenderSVG(sampleLayout(),
		WithReport(rep),
		WithSelected("2"),
		WithTransform(viewport.Transform{TX: 10, TY: 5, Scale: 2}),
	))

	mustContain := []string{
		`viewBox="0 0 960 320"`,
		`<g id="viewport" transform="translate(10 5) scale(2)">`,
		`<path class="g-edge" d="M 480 58 L 480 100 L 480 100 L 480 142" />`,
		`<g class="g-node" data-name="1" transform="translate(410, 22)">`,
		`<g class="g-node selected" data-name="2"`,
		`<tspan x="70" dy="0">scan &lt;orders&gt;</tspan>`,
		`<title>scan &lt;orders&gt;` + "\n" + `self_ms: 1.000` + "\n" + `activations: 3</title>`,
		`fill="rgb(91,141,239)"`,
	}
	for _, s := range mustContain {
		if !strings.Contains(out, s) {
			t.Errorf("svg missing %q\n%s", s, out)
		}
	}
	if strings.Contains(out, "<style>") {
		t.Error("styles embedded without WithStyles")
	}

	// node 2 has no report entry: no activations line
	if strings.Contains(out, "rows\nself_ms: 2.500\nactivations") {
		t.Error("activations rendered for unknown node")
	}
}

func TestRenderSVG_WellFormed(t *testing.T) {
	out := RenderSVG(sampleLayout(), WithStyles())
	dec := xml.NewDecoder(strings.NewReader(string(out)))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			t.Fatalf("invalid XML: %v", err)
		}
	}
}

func TestRenderSVG_WrappedLines(t *testing.T) {
	in := layout.Input{
		Names:  []string{"n"},
		Labels: map[string]string{"n": strings.Repeat("word ", 20)},
	}
	l := layout.Compute(in, layout.WithMeasurer(layout.FixedMeasurer(10)))
	out := string(RenderSVG(l))
	if n := strings.Count(out, "<tspan"); n != len(l.Boxes[0].Lines) || n < 2 {
		t.Errorf("got %d tspans for %d lines", n, len(l.Boxes[0].Lines))
	}
	if !strings.Contains(out, `dy="16"`) {
		t.Error("continuation lines missing line height offset")
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(sampleLayout())
	if err != nil {
		t.Fatal(err)
	}
	var back layout.Layout
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Boxes) != 2 || back.Boxes[1].Fill != (layout.Color{R: 91, G: 141, B: 239}) {
		t.Errorf("decoded layout = %+v", back)
	}
}
