package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowprof/pkg/dag"
	"github.com/matzehuels/flowprof/pkg/report"
)

func TestToDOT(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "1", Label: "scan", Weight: 4})
	_ = g.AddNode(dag.Node{ID: "2", Weight: 0})
	_ = g.AddEdge(dag.Edge{From: "1", To: "2"})

	dot := ToDOT(g, Options{})
	for _, want := range []string{
		"digraph G {",
		`"1" [label="scan", fillcolor="#5b8def"];`,
		`"2" [label="2", fillcolor="#e9f2ff"];`,
		`"1" -> "2";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}

	detailed := ToDOT(g, Options{Detailed: true})
	if !strings.Contains(detailed, `label="scan\n#1 | 4.000 ms"`) {
		t.Errorf("detailed label missing\n%s", detailed)
	}
}

func TestFromReport(t *testing.T) {
	r := &report.Report{
		Roots: []string{"a"},
		Nodes: map[string]report.NodeView{
			"a": {Name: "a", Label: "A", DAGChildren: []string{"b", "missing"}},
			"b": {Name: "b", Label: "B", DAGChildren: []string{}},
		},
	}
	dot := FromReport(r, Options{})
	if strings.Count(dot, "->") != 1 {
		t.Errorf("want exactly one edge\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("untouched input changed: %s", got)
	}
}
