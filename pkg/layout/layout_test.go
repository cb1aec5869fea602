package layout

import (
	"reflect"
	"strings"
	"testing"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/layout/ordering"
	"github.com/matzehuels/flowprof/pkg/report"
)

func diamond() Input {
	return Input{
		Names: []string{"A", "B", "C", "D"},
		Children: map[string][]string{
			"A": {"B", "C"},
			"B": {"D"},
			"C": {"D"},
		},
		Weights: map[string]float64{"A": 0, "B": 5, "C": 10, "D": 2.5},
		Roots:   []string{"A"},
	}
}

func fixed() Option { return WithMeasurer(FixedMeasurer(7)) }

func TestCompute_Diamond(t *testing.T) {
	l := Compute(diamond(), fixed())

	wantDepths := map[string]int{"A": 0, "B": 1, "C": 1, "D": 2}
	if got := l.Depths(); !reflect.DeepEqual(got, wantDepths) {
		t.Errorf("Depths() = %v, want %v", got, wantDepths)
	}
	wantLayers := [][]string{{"A"}, {"B", "C"}, {"D"}}
	if !reflect.DeepEqual(l.Layers, wantLayers) {
		t.Errorf("Layers = %v, want %v", l.Layers, wantLayers)
	}
	if l.Width != 960 || l.Height != 440 {
		t.Errorf("page = %vx%v, want 960x440", l.Width, l.Height)
	}
	if l.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", l.Crossings)
	}
	if len(l.Cycles) != 0 {
		t.Errorf("Cycles = %v, want none", l.Cycles)
	}

	a, _ := l.Box("A")
	if a.CenterX() != 480 || a.CenterY() != 40 || a.Width != 140 || a.Height != 36 {
		t.Errorf("box A = %+v", a)
	}
	b, _ := l.Box("B")
	c, _ := l.Box("C")
	if b.CenterX() != 320 || c.CenterX() != 640 || b.CenterY() != 160 {
		t.Errorf("B centre (%v,%v), C centre x %v", b.CenterX(), b.CenterY(), c.CenterX())
	}

	if len(l.Edges) != 4 {
		t.Fatalf("len(Edges) = %d, want 4", len(l.Edges))
	}
	if got, want := l.Edges[0].Path(), "M 480 58 L 480 100 L 320 100 L 320 142"; got != want {
		t.Errorf("A→B path = %q, want %q", got, want)
	}

	if a.Fill != (Color{233, 242, 255}) {
		t.Errorf("A fill = %v, want cold colour", a.Fill)
	}
	if c.Fill != (Color{91, 141, 239}) {
		t.Errorf("C fill = %v, want hot colour", c.Fill)
	}
	if b.Fill.String() != "rgb(162,192,247)" {
		t.Errorf("B fill = %v, want rgb(162,192,247)", b.Fill)
	}
	if l.TextTop != 20 || l.LineHeight != 16 {
		t.Errorf("text placement = %v/%v", l.TextTop, l.LineHeight)
	}
}

func TestCompute_DepthBelowAllParents(t *testing.T) {
	in := Input{
		Names: []string{"a", "b", "c", "d", "e"},
		Children: map[string][]string{
			"a": {"b", "e"},
			"b": {"c"},
			"c": {"d"},
			"e": {"d"},
		},
	}
	l := Compute(in, fixed())
	depth := l.Depths()
	for parent, kids := range in.Children {
		for _, k := range kids {
			if depth[k] <= depth[parent] {
				t.Errorf("depth(%s)=%d not below depth(%s)=%d", k, depth[k], parent, depth[parent])
			}
		}
	}
	if depth["d"] != 3 {
		t.Errorf("depth(d) = %d, want 3", depth["d"])
	}
}

func TestCompute_Cycle(t *testing.T) {
	in := Input{
		Names:    []string{"A", "B", "C"},
		Children: map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"B"}},
		Roots:    []string{"A"},
	}
	l := Compute(in, fixed())

	if len(l.Boxes) != 3 || len(l.Edges) != 3 {
		t.Fatalf("got %d boxes / %d edges, want 3 / 3", len(l.Boxes), len(l.Edges))
	}
	want := map[string]int{"A": 0, "B": 1, "C": 2}
	if got := l.Depths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Depths() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(l.Cycles, [][]string{{"B", "C"}}) {
		t.Errorf("Cycles = %v", l.Cycles)
	}
}

func TestCompute_UnknownChildAndEmpty(t *testing.T) {
	l := Compute(Input{
		Names:    []string{"x"},
		Children: map[string][]string{"x": {"ghost"}, "ghost": {"x"}},
	}, fixed())
	if len(l.Boxes) != 1 || len(l.Edges) != 0 {
		t.Errorf("got %d boxes / %d edges, want 1 / 0", len(l.Boxes), len(l.Edges))
	}
	if b := l.Boxes[0]; b.Label != "x" || b.Lines[0] != "x" {
		t.Errorf("label fallback = %+v", b)
	}

	empty := Compute(Input{}, fixed())
	if empty.Width != 960 || empty.Height != 80 || len(empty.Boxes) != 0 {
		t.Errorf("empty layout = %+v", empty)
	}
}

func TestCompute_WideLayer(t *testing.T) {
	in := Input{Names: []string{"r"}, Children: map[string][]string{}}
	for _, n := range []string{"k1", "k2", "k3", "k4", "k5", "k6"} {
		in.Names = append(in.Names, n)
		in.Children["r"] = append(in.Children["r"], n)
	}
	l := Compute(in, fixed())
	if l.Width != 6*220 {
		t.Errorf("Width = %v, want %v", l.Width, 6*220)
	}
}

func TestCompute_Orderer(t *testing.T) {
	in := Input{
		Names:    []string{"a", "b", "x", "y"},
		Children: map[string][]string{"a": {"y"}, "b": {"x"}},
	}
	lex := Compute(in, fixed(), WithOrderer(ordering.Lexical{}))
	bary := Compute(in, fixed())
	if lex.Crossings != 1 || bary.Crossings != 0 {
		t.Errorf("crossings lexical=%d barycenter=%d, want 1 and 0", lex.Crossings, bary.Crossings)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	first := Compute(diamond(), fixed())
	for i := 0; i < 5; i++ {
		if got := Compute(diamond(), fixed()); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestWrap(t *testing.T) {
	m := FixedMeasurer(10)
	tests := []struct {
		text string
		want []string
	}{
		{"", []string{""}},
		{"   ", []string{""}},
		{"aaa bb cc", []string{"aaa", "bb cc"}},
		{"abcdefghijk", []string{"abcdefghijk"}},
		{"a\tb\nc", []string{"a b c"}},
	}
	for _, tt := range tests {
		if got := Wrap(tt.text, 50, m); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Wrap(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestBoxSize(t *testing.T) {
	cfg := DefaultConfig()
	m := FixedMeasurer(10)

	w, h, lines := cfg.BoxSize(strings.Repeat("a ", 40), m)
	if len(lines) != 3 || w != 354 || h != 64 {
		t.Errorf("BoxSize(40 words) = %v x %v, %d lines", w, h, len(lines))
	}

	w, h, _ = cfg.BoxSize(strings.Repeat("x", 100), m)
	if w != cfg.MaxWidth || h != cfg.MinHeight {
		t.Errorf("BoxSize(long word) = %v x %v, want %v x %v", w, h, cfg.MaxWidth, cfg.MinHeight)
	}
}

func TestLerp(t *testing.T) {
	cold, hot := Color{233, 242, 255}, Color{91, 141, 239}
	if got := Lerp(cold, hot, -1); got != cold {
		t.Errorf("Lerp(-1) = %v", got)
	}
	if got := Lerp(cold, hot, 2); got != hot {
		t.Errorf("Lerp(2) = %v", got)
	}
}

func TestColorText(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#5b8def", Color{91, 141, 239}, false},
		{"rgb(233, 242, 255)", Color{233, 242, 255}, false},
		{"rgb(1,2)", Color{}, true},
		{"rgb(1,2,300)", Color{}, true},
		{"blue", Color{}, true},
	}
	for _, tt := range tests {
		var c Color
		err := c.UnmarshalText([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalText(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && c != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, c, tt.want)
		}
	}

	text, _ := Color{1, 2, 3}.MarshalText()
	if string(text) != "rgb(1,2,3)" {
		t.Errorf("MarshalText() = %s", text)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}

	bad := DefaultConfig()
	bad.MinWidth = 400
	err := bad.Validate()
	if !flowerrors.Is(err, flowerrors.ErrCodeInvalidInput) {
		t.Errorf("Validate() = %v, want INVALID_INPUT", err)
	}

	bad = DefaultConfig()
	bad.LayerGap = 0
	if bad.Validate() == nil {
		t.Error("Validate() accepted zero layer gap")
	}
}

func TestInputFromReport(t *testing.T) {
	r := &report.Report{
		Roots: []string{"1"},
		Nodes: map[string]report.NodeView{
			"1": {Name: "1", Label: "root", DAGChildren: []string{"2"}, Children: []string{"2"}},
			"2": {Name: "2", Label: "leaf", SelfTotalActiveMs: 4, Children: []string{"3"}},
			"3": {Name: "3", Label: "tree only", DAGChildren: []string{}},
		},
	}
	in := InputFromReport(r)
	if !reflect.DeepEqual(in.Names, []string{"1", "2", "3"}) {
		t.Errorf("Names = %v", in.Names)
	}
	if !reflect.DeepEqual(in.Children["2"], []string{"3"}) {
		t.Errorf("fallback children = %v", in.Children["2"])
	}
	if len(in.Children["3"]) != 0 || in.Weights["2"] != 4 || in.Labels["1"] != "root" {
		t.Errorf("input = %+v", in)
	}
}

func TestGraph(t *testing.T) {
	g := Graph(Input{
		Names:    []string{"a", "b", "a"},
		Children: map[string][]string{"a": {"b", "zz"}},
		Labels:   map[string]string{"a": "Alpha"},
	})
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("graph has %d nodes / %d edges, want 2 / 1", g.NodeCount(), g.EdgeCount())
	}
	if n, _ := g.Node("a"); n.DisplayLabel() != "Alpha" {
		t.Errorf("label = %q", n.DisplayLabel())
	}
	if got := (Color{91, 141, 239}).Hex(); got != "#5b8def" {
		t.Errorf("Hex() = %q", got)
	}
}
