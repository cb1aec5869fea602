package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/layout"
)

const sampleGraph = `{
  "nodes": [
    {"id": "scan", "weight": 4},
    {"id": "join", "label": "hash join"},
    {"id": "out"}
  ],
  "edges": [
    {"from": "scan", "to": "join"},
    {"from": "join", "to": "out"}
  ]
}`

func TestParseLayoutInput(t *testing.T) {
	in, err := parseLayoutInput([]byte(sampleGraph))
	if err != nil {
		t.Fatal(err)
	}
	if in.graph == nil || in.report != nil {
		t.Fatal("graph document not recognised")
	}

	in, err = parseLayoutInput([]byte(`{"roots": ["1"], "nodes": {"1": {"name": "1", "label": "A"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if in.report == nil {
		t.Fatal("report document not recognised")
	}

	for _, bad := range []string{`[1, 2]`, `{"nodes": null}`, `{"edges": []}`} {
		if _, err := parseLayoutInput([]byte(bad)); !flowerrors.Is(err, flowerrors.ErrCodeInvalidInput) {
			t.Errorf("parseLayoutInput(%s) error = %v, want INVALID_INPUT", bad, err)
		}
	}
}

func TestLayoutCommandGraph(t *testing.T) {
	e := newTestEnv(t)
	input := filepath.Join(e.dir, "plan.json")
	if err := os.WriteFile(input, []byte(sampleGraph), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "layout", input); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(e.dir, "plan.layout.json"))
	if err != nil {
		t.Fatal(err)
	}
	var l layout.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatal(err)
	}
	if len(l.Layers) != 3 || l.Crossings != 0 {
		t.Errorf("layers = %v, crossings = %d", l.Layers, l.Crossings)
	}

	svgPath := filepath.Join(e.dir, "plan.svg")
	if _, err := run(t, "layout", input, "-f", "svg", "--select", "join", "-o", svgPath); err != nil {
		t.Fatal(err)
	}
	svg, _ := os.ReadFile(svgPath)
	if !strings.Contains(string(svg), `class="g-node selected"`) {
		t.Error("svg does not highlight the selected node")
	}
}

func TestLayoutCommandReport(t *testing.T) {
	e := newTestEnv(t)
	logPath, specPath := e.writeInputs(t)
	if _, err := run(t, "report", logPath, specPath, "-f", "json", "--no-cache"); err != nil {
		t.Fatal(err)
	}
	reportPath := filepath.Join(e.dir, "profile.json")

	if _, err := run(t, "layout", reportPath, "-f", "graph"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(e.dir, "profile.graph.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
		Edges []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"edges"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 4 || len(doc.Edges) != 4 {
		t.Errorf("graph has %d nodes and %d edges, want 4 and 4", len(doc.Nodes), len(doc.Edges))
	}

	_, err = run(t, "layout", reportPath, "-f", "png")
	if !flowerrors.Is(err, flowerrors.ErrCodeUnsupported) {
		t.Errorf("error = %v, want UNSUPPORTED", err)
	}
}
