package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowprof/pkg/dag"
	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/layout"
)

// ReadJSON decodes a graph document. Duplicate node ids and edges to
// undeclared nodes are errors; cycles are not.
func ReadJSON(r io.Reader) (*dag.DAG, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "decode graph")
	}

	g := dag.New(nil)
	for _, n := range data.Nodes {
		nd := dag.Node{ID: n.ID, Label: n.Label, Weight: n.Weight, Meta: n.Meta}
		if n.Row != nil {
			nd.Row = *n.Row
		}
		if err := g.AddNode(nd); err != nil {
			code := flowerrors.ErrCodeInvalidInput
			if errors.Is(err, dag.ErrDuplicateNodeID) {
				code = flowerrors.ErrCodeDuplicateNodeID
			}
			return nil, flowerrors.Wrap(code, err, "node %q", n.ID)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, flowerrors.Wrap(flowerrors.ErrCodeDanglingChild, err, "edge %s->%s", e.From, e.To)
		}
	}
	return g, nil
}

// ImportJSON reads the graph file at path.
func ImportJSON(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ToInput converts g into a layout input. Sources become the roots.
func ToInput(g *dag.DAG) layout.Input {
	ids := g.IDs()
	in := layout.Input{
		Names:    ids,
		Children: make(map[string][]string, len(ids)),
		Labels:   make(map[string]string, len(ids)),
		Weights:  make(map[string]float64, len(ids)),
		Roots:    dag.NodeIDs(g.Sources()),
	}
	for _, n := range g.Nodes() {
		in.Children[n.ID] = g.Children(n.ID)
		in.Labels[n.ID] = n.DisplayLabel()
		in.Weights[n.ID] = n.Weight
	}
	return in
}
