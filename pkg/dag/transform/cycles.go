package transform

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/flowprof/pkg/dag"
)

// Cycles returns the strongly connected components of g that contain a
// cycle: components with more than one node, plus single nodes with a
// self-loop. Each component is sorted lexicographically and the components
// are ordered by their first member, so the result is deterministic.
//
// g is not modified. Returns nil for an acyclic graph.
func Cycles(g *dag.DAG) [][]string {
	ids := g.IDs()
	index := make(map[string]int64, len(ids))
	dg := simple.NewDirectedGraph()
	for i, id := range ids {
		index[id] = int64(i)
		dg.AddNode(simple.Node(i))
	}

	selfLoop := make(map[string]bool)
	for _, e := range g.Edges() {
		if e.From == e.To {
			// simple.DirectedGraph rejects self edges
			selfLoop[e.From] = true
			continue
		}
		from, to := index[e.From], index[e.To]
		if dg.HasEdgeFromTo(from, to) {
			continue
		}
		dg.SetEdge(dg.NewEdge(dg.Node(from), dg.Node(to)))
	}

	var cycles [][]string
	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) == 1 && !selfLoop[ids[scc[0].ID()]] {
			continue
		}
		members := make([]string, len(scc))
		for i, n := range scc {
			members[i] = ids[n.ID()]
		}
		slices.Sort(members)
		cycles = append(cycles, members)
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return cycles
}

