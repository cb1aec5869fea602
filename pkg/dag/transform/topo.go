package transform

import (
	"slices"

	"github.com/matzehuels/flowprof/pkg/dag"
)

// TopoOrder returns every node of g exactly once, parents before children
// wherever the graph allows it.
//
// TopoOrder runs Kahn's algorithm with a FIFO queue seeded in node insertion
// order, so ties between ready nodes are broken by discovery order. Nodes
// that never reach in-degree zero (members of a cycle and everything below
// one) are appended afterwards in lexicographic order. The function never
// fails; on an acyclic graph the lexicographic tail is empty.
//
// Repeated edges count once per occurrence on both the in-degree and the
// decrement side, so they do not change the result.
func TopoOrder(g *dag.DAG) []string {
	ids := g.IDs()
	inDegree := make(map[string]int, len(ids))
	queue := make([]string, 0, len(ids))

	for _, id := range ids {
		degree := g.InDegree(id)
		inDegree[id] = degree
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(ids))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, child := range g.Children(curr) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(order) == len(ids) {
		return order
	}

	seen := make(map[string]bool, len(order))
	for _, id := range order {
		seen[id] = true
	}
	rest := make([]string, 0, len(ids)-len(order))
	for _, id := range ids {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}
