package transform

import "github.com/matzehuels/flowprof/pkg/dag"

// AssignDepths computes a depth for every node of g and returns it keyed by
// node ID.
//
// Every node starts at depth 0 (declared roots included). Walking order,
// which should come from [TopoOrder], each node's depth becomes the maximum
// of its current value and depth(parent)+1 over all of its DAG parents. For
// an acyclic graph this places every node strictly below all of its parents
// (longest-path layering). Parents that have not been visited yet, which
// only happens inside a cycle, contribute their current depth.
//
// roots only seeds depth 0 explicitly; a declared root that also has parents
// is still pushed below them.
func AssignDepths(g *dag.DAG, order []string, roots []string) map[string]int {
	depth := make(map[string]int, g.NodeCount())
	for _, id := range g.IDs() {
		depth[id] = 0
	}
	for _, r := range roots {
		if _, ok := g.Node(r); ok {
			depth[r] = 0
		}
	}

	for _, id := range order {
		d := depth[id]
		for _, p := range g.Parents(id) {
			if pd := depth[p] + 1; pd > d {
				d = pd
			}
		}
		depth[id] = d
	}
	return depth
}

// AssignLayers orders g topologically, computes depths and stores them as
// node rows. It returns the order used so callers can reuse it.
//
// Existing row assignments in the DAG are overwritten. Cyclic graphs are
// layered on a best-effort basis; see [TopoOrder].
func AssignLayers(g *dag.DAG, roots []string) []string {
	order := TopoOrder(g)
	g.SetRows(AssignDepths(g, order, roots))
	return order
}
