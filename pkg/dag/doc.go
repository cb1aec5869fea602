// Package dag provides the directed graph behind the topology view: one
// vertex per logical stage, one edge per declared parent→child relation.
//
// # Overview
//
// A topology may give a node several parents, so the graph is a DAG rather
// than a tree. This package stores it with deterministic iteration: nodes
// and edges come back in the order they were added, which is what lets the
// layered layout reproduce byte-identical output for identical input.
//
// Each [Node] carries a Row (its depth once layering has run), a display
// Label and a Weight (self active time) used for colouring.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "0", Label: "source"})
//	g.AddNode(dag.Node{ID: "1", Label: "map"})
//	g.AddEdge(dag.Edge{From: "0", To: "1"})
//
// Query the structure with [DAG.Children], [DAG.Parents] and
// [DAG.NodesInRow]. The layout never requires an acyclic graph.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count crossings between
// adjacent layers with a Fenwick tree in O(E log V). The layout reports the
// count after crossing reduction.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. A finished graph that is
// only read may be shared.
//
// The [transform] subpackage provides topological ordering, depth
// assignment and cycle detection.
//
// [transform]: github.com/matzehuels/flowprof/pkg/dag/transform
package dag
