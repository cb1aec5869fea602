package transform_test

import (
	"fmt"

	"github.com/matzehuels/flowprof/pkg/dag"
	"github.com/matzehuels/flowprof/pkg/dag/transform"
)

func ExampleAssignLayers() {
	// A → [B, C], B → [D], C → [D]
	g := dag.New(nil)
	for _, id := range []string{"A", "B", "C", "D"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "A", To: "B"})
	_ = g.AddEdge(dag.Edge{From: "A", To: "C"})
	_ = g.AddEdge(dag.Edge{From: "B", To: "D"})
	_ = g.AddEdge(dag.Edge{From: "C", To: "D"})

	transform.AssignLayers(g, []string{"A"})

	for _, row := range g.RowIDs() {
		fmt.Println(row, dag.NodeIDs(g.NodesInRow(row)))
	}
	// Output:
	// 0 [A]
	// 1 [B C]
	// 2 [D]
}

func ExampleTopoOrder_cycle() {
	// b and c form a cycle; they are appended in name order
	g := dag.New(nil)
	for _, id := range []string{"a", "c", "b"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "a", To: "c"})
	_ = g.AddEdge(dag.Edge{From: "c", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "c"})

	fmt.Println(transform.TopoOrder(g))
	fmt.Println(transform.Cycles(g))
	// Output:
	// [a b c]
	// [[b c]]
}
