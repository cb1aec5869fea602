// Package ordering decides the horizontal order of nodes inside each layer
// of a layered graph.
//
// Layers are the rows of a [dag.DAG]; rows are usually assigned with
// [transform.AssignLayers] first. An [Orderer] returns, for every row, the
// node IDs from left to right. Two orderers are provided:
//
//   - [Lexical] sorts every row by ID and does nothing else.
//   - [Barycenter] starts from the lexical order and then sweeps the layers
//     down, up and down again, placing each node at the mean position of its
//     neighbours in the adjacent layer.
//
// Neither orderer aims for the minimum number of crossings; the result is a
// cheap, deterministic improvement that [dag.CountCrossings] can score.
//
// [transform.AssignLayers]: github.com/matzehuels/flowprof/pkg/dag/transform.AssignLayers
package ordering

import (
	"slices"

	"github.com/matzehuels/flowprof/pkg/dag"
)

// Orderer is an interface for horizontal row ordering algorithms.
// An orderer determines the horizontal sequence of nodes in each row
// to reduce edge crossings.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// Lexical orders every row by node ID.
type Lexical struct{}

// OrderRows implements [Orderer].
func (Lexical) OrderRows(g *dag.DAG) map[int][]string {
	orders := make(map[int][]string, g.RowCount())
	for _, row := range g.RowIDs() {
		ids := dag.NodeIDs(g.NodesInRow(row))
		slices.Sort(ids)
		orders[row] = ids
	}
	return orders
}
