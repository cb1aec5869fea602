package ordering

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/flowprof/pkg/dag"
)

// Barycenter reorders layers by the mean position of each node's neighbours
// in the adjacent layer.
//
// The zero value runs the usual three sweeps: top-down against parents,
// bottom-up against children, then top-down again. Nodes without a
// neighbour in the adjacent layer get an infinite barycenter and move to the
// end of their layer. Ties are broken by node ID, so the result depends only
// on the graph and not on insertion order.
type Barycenter struct {
	// Sweeps overrides the number of sweeps. Sweeps alternate direction,
	// starting downward. Zero means three.
	Sweeps int
}

// OrderRows implements [Orderer].
func (b Barycenter) OrderRows(g *dag.DAG) map[int][]string {
	orders := Lexical{}.OrderRows(g)
	rows := g.RowIDs()

	sweeps := b.Sweeps
	if sweeps <= 0 {
		sweeps = 3
	}
	for s := 0; s < sweeps; s++ {
		if s%2 == 0 {
			sweepDown(g, rows, orders)
		} else {
			sweepUp(g, rows, orders)
		}
	}
	return orders
}

func sweepDown(g *dag.DAG, rows []int, orders map[int][]string) {
	for i := 1; i < len(rows); i++ {
		prev := dag.PosMap(orders[rows[i-1]])
		sortByBarycenter(orders[rows[i]], prev, g.Parents)
	}
}

func sweepUp(g *dag.DAG, rows []int, orders map[int][]string) {
	for i := len(rows) - 2; i >= 0; i-- {
		next := dag.PosMap(orders[rows[i+1]])
		sortByBarycenter(orders[rows[i]], next, g.Children)
	}
}

// sortByBarycenter sorts layer in place. neighbours yields the candidates
// for a node; only those present in fixed count.
func sortByBarycenter(layer []string, fixed map[string]int, neighbours func(string) []string) {
	bary := make(map[string]float64, len(layer))
	for _, id := range layer {
		bary[id] = barycenterOf(neighbours(id), fixed)
	}
	slices.SortFunc(layer, func(a, b string) int {
		if c := cmp.Compare(bary[a], bary[b]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

func barycenterOf(neighbours []string, fixed map[string]int) float64 {
	sum, n := 0, 0
	for _, v := range neighbours {
		if pos, ok := fixed[v]; ok {
			sum += pos
			n++
		}
	}
	if n == 0 {
		return math.Inf(1)
	}
	return float64(sum) / float64(n)
}
