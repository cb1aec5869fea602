package layout

import "github.com/matzehuels/flowprof/pkg/report"

// InputFromReport builds the layout input of a report. Each node's DAG
// children are used; a node without a DAG child list falls back to its
// tree children.
func InputFromReport(r *report.Report) Input {
	names := r.Names()
	in := Input{
		Names:    names,
		Children: make(map[string][]string, len(names)),
		Labels:   make(map[string]string, len(names)),
		Weights:  make(map[string]float64, len(names)),
		Roots:    r.Roots,
	}
	for _, name := range names {
		n := r.Nodes[name]
		kids := n.DAGChildren
		if kids == nil {
			kids = n.Children
		}
		in.Children[name] = kids
		in.Labels[name] = n.Label
		in.Weights[name] = n.SelfTotalActiveMs
	}
	return in
}
