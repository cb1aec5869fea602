package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowprof/pkg/dag/transform"
	"github.com/matzehuels/flowprof/pkg/logfile"
	"github.com/matzehuels/flowprof/pkg/topology"
)

// Options configures Build.
type Options struct {
	// Logger receives diagnostics at warn level. Nil discards them.
	Logger *log.Logger
}

// Build assembles the report from a validated topology and a log index.
//
// Aggregation and hierarchy resolution run independently off the topology;
// rule views come last. The only fatal error is an ownership conflict.
// Cycles in the topology are reported as diagnostics, one per strongly
// connected component, and do not stop the build.
func Build(g *topology.Graph, ix *logfile.Index, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	agg, err := Aggregate(g.Nodes, ix, logger)
	if err != nil {
		return nil, err
	}
	h := ResolveHierarchy(g.Order, g.Parents, g.Roots)
	rules, ruleDiags := BuildRuleViews(g.Rules, g.Fingerprints, g.Nodes, logger)

	r := &Report{
		Roots:  h.Roots,
		Nodes:  make(map[string]NodeView, len(g.Nodes)),
		Rules:  rules,
		Totals: agg.Totals,
	}
	for _, name := range g.Order {
		n := g.Nodes[name]
		self := agg.Self[name]
		r.Nodes[name] = NodeView{
			Name:              name,
			Label:             n.Label,
			Block:             n.Block,
			Fingerprint:       n.Fingerprint,
			Tags:              cloneOrEmpty(n.Tags),
			Children:          h.ChildrenOf(name),
			DAGChildren:       uniqueInOrder(g.DAG.Children(name)),
			DAGParents:        h.Parents[name],
			ExtraParents:      h.Extra[name],
			SelfActivations:   self.Activations,
			SelfTotalActiveMs: self.TotalActiveMs,
			Operators:         self.Operators,
		}
	}

	r.Diagnostics = append(r.Diagnostics, agg.Diagnostics...)
	r.Diagnostics = append(r.Diagnostics, ruleDiags...)
	for _, scc := range transform.Cycles(g.DAG) {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Kind:    KindTopologyCycle,
			Members: scc,
			Message: fmt.Sprintf("topology cycle through %s", strings.Join(scc, ", ")),
		})
		logger.Warn("topology contains a cycle", "nodes", scc)
	}
	return r, nil
}

func uniqueInOrder(s []string) []string {
	out := make([]string, 0, len(s))
	seen := make(map[string]bool, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
