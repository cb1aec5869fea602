package report

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowprof/pkg/addr"
	"github.com/matzehuels/flowprof/pkg/logfile"
	"github.com/matzehuels/flowprof/pkg/topology"
)

// SelfStats are the metrics a node owns directly.
type SelfStats struct {
	Activations   uint64
	TotalActiveMs float64
	Operators     []OperatorView
}

// Aggregation is the result of binding log rows to nodes.
type Aggregation struct {
	Self        map[string]SelfStats
	Totals      Totals
	Diagnostics []Diagnostic
}

// Aggregate binds every node's operator addresses to rows of ix.
//
// Ownership is checked first, node by node in name order: an address
// claimed by a second node fails the run with *OwnershipConflictError. An
// address missing from ix is recorded as a diagnostic, logged at warn level
// and left out of both the node and the totals.
func Aggregate(nodes map[string]*topology.Node, ix *logfile.Index, logger *log.Logger) (*Aggregation, error) {
	if logger == nil {
		logger = discardLogger()
	}
	names := slices.Sorted(maps.Keys(nodes))

	owner := make(map[addr.Key]string)
	for _, name := range names {
		for _, a := range nodes[name].Operators {
			k := a.Key()
			if prev, ok := owner[k]; ok && prev != name {
				return nil, &OwnershipConflictError{Addr: addr.New(a...), First: prev, Second: name}
			}
			owner[k] = name
		}
	}

	agg := &Aggregation{
		Self:   make(map[string]SelfStats, len(nodes)),
		Totals: Totals{Names: len(nodes), OperatorsInLog: ix.Len()},
	}
	for _, name := range names {
		ops := slices.Clone(nodes[name].Operators)
		addr.Sort(ops)

		stats := SelfStats{Operators: []OperatorView{}}
		for _, a := range ops {
			row, ok := ix.Get(a)
			if !ok {
				d := Diagnostic{
					Kind:    KindUnmappedAddress,
					Node:    name,
					Addr:    addr.New(a...),
					Message: "node " + name + " maps addr " + a.String() + ", but addr not found in log",
				}
				agg.Diagnostics = append(agg.Diagnostics, d)
				logger.Warn("operator addr not found in log", "node", name, "addr", a.String())
				continue
			}
			stats.Operators = append(stats.Operators, OperatorView{
				Addr:          addr.New(row.Addr...),
				OpName:        row.OpName,
				Activations:   row.Activations,
				TotalActiveMs: row.TotalActiveMs,
			})
			stats.Activations += row.Activations
			stats.TotalActiveMs += row.TotalActiveMs

			agg.Totals.OperatorsMapped++
			agg.Totals.TotalMappedActivations += row.Activations
			agg.Totals.TotalMappedMs += row.TotalActiveMs
		}
		agg.Self[name] = stats
	}
	return agg, nil
}
