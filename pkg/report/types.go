package report

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/flowprof/pkg/addr"
	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
)

// Report is the finished view model. It is built once and never mutated.
type Report struct {
	Roots  []string            `json:"roots"`
	Nodes  map[string]NodeView `json:"nodes"`
	Rules  []RuleView          `json:"rules"`
	Totals Totals              `json:"totals"`

	// Diagnostics collects the non-fatal findings of the build. They are
	// logged as they occur and are not part of the serialised document.
	Diagnostics []Diagnostic `json:"-"`
}

// NodeView is the externally visible unit of the report.
type NodeView struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Block       string   `json:"block"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Tags        []string `json:"tags"`

	// Children are the spanning-tree children, sorted.
	Children []string `json:"children"`
	// DAGChildren are all declared children in declaration order.
	DAGChildren []string `json:"dag_children"`
	// DAGParents are all parents, sorted and deduplicated. The first entry
	// is the primary parent.
	DAGParents []string `json:"dag_parents"`
	// ExtraParents are DAGParents without the primary parent.
	ExtraParents []string `json:"extra_parents"`

	SelfActivations   uint64         `json:"self_activations"`
	SelfTotalActiveMs float64        `json:"self_total_active_ms"`
	Operators         []OperatorView `json:"operators"`
}

// PrimaryParent returns the parent used for the spanning tree, or "" for a
// root.
func (n NodeView) PrimaryParent() string {
	if len(n.DAGParents) == 0 {
		return ""
	}
	return n.DAGParents[0]
}

// OperatorView is one log row bound to a node.
type OperatorView struct {
	Addr          addr.Addr `json:"addr"`
	OpName        string    `json:"op_name"`
	Activations   uint64    `json:"activations"`
	TotalActiveMs float64   `json:"total_active_ms"`
}

// RuleView is the plan of one declared rule.
type RuleView struct {
	Text  string                      `json:"text"`
	Root  string                      `json:"root"`
	Nodes map[string]RulePlanNodeView `json:"nodes"`
}

// RulePlanNodeView is one node of a rule plan. Node and Label are empty
// when the fingerprint does not resolve to a topology node.
type RulePlanNodeView struct {
	Fingerprint string   `json:"fingerprint"`
	Node        string   `json:"node,omitempty"`
	Label       string   `json:"label,omitempty"`
	Children    []string `json:"children"`
	Parents     []string `json:"parents"`
	Shared      bool     `json:"shared"`
}

// Totals are report-wide sums over matched operators.
type Totals struct {
	Names                  int     `json:"names"`
	OperatorsInLog         int     `json:"operators_in_log"`
	OperatorsMapped        int     `json:"operators_mapped"`
	TotalMappedMs          float64 `json:"total_mapped_ms"`
	TotalMappedActivations uint64  `json:"total_mapped_activations"`
}

// Diagnostic kinds.
const (
	KindUnmappedAddress     = "unmapped_address"
	KindUnmappedFingerprint = "rule_fingerprint_unmapped"
	KindTopologyCycle       = "topology_cycle"
	KindFingerprintClash    = "rule_fingerprint_collision"
)

// Diagnostic is a non-fatal finding.
type Diagnostic struct {
	Kind        string
	Node        string
	Addr        addr.Addr
	Rule        string
	Fingerprint string
	Members     []string
	Message     string
}

func (d Diagnostic) String() string { return d.Kind + ": " + d.Message }

// OwnershipConflictError reports an address claimed by two nodes.
type OwnershipConflictError struct {
	Addr   addr.Addr
	First  string
	Second string
}

func (e *OwnershipConflictError) Error() string {
	return fmt.Sprintf("operator addr %s is assigned to multiple names: %s and %s", e.Addr, e.First, e.Second)
}

// Code returns ADDRESS_OWNERSHIP_CONFLICT.
func (e *OwnershipConflictError) Code() flowerrors.Code {
	return flowerrors.ErrCodeOwnershipConflict
}

// Names returns all node names, sorted.
func (r *Report) Names() []string {
	return slices.Sorted(maps.Keys(r.Nodes))
}

// Node returns the view for name.
func (r *Report) Node(name string) (NodeView, bool) {
	n, ok := r.Nodes[name]
	return n, ok
}

// FormatMs renders milliseconds with exactly three decimals.
func FormatMs(ms float64) string {
	return strconv.FormatFloat(math.Round(ms*1000)/1000, 'f', 3, 64)
}
