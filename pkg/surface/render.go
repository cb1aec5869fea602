package surface

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/report"
)

// Frame is a fully rendered view of one state.
type Frame struct {
	Summary  []Pill  `json:"summary"`
	Tree     []Row   `json:"tree"`
	Detail   *Detail `json:"detail,omitempty"`
	Tab      Tab     `json:"tab"`
	Search   string  `json:"search,omitempty"`
	Selected string  `json:"selected,omitempty"`

	// Graph is set on the graph tab only.
	Graph *layout.Layout `json:"graph,omitempty"`
	// Transform is the SVG transform of the graph viewport.
	Transform string `json:"transform"`
}

// Pill is one summary figure.
type Pill struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Row is one visible line of the tree.
type Row struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Depth       int    `json:"depth"`
	HasChildren bool   `json:"has_children"`
	Expanded    bool   `json:"expanded"`
	Selected    bool   `json:"selected"`
	SelfMs      string `json:"self_ms"`
	Activations uint64 `json:"activations"`
}

// Toggle returns the disclosure glyph of the row.
func (r Row) Toggle() string {
	switch {
	case !r.HasChildren:
		return " "
	case r.Expanded:
		return "▾"
	default:
		return "▸"
	}
}

// Text returns the row caption, e.g. "scan (1.500 ms, 3 act)".
func (r Row) Text() string {
	return fmt.Sprintf("%s (%s ms, %d act)", r.Label, r.SelfMs, r.Activations)
}

// Detail describes the selected node.
type Detail struct {
	Name         string        `json:"name"`
	Title        string        `json:"title"`
	Meta         string        `json:"meta"`
	ExtraParents []string      `json:"extra_parents"`
	Operators    []OperatorRow `json:"operators"`
}

// OperatorRow is one line of the operator table.
type OperatorRow struct {
	Addr          string `json:"addr"`
	OpName        string `json:"op_name"`
	Activations   uint64 `json:"activations"`
	TotalActiveMs string `json:"total_active_ms"`
}

// Render draws s against r. Layout options apply to the graph tab.
func Render(s State, r *report.Report, opts ...layout.Option) Frame {
	f := Frame{
		Summary:   Summary(r.Totals),
		Tree:      TreeRows(s, r),
		Tab:       s.Tab,
		Search:    s.Search,
		Selected:  s.Selected,
		Transform: s.Viewport.SVG(),
	}
	if f.Tab == "" {
		f.Tab = TabTree
	}
	if d, ok := DetailOf(r, s.Selected); ok {
		f.Detail = &d
	}
	if f.Tab == TabGraph {
		l := layout.Compute(layout.InputFromReport(r), opts...)
		f.Graph = &l
	}
	return f
}

// Summary returns the report-wide pills.
func Summary(t report.Totals) []Pill {
	return []Pill{
		{"names", strconv.Itoa(t.Names)},
		{"operators in log", strconv.Itoa(t.OperatorsInLog)},
		{"operators mapped", strconv.Itoa(t.OperatorsMapped)},
		{"mapped ms", report.FormatMs(t.TotalMappedMs)},
		{"mapped activations", strconv.FormatUint(t.TotalMappedActivations, 10)},
	}
}

// TreeRows walks the spanning tree from the roots in order, descending only
// into expanded nodes. With an active search, nodes outside the matches
// and their ancestors are hidden along with their subtrees.
func TreeRows(s State, r *report.Report) []Row {
	show := Visible(r, s.Search)
	rows := []Row{}
	onPath := make(map[string]bool)

	var walk func(name string, depth int)
	walk = func(name string, depth int) {
		n, ok := r.Nodes[name]
		if !ok || onPath[name] {
			return
		}
		if show != nil && !show[name] {
			return
		}
		expanded := s.IsExpanded(name)
		rows = append(rows, Row{
			Name:        name,
			Label:       n.Label,
			Depth:       depth,
			HasChildren: len(n.Children) > 0,
			Expanded:    expanded,
			Selected:    s.Selected == name,
			SelfMs:      report.FormatMs(n.SelfTotalActiveMs),
			Activations: n.SelfActivations,
		})
		if expanded {
			onPath[name] = true
			for _, c := range n.Children {
				walk(c, depth+1)
			}
			delete(onPath, name)
		}
	}
	for _, root := range r.Roots {
		walk(root, 0)
	}
	return rows
}

// DetailOf returns the detail panel of name.
func DetailOf(r *report.Report, name string) (Detail, bool) {
	n, ok := r.Nodes[name]
	if !ok {
		return Detail{}, false
	}
	meta := fmt.Sprintf("name: %s | self: %s ms | activations: %d", name, report.FormatMs(n.SelfTotalActiveMs), n.SelfActivations)
	if len(n.ExtraParents) > 0 {
		meta += " extra parents: " + strings.Join(n.ExtraParents, ", ")
	}
	d := Detail{
		Name:         name,
		Title:        n.Label,
		Meta:         meta,
		ExtraParents: append([]string{}, n.ExtraParents...),
		Operators:    make([]OperatorRow, 0, len(n.Operators)),
	}
	for _, op := range n.Operators {
		d.Operators = append(d.Operators, OperatorRow{
			Addr:          op.Addr.String(),
			OpName:        op.OpName,
			Activations:   op.Activations,
			TotalActiveMs: report.FormatMs(op.TotalActiveMs),
		})
	}
	return d, true
}
