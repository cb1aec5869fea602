// Package surface is the interactive state machine behind every view of a
// report: the HTML page, the terminal browser and the HTTP server.
//
// All mutable view state lives in a [State] value. [Apply] takes a state and
// an [Event] and returns the next state without touching the input, and
// [Render] turns a state plus a report into a [Frame] holding everything a
// front end needs to draw: summary pills, visible tree rows, the selected
// node's detail panel and, on the graph tab, a fresh layout with the
// viewport transform. Every event is followed by a full re-render.
package surface

import (
	"slices"
	"strings"

	"github.com/matzehuels/flowprof/pkg/report"
	"github.com/matzehuels/flowprof/pkg/viewport"
)

// Tab selects the main pane.
type Tab string

const (
	TabTree  Tab = "tree"
	TabGraph Tab = "graph"
)

// State is the complete interactive state. It serialises to JSON so that
// sessions can be stored and restored.
type State struct {
	Selected string             `json:"selected,omitempty"`
	Expanded []string           `json:"expanded"` // sorted, unique
	Search   string             `json:"search,omitempty"`
	Tab      Tab                `json:"tab"`
	Viewport viewport.Transform `json:"viewport"`
}

// Initial returns the state shown when a report is first opened: all roots
// expanded, the first root selected, the tree tab active.
func Initial(r *report.Report) State {
	s := State{
		Expanded: slices.Clone(r.Roots),
		Tab:      TabTree,
		Viewport: viewport.Identity(),
	}
	if s.Expanded == nil {
		s.Expanded = []string{}
	}
	slices.Sort(s.Expanded)
	s.Expanded = slices.Compact(s.Expanded)
	if len(r.Roots) > 0 {
		s.Selected = r.Roots[0]
	}
	return s
}

// IsExpanded reports whether name is expanded.
func (s State) IsExpanded(name string) bool {
	_, ok := slices.BinarySearch(s.Expanded, name)
	return ok
}

func (s State) withExpanded(name string, on bool) State {
	i, ok := slices.BinarySearch(s.Expanded, name)
	switch {
	case on && !ok:
		s.Expanded = slices.Insert(slices.Clone(s.Expanded), i, name)
	case !on && ok:
		s.Expanded = slices.Delete(slices.Clone(s.Expanded), i, i+1)
	}
	return s
}

// Matches reports whether a node passes the search filter: a case-insensitive
// substring match on the name or the label. An empty query matches all.
func Matches(query, name string, n report.NodeView) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(name), q) ||
		strings.Contains(strings.ToLower(n.Label), q)
}

// treeParents maps every tree child to its tree parent.
func treeParents(r *report.Report) map[string]string {
	parent := make(map[string]string, len(r.Nodes))
	for _, name := range r.Names() {
		for _, c := range r.Nodes[name].Children {
			parent[c] = name
		}
	}
	return parent
}

// Visible returns the nodes shown while query is active: every match plus
// all of its tree ancestors. A nil result means no filter.
func Visible(r *report.Report, query string) map[string]bool {
	if query == "" {
		return nil
	}
	parent := treeParents(r)
	show := make(map[string]bool)
	for _, name := range r.Names() {
		if !Matches(query, name, r.Nodes[name]) {
			continue
		}
		for cur, steps := name, 0; cur != "" && steps <= len(r.Nodes); steps++ {
			if show[cur] {
				break
			}
			show[cur] = true
			cur = parent[cur]
		}
	}
	return show
}
