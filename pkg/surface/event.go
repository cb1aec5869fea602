package surface

import (
	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/report"
)

// Kind names an event.
type Kind string

const (
	KindSelect      Kind = "select"
	KindToggle      Kind = "toggle"
	KindExpandAll   Kind = "expand_all"
	KindCollapseAll Kind = "collapse_all"
	KindSearch      Kind = "search"
	KindTab         Kind = "tab"
	KindPan         Kind = "pan"
	KindZoom        Kind = "zoom"
	KindResetView   Kind = "reset_view"
)

// Event is one user interaction. Only the fields relevant to Kind are read.
type Event struct {
	Kind  Kind   `json:"kind"`
	Name  string `json:"name,omitempty"`  // select, toggle
	Query string `json:"query,omitempty"` // search
	Tab   Tab    `json:"tab,omitempty"`   // tab

	// pan: DX, DY in screen pixels. zoom: DeltaY at cursor (CX, CY).
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	DeltaY float64 `json:"delta_y,omitempty"`
	CX     float64 `json:"cx,omitempty"`
	CY     float64 `json:"cy,omitempty"`
}

// Apply returns the state after ev. s is not modified.
//
// Selecting or toggling an unknown node fails with NOT_FOUND; an unknown
// event kind, tab or an invalid search query fails with INVALID_INPUT.
// Toggling a node without tree children is a no-op. A search additionally
// expands the ancestors of every match so that the matches are reachable
// in the tree.
func Apply(s State, r *report.Report, ev Event) (State, error) {
	switch ev.Kind {
	case KindSelect:
		if _, ok := r.Nodes[ev.Name]; !ok {
			return s, unknownNode(ev.Name)
		}
		s.Selected = ev.Name
		return s, nil

	case KindToggle:
		n, ok := r.Nodes[ev.Name]
		if !ok {
			return s, unknownNode(ev.Name)
		}
		if len(n.Children) == 0 {
			return s, nil
		}
		return s.withExpanded(ev.Name, !s.IsExpanded(ev.Name)), nil

	case KindExpandAll:
		expanded := []string{}
		for _, name := range r.Names() {
			if len(r.Nodes[name].Children) > 0 {
				expanded = append(expanded, name)
			}
		}
		s.Expanded = expanded
		return s, nil

	case KindCollapseAll:
		s.Expanded = []string{}
		return s, nil

	case KindSearch:
		if err := flowerrors.ValidateSearchQuery(ev.Query); err != nil {
			return s, err
		}
		s.Search = ev.Query
		if ev.Query == "" {
			return s, nil
		}
		parent := treeParents(r)
		for name := range Visible(r, ev.Query) {
			if p, ok := parent[name]; ok {
				s = s.withExpanded(p, true)
			}
		}
		return s, nil

	case KindTab:
		if ev.Tab != TabTree && ev.Tab != TabGraph {
			return s, flowerrors.New(flowerrors.ErrCodeInvalidInput, "unknown tab %q", ev.Tab)
		}
		s.Tab = ev.Tab
		return s, nil

	case KindPan:
		s.Viewport = s.Viewport.Pan(ev.DX, ev.DY)
		return s, nil

	case KindZoom:
		s.Viewport = s.Viewport.Zoom(ev.DeltaY, ev.CX, ev.CY)
		return s, nil

	case KindResetView:
		s.Viewport = s.Viewport.Reset()
		return s, nil
	}
	return s, flowerrors.New(flowerrors.ErrCodeInvalidInput, "unknown event kind %q", ev.Kind)
}

func unknownNode(name string) error {
	return flowerrors.New(flowerrors.ErrCodeNotFound, "no node named %q", name)
}
