package report

import (
	"maps"
	"slices"
)

// Hierarchy is the spanning tree chosen out of the topology DAG.
type Hierarchy struct {
	// Primary maps each non-root node to its primary parent.
	Primary map[string]string
	// Parents holds every node's normalised DAG parents (sorted, unique).
	Parents map[string][]string
	// Extra holds the parents other than the primary one.
	Extra map[string][]string
	// Children holds the tree children of each node, sorted.
	Children map[string][]string
	// Roots is the union of declared roots and primary-less nodes, sorted.
	Roots []string
}

// ResolveHierarchy collapses a multi-parent DAG into a spanning tree.
//
// Each node's parent list is sorted and deduplicated; the first entry is the
// primary parent and the rest are extra parents kept for display only. A
// node's tree children are the nodes whose primary parent it is. names lists
// every node, including those absent from parents. ResolveHierarchy cannot
// fail.
func ResolveHierarchy(names []string, parents map[string][]string, declaredRoots []string) *Hierarchy {
	h := &Hierarchy{
		Primary:  make(map[string]string),
		Parents:  make(map[string][]string, len(names)),
		Extra:    make(map[string][]string, len(names)),
		Children: make(map[string][]string, len(names)),
	}

	roots := make(map[string]bool, len(declaredRoots))
	for _, r := range declaredRoots {
		roots[r] = true
	}

	for _, name := range names {
		ps := normalizeParents(parents[name])
		h.Parents[name] = ps
		if len(ps) == 0 {
			h.Extra[name] = []string{}
			roots[name] = true
			continue
		}
		h.Primary[name] = ps[0]
		h.Extra[name] = slices.Clone(ps[1:])
		h.Children[ps[0]] = append(h.Children[ps[0]], name)
	}

	for _, kids := range h.Children {
		slices.Sort(kids)
	}
	h.Roots = slices.Sorted(maps.Keys(roots))
	if h.Roots == nil {
		h.Roots = []string{}
	}
	return h
}

// ChildrenOf returns the tree children of name, never nil.
func (h *Hierarchy) ChildrenOf(name string) []string {
	if kids, ok := h.Children[name]; ok {
		return slices.Clone(kids)
	}
	return []string{}
}

func normalizeParents(ps []string) []string {
	out := slices.Clone(ps)
	if out == nil {
		return []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
