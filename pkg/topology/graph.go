package topology

import (
	"slices"
	"strconv"

	"github.com/matzehuels/flowprof/pkg/addr"
	"github.com/matzehuels/flowprof/pkg/dag"
)

// Node is a flattened, validated node record.
type Node struct {
	ID              uint32
	Name            string      // decimal rendering of ID
	Label           string
	Children        []uint32    // as declared, order and repeats preserved
	Operators       []addr.Addr // sorted, deduplicated
	DeclaredParents []uint32
	Tags            []string
	Block           string
	Fingerprint     string // explicit fingerprint, empty when not declared
}

// Key returns the fingerprint rule plans use for this node: the explicit
// fingerprint when declared, otherwise the node name.
func (n *Node) Key() string {
	if n.Fingerprint != "" {
		return n.Fingerprint
	}
	return n.Name
}

// Rule is one rule plan: a small DAG keyed by fingerprint.
type Rule struct {
	Text  string
	Root  string
	Nodes map[string]RuleNode
	// Collisions lists fingerprints declared by more than one stage of the
	// rule. Their children are merged into one plan node.
	Collisions []string
}

// RuleNode lists the local children of one rule plan node.
type RuleNode struct {
	Children []string
}

// Graph is the validated topology.
type Graph struct {
	// Nodes maps node name to node.
	Nodes map[string]*Node
	// Order lists node names by ascending id.
	Order []string
	// Parents maps a node name to its raw DAG parents: every node listing it
	// as a child, then any declared parent not already present.
	Parents map[string][]string
	// Roots are the names of nodes without any parent, by ascending id.
	Roots []string
	// Rules holds one plan per declared rule, in declaration order.
	Rules []Rule
	// Fingerprints maps a fingerprint to the node name that carries it.
	Fingerprints map[string]string
	// DAG holds one vertex per node and one edge per parent relation.
	DAG *dag.DAG
}

// Name renders a node id as a node name.
func Name(id uint32) string { return strconv.FormatUint(uint64(id), 10) }

// Build flattens spec into a Graph and validates it.
//
// Build fails with *DuplicateIDError when two records share an id,
// ErrEmptySpec when no record exists and *DanglingChildError when a child
// or declared parent id has no record. It has no side effects.
func Build(spec *Spec) (*Graph, error) {
	byID := make(map[uint32]*Node)
	for _, raw := range spec.flatten() {
		if _, dup := byID[raw.ID]; dup {
			return nil, &DuplicateIDError{ID: raw.ID}
		}
		byID[raw.ID] = newNode(raw)
	}
	if len(byID) == 0 {
		return nil, ErrEmptySpec
	}

	ids := make([]uint32, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		n := byID[id]
		for _, c := range n.Children {
			if _, ok := byID[c]; !ok {
				return nil, &DanglingChildError{Node: id, Missing: c}
			}
		}
		for _, p := range n.DeclaredParents {
			if _, ok := byID[p]; !ok {
				return nil, &DanglingChildError{Node: id, Missing: p, Parent: true}
			}
		}
	}

	g := &Graph{
		Nodes:        make(map[string]*Node, len(byID)),
		Order:        make([]string, 0, len(ids)),
		Parents:      make(map[string][]string),
		Fingerprints: make(map[string]string),
		DAG:          dag.New(nil),
	}
	for _, id := range ids {
		n := byID[id]
		g.Nodes[n.Name] = n
		g.Order = append(g.Order, n.Name)
		if _, taken := g.Fingerprints[n.Key()]; !taken {
			g.Fingerprints[n.Key()] = n.Name
		}
		// ids are unique and non-empty, so AddNode cannot fail
		_ = g.DAG.AddNode(dag.Node{ID: n.Name, Label: n.Label})
	}

	for _, id := range ids {
		n := byID[id]
		for _, c := range n.Children {
			child := Name(c)
			g.Parents[child] = append(g.Parents[child], n.Name)
			_ = g.DAG.AddEdge(dag.Edge{From: n.Name, To: child})
		}
	}
	for _, id := range ids {
		n := byID[id]
		for _, p := range n.DeclaredParents {
			parent := Name(p)
			if slices.Contains(g.Parents[n.Name], parent) {
				continue
			}
			g.Parents[n.Name] = append(g.Parents[n.Name], parent)
			_ = g.DAG.AddEdge(dag.Edge{From: parent, To: n.Name, Meta: dag.Metadata{"declared": true}})
		}
	}

	for _, name := range g.Order {
		if len(g.Parents[name]) == 0 {
			g.Roots = append(g.Roots, name)
		}
	}

	g.Rules = buildRules(spec.rules(), byID)
	return g, nil
}

func newNode(raw RawNode) *Node {
	ops := make([]addr.Addr, 0, len(raw.Operators))
	for _, op := range raw.Operators {
		ops = append(ops, addr.New(op.Addr...))
	}
	addr.Sort(ops)
	ops = slices.CompactFunc(ops, func(a, b addr.Addr) bool { return a.Equal(b) })

	return &Node{
		ID:              raw.ID,
		Name:            Name(raw.ID),
		Label:           raw.Label,
		Children:        slices.Clone(raw.Children),
		Operators:       ops,
		DeclaredParents: slices.Clone(raw.Parents),
		Tags:            slices.Clone(raw.Tags),
		Block:           raw.Block,
		Fingerprint:     raw.Fingerprint,
	}
}

// buildRules turns each rule's stages into a plan keyed by fingerprint.
// Children that are not stages of the same rule are dropped, so every plan
// is self-contained.
func buildRules(specs []RuleSpec, byID map[uint32]*Node) []Rule {
	rules := make([]Rule, 0, len(specs))
	for _, rs := range specs {
		local := make(map[uint32]string, len(rs.Stages))
		for _, st := range rs.Stages {
			local[st.ID] = byID[st.ID].Key()
		}

		r := Rule{Text: rs.Rule, Root: rs.Root, Nodes: make(map[string]RuleNode, len(rs.Stages))}
		for _, st := range rs.Stages {
			var children []string
			for _, c := range st.Children {
				if fp, ok := local[c]; ok {
					children = append(children, fp)
				}
			}
			key := local[st.ID]
			prev, dup := r.Nodes[key]
			if dup {
				if !slices.Contains(r.Collisions, key) {
					r.Collisions = append(r.Collisions, key)
				}
				for _, c := range children {
					if !slices.Contains(prev.Children, c) {
						prev.Children = append(prev.Children, c)
					}
				}
				children = prev.Children
			}
			r.Nodes[key] = RuleNode{Children: children}
		}
		slices.Sort(r.Collisions)
		if r.Root == "" && len(rs.Stages) > 0 {
			r.Root = local[rs.Stages[0].ID]
		}
		rules = append(rules, r)
	}
	return rules
}
