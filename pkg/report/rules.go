package report

import (
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowprof/pkg/topology"
)

// BuildRuleViews builds the plan view of every rule.
//
// Within one rule, local child edges are inverted to find each node's local
// parents; a node with more than one local parent is shared. This is
// independent of extra parents in the global hierarchy. Fingerprints resolve
// to node names through fingerprints, and the label is looked up in nodes.
// An unresolved fingerprint leaves Node and Label empty and yields a
// diagnostic, as do a root missing from the plan and a fingerprint declared
// by more than one stage.
func BuildRuleViews(rules []topology.Rule, fingerprints map[string]string, nodes map[string]*topology.Node, logger *log.Logger) ([]RuleView, []Diagnostic) {
	if logger == nil {
		logger = discardLogger()
	}

	views := make([]RuleView, 0, len(rules))
	var diags []Diagnostic
	for _, rule := range rules {
		fps := slices.Sorted(maps.Keys(rule.Nodes))

		parents := make(map[string][]string)
		for _, fp := range fps {
			for _, child := range rule.Nodes[fp].Children {
				parents[child] = append(parents[child], fp)
			}
		}

		view := RuleView{
			Text:  rule.Text,
			Root:  rule.Root,
			Nodes: make(map[string]RulePlanNodeView, len(fps)),
		}
		for _, fp := range fps {
			pv := RulePlanNodeView{
				Fingerprint: fp,
				Children:    cloneOrEmpty(rule.Nodes[fp].Children),
				Parents:     cloneOrEmpty(parents[fp]),
			}
			pv.Shared = len(pv.Parents) > 1

			if name, ok := fingerprints[fp]; ok {
				pv.Node = name
				if n, ok := nodes[name]; ok {
					pv.Label = n.Label
				}
			} else {
				diags = append(diags, Diagnostic{
					Kind:        KindUnmappedFingerprint,
					Rule:        rule.Text,
					Fingerprint: fp,
					Message:     "rule " + rule.Text + " references fingerprint " + fp + " with no node",
				})
				logger.Warn("rule fingerprint has no node", "rule", rule.Text, "fingerprint", fp)
			}
			view.Nodes[fp] = pv
		}
		for _, fp := range rule.Collisions {
			diags = append(diags, Diagnostic{
				Kind:        KindFingerprintClash,
				Rule:        rule.Text,
				Fingerprint: fp,
				Message:     "rule " + rule.Text + " declares fingerprint " + fp + " on more than one stage",
			})
			logger.Warn("rule fingerprint declared twice", "rule", rule.Text, "fingerprint", fp)
		}
		if _, ok := rule.Nodes[rule.Root]; rule.Root != "" && !ok {
			diags = append(diags, Diagnostic{
				Kind:        KindUnmappedFingerprint,
				Rule:        rule.Text,
				Fingerprint: rule.Root,
				Message:     "rule " + rule.Text + " has root " + rule.Root + " outside its plan",
			})
			logger.Warn("rule root not in plan", "rule", rule.Text, "root", rule.Root)
		}
		views = append(views, view)
	}
	return views, diags
}

func cloneOrEmpty(s []string) []string {
	if len(s) == 0 {
		return []string{}
	}
	return slices.Clone(s)
}
