// Package layout computes the layered graph drawing of a topology.
//
// [Compute] takes the full DAG (not just the spanning tree), places every
// node on a layer below all of its parents and returns absolute box and edge
// geometry ready for an SVG renderer. The steps are:
//
//  1. Topological order by Kahn's algorithm in input order, with any
//     remainder (cycles) appended sorted. See [transform.TopoOrder].
//  2. Longest-path depths: roots at 0, every other node one below its
//     deepest parent. See [transform.AssignDepths].
//  3. Layers grouped by depth, each sorted by name, then reordered by an
//     [ordering.Orderer] ([ordering.Barycenter] by default).
//  4. Slot positions: layers are [Config.LayerGap] apart starting at
//     [Config.TopOffset], and the i-th of n nodes is centred at
//     (i+1)·width/(n+1).
//  5. Box sizing by word-wrapping the label (see [Wrap] and
//     [Config.BoxSize]).
//  6. Orthogonal edges from the bottom centre of the parent through the
//     vertical midpoint to the top centre of the child.
//  7. Fill colour interpolated between [Config.ColdColor] and
//     [Config.HotColor] by the node's share of the largest weight.
//
// Compute never fails. Children that are not in the input are ignored and
// cycles produce a layout whose edges may point upward.
//
// [transform.TopoOrder]: github.com/matzehuels/flowprof/pkg/dag/transform.TopoOrder
// [transform.AssignDepths]: github.com/matzehuels/flowprof/pkg/dag/transform.AssignDepths
package layout
