// Package transform provides the graph passes that prepare a topology DAG
// for layered drawing.
//
// # Topological Order
//
// [TopoOrder] runs Kahn's algorithm with ties broken by node insertion
// order. It never fails: nodes trapped in a cycle are appended in
// lexicographic order after the ordered prefix, so every node appears
// exactly once.
//
// # Depth Assignment
//
// [AssignDepths] walks a topological order and sets each node's depth to
// one more than the deepest of its parents. On acyclic input every edge
// points strictly downward. [AssignLayers] combines both passes and writes
// the result into the graph's rows.
//
// # Cycle Detection
//
// Topologies are expected to be acyclic but are not required to be.
// [Cycles] reports every strongly connected component that contains a
// cycle, using Tarjan's algorithm from gonum, so callers can surface a
// diagnostic while the layout degrades gracefully.
//
// # Usage
//
//	order := transform.AssignLayers(g, roots)
//	for _, scc := range transform.Cycles(g) {
//	    logger.Warn("topology cycle", "nodes", scc)
//	}
package transform
