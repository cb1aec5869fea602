// Package topology turns a declarative topology spec into a validated node
// graph.
//
// A spec lists node records across several buckets (input, per-stratum
// enter, rule stages, runtime and leave, inspect). [Build] concatenates the
// buckets, checks that ids are unique and that every child or declared
// parent exists, and derives the raw parent map and the parentless roots.
// The result also carries the per-rule plans keyed by fingerprint and a
// [dag.DAG] of the whole topology for cycle detection and export.
//
// Specs are read as JSON or YAML with [Decode] or [LoadFile].
//
// [dag.DAG]: github.com/matzehuels/flowprof/pkg/dag
package topology
