// Package dag provides a small, concurrency-safe directed acyclic graph keyed
// by string IDs.
//
// An edge from A to B records that B depends on A: B may only be evaluated
// once A has been. The graph itself allows cycles to be added; callers run
// DetectCycles (or TopologicalOrder, which reports the same error) once the
// topology is complete, so a misconfigured description is rejected before
// anything is evaluated.
//
// Iteration order is deterministic. Nodes are remembered in insertion order
// and every query that returns several IDs returns them in that order, which
// makes the topological order a pure function of the declarations.
package dag
