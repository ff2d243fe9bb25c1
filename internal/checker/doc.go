// Package checker re-validates a result file against the reference tables.
//
// Every combination is re-derived from the cost and trait tables: its cost,
// its activated traits and achieved thresholds, its target-region count and
// its size are recomputed and compared with what the file claims. Beyond
// validation the package summarizes a result file, ranks its combinations
// under several orderings and renders a detailed view of one combination.
//
// The checker is independent of the search: it only shares the activation
// rules of pkg/solver, so a file produced by any tool can be checked.
package checker
