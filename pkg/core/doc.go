// Package core provides the domain model and the reference index for the traitcalc search engine.
//
// This package turns the raw reference tables into the structures the solver
// works on:
//
//   - Unit: a collectible unit with its cost and the traits it carries
//   - Trait: a bonus category with its member units and activation thresholds
//   - RegionSet: the designated target-region traits that receive special counting
//   - Index: the inverse unit → traits mapping, per-unit heuristics, and the
//     ordered candidate pool
//
// Example usage:
//
//	tables, err := config.LoadReferenceTables(traitsPath, costsPath)
//	if err != nil {
//	    return err
//	}
//
//	idx, err := core.NewIndex(tables, core.DefaultRegionSet())
//	if err != nil {
//	    return err
//	}
//
//	// Units eligible under a budget of 50, best-first
//	for _, id := range idx.Candidates(50) {
//	    fmt.Println(id, idx.RegionCoverage(id), idx.TraitCount(id))
//	}
//
// The core package is designed to be:
//   - Immutable once built (an Index is safe for concurrent readers)
//   - Deterministic (the same tables always give the same candidate order)
//   - Independent of file formats and of the search algorithm
package core
