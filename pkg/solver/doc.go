// Package solver implements the team composition search for traitcalc.
//
// The solver enumerates fixed-size subsets of the candidate pool and keeps the
// ones that stay within budget and activate enough target-region traits. The
// search is exact: every valid composition is found once and only once.
//
// Key Components:
//
//   - Evaluate: activation evaluator (largest threshold not exceeding a count)
//   - Bounds: admissible cost and region-reachability bounds used for pruning
//   - Engine: depth-first backtracking over increasing pool indices
//   - Aggregate: merges per-size results and sorts them
//   - Optimizer: high-level entry point running every team size of a spec
//
// Search Strategy:
//
// For each team size in [StartUnits, MaxUnits]:
//  1. Seed the search state with the required units
//  2. Extend with candidates in pool order, never revisiting earlier indices
//  3. Prune a subtree when the cheapest completion exceeds the budget, or when
//     the reachable target regions cannot meet the minimum
//  4. At full size, evaluate activations and accept or reject
//
// Example usage:
//
//	opt, err := solver.NewOptimizer(idx, solver.OptimizerSpec{Workers: 4})
//	if err != nil {
//	    return err
//	}
//
//	result, err := opt.Optimize(ctx, config.SearchSpec{
//	    StartUnits: 7, MaxUnits: 8, MaxCost: 50, MinRegions: 5,
//	})
//	if err != nil {
//	    return err
//	}
//
//	for _, c := range result.Compositions {
//	    log.Info("composition", "units", c.Units, "cost", c.TotalCost, "traits", c.TraitCount)
//	}
//
// The solver is designed to be:
//   - Complete: bounds are optimistic, the leaf test is authoritative
//   - Deterministic: same inputs and any worker count give the same list
//   - Cancellable: a cancelled context returns the partial result, marked Truncated
package solver
