// Package optimizer implements the search pipeline for traitcalc.
//
// The optimizer package orchestrates one search run by coordinating table
// collection, index building, the solver and the actuator.
//
// Architecture:
//
// The optimizer follows a pipeline pattern:
//
//	Table Collection → Index Builder → Solver → Actuator
//	   (Collector)        (core)      (solver)  (Actuator)
//
// The optimizer sits in the middle, orchestrating these components.
//
// Example usage:
//
//	opt, err := optimizer.NewOptimizer(
//	    collector.NewTableSource(cfg.TraitsPath, cfg.CostsPath),
//	    actuator.NewActuator(cfg.OutputPath),
//	    optimizer.Config{
//	        Regions: cfg.RegionSet(),
//	        Search:  cfg.Search,
//	        Solver:  solver.OptimizerSpec{Workers: cfg.Workers},
//	        Timeout: cfg.Timeout,
//	    },
//	)
//	if err != nil {
//	    return err
//	}
//
//	outcome, err := opt.Optimize(ctx)
//	if err != nil {
//	    log.Error(err, "search failed")
//	    return err
//	}
//
//	log.Info("search complete",
//	    "combinations", outcome.Result.Total,
//	    "truncated", outcome.Result.Truncated)
//
// Optimization Flow:
//
//  1. Collect Tables
//     - Read the trait and cost tables (or scrape a markup page)
//     - Fail with a configuration error naming the table at fault
//
//  2. Build Index
//     - Derive thresholds, unit heuristics and the ordered candidate pool
//
//  3. Invoke Solver
//     - Validate the search parameters
//     - Search every team size, bounded by the optional timeout
//
//  4. Actuate
//     - Write the result file atomically
//
// Error Handling:
//
// Every stage failure aborts the run and is returned wrapped with the stage
// name. A timeout is not a failure: the partial result is written and
// flagged as truncated.
package optimizer
