package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/traitcalc/traitcalc/api/v1alpha1"
	"github.com/traitcalc/traitcalc/internal/actuator"
	"github.com/traitcalc/traitcalc/internal/collector"
	"github.com/traitcalc/traitcalc/internal/logging"
	"github.com/traitcalc/traitcalc/pkg/config"
	"github.com/traitcalc/traitcalc/pkg/core"
	"github.com/traitcalc/traitcalc/pkg/solver"
)

// Config holds the settings of one pipeline run.
type Config struct {
	Regions core.RegionSet
	Search  config.SearchSpec
	Solver  solver.OptimizerSpec
	// Timeout bounds the solver stage. Zero means no bound.
	Timeout time.Duration
}

// Outcome is what a run produced.
type Outcome struct {
	Index  *core.Index
	Result *solver.Result
	// File is nil when the optimizer has no actuator.
	File *v1alpha1.ComboFile
}

// Optimizer runs the search pipeline.
type Optimizer struct {
	source   collector.TableSource
	actuator *actuator.Actuator
	config   Config
}

// NewOptimizer creates an Optimizer. act may be nil to skip writing.
func NewOptimizer(source collector.TableSource, act *actuator.Actuator, cfg Config) (*Optimizer, error) {
	if source == nil {
		return nil, errors.New("optimizer: table source is nil")
	}
	if cfg.Regions.Len() == 0 {
		cfg.Regions = core.DefaultRegionSet()
	}
	return &Optimizer{source: source, actuator: act, config: cfg}, nil
}

// Optimize runs every stage once.
func (o *Optimizer) Optimize(ctx context.Context) (*Outcome, error) {
	logger := logging.FromContext(ctx)

	tables, err := o.source.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting reference tables: %w", err)
	}

	idx, err := core.NewIndex(tables, o.config.Regions)
	if err != nil {
		return nil, fmt.Errorf("building reference index: %w", err)
	}

	opt, err := solver.NewOptimizer(idx, o.config.Solver)
	if err != nil {
		return nil, fmt.Errorf("creating solver: %w", err)
	}

	searchCtx := ctx
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}
	result, err := opt.Optimize(searchCtx, o.config.Search)
	if err != nil {
		return nil, fmt.Errorf("searching compositions: %w", err)
	}

	outcome := &Outcome{Index: idx, Result: result}
	if o.actuator != nil {
		file, err := o.actuator.Apply(ctx, result)
		if err != nil {
			return nil, fmt.Errorf("writing results: %w", err)
		}
		outcome.File = file
	}

	logger.Info("Search completed",
		"source", o.source.Name(),
		"candidates", len(idx.Candidates(o.config.Search.MaxCost)),
		"combinations", result.Total,
		"truncated", result.Truncated,
		"nodes", result.Stats.NodesVisited,
		"elapsed", result.Elapsed.String())
	return outcome, nil
}
