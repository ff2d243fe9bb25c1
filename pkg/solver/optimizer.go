package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/traitcalc/traitcalc/internal/logging"
	"github.com/traitcalc/traitcalc/pkg/config"
	"github.com/traitcalc/traitcalc/pkg/core"
)

// Optimizer runs composition searches over one reference index.
// It holds no per-search state and may be shared between goroutines.
type Optimizer struct {
	index *core.Index
	spec  OptimizerSpec
}

// NewOptimizer creates an Optimizer for index.
func NewOptimizer(index *core.Index, spec OptimizerSpec) (*Optimizer, error) {
	if index == nil {
		return nil, errors.New("solver: index is nil")
	}
	if spec.Workers < 1 {
		spec.Workers = 1
	}
	if spec.Clock == nil {
		spec.Clock = clock.RealClock{}
	}
	return &Optimizer{index: index, spec: spec}, nil
}

// Workers returns the effective worker count.
func (o *Optimizer) Workers() int { return o.spec.Workers }

// task is one independent slice of the search: a team size plus the first
// pool position chosen after the required units. first is -1 when the
// required units alone fill the team.
type task struct {
	size  int
	first int
}

type taskResult struct {
	compositions []Composition
	stats        Stats
	stopped      bool
	elapsed      time.Duration
}

// Optimize searches every team size in [spec.StartUnits, spec.MaxUnits] and
// returns the aggregated result.
//
// The returned list is the same for any worker count. When ctx is cancelled
// the search unwinds and the compositions found so far are returned with
// Truncated set; no error is reported in that case.
func (o *Optimizer) Optimize(ctx context.Context, spec config.SearchSpec) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("validating search parameters: %w", err)
	}
	logger := logging.FromContext(ctx)
	clk := o.spec.Clock
	start := clk.Now()

	candidates := o.index.Candidates(spec.MaxCost)
	p := newProblem(o.index, candidates, spec.MaxUnits, spec.MinRegions)

	seeds, err := o.seedRequired(logger, p, spec.RequiredUnits)
	if err != nil {
		return nil, err
	}
	run := spec
	run.RequiredUnits = make([]string, len(seeds))
	for k, i := range seeds {
		run.RequiredUnits[k] = p.ids[i]
	}

	logger.V(logging.DEBUG).Info("Starting search",
		"candidates", p.size(),
		"regionTraits", len(p.regionTraits),
		"startUnits", run.StartUnits,
		"maxUnits", run.MaxUnits,
		"maxCost", run.MaxCost,
		"minRegions", run.MinRegions,
		"required", run.RequiredUnits,
		"workers", o.spec.Workers)

	var (
		tasks     []task
		rootStats = make(map[int]Stats)
	)
	for size := run.StartUnits; size <= run.MaxUnits; size++ {
		if size < len(seeds) {
			logger.V(logging.DEBUG).Info("Skipping team size smaller than the required units",
				"teamSize", size, "required", len(seeds))
			continue
		}
		sizeTasks, stats := planSize(ctx, p, seeds, size, run.MaxCost)
		tasks = append(tasks, sizeTasks...)
		rootStats[size] = stats
	}

	results := make([]taskResult, len(tasks))
	launched := 0
	var g errgroup.Group
	g.SetLimit(o.spec.Workers)
	for k, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		launched++
		g.Go(func() error {
			results[k] = runTask(ctx, clk, p, seeds, t, run.MaxCost)
			return nil
		})
	}
	// Tasks never fail; Wait only joins them.
	_ = g.Wait()

	res := &Result{Spec: run, Truncated: launched < len(tasks)}
	perSize := make([][]Composition, 0, run.MaxUnits-run.StartUnits+1)
	for size := run.StartUnits; size <= run.MaxUnits; size++ {
		root, planned := rootStats[size]
		if !planned {
			continue
		}
		sr := SizeResult{TeamSize: size, Stats: root}
		var found []Composition
		for k, t := range tasks {
			if t.size != size {
				continue
			}
			r := results[k]
			found = append(found, r.compositions...)
			sr.Stats.Add(r.stats)
			sr.Elapsed += r.elapsed
			if r.stopped {
				res.Truncated = true
			}
		}
		sr.Found = len(found)
		perSize = append(perSize, found)
		res.Sizes = append(res.Sizes, sr)
		res.Stats.Add(sr.Stats)

		logger.V(logging.DEBUG).Info("Searched team size",
			"teamSize", size,
			"found", sr.Found,
			"nodes", sr.Stats.NodesVisited,
			"costPrunes", sr.Stats.CostPrunes,
			"regionPrunes", sr.Stats.RegionPrunes)
		if o.spec.Observer != nil {
			o.spec.Observer.ObserveSize(sr)
		}
	}

	res.Compositions = Aggregate(perSize...)
	res.Total = len(res.Compositions)
	res.Elapsed = clk.Since(start)
	if res.Truncated {
		logger.Info("Search stopped before completion, result is partial",
			"found", res.Total, "reason", context.Cause(ctx))
	}
	if o.spec.Observer != nil {
		o.spec.Observer.ObserveRun(res)
	}
	return res, nil
}

// seedRequired resolves required units to pool positions, applying the
// required-unit policy to units outside the pool.
func (o *Optimizer) seedRequired(logger logr.Logger, p *problem, required []string) ([]int, error) {
	seeds := make([]int, 0, len(required))
	for _, u := range required {
		i := p.position(u)
		if i >= 0 {
			seeds = append(seeds, i)
			continue
		}
		err := &config.UnknownUnitError{Unit: u, Source: "required_units"}
		if o.spec.RequiredPolicy != RequiredPolicySkip {
			return nil, fmt.Errorf("seeding required units: %w", err)
		}
		logger.Info("Required unit is not an eligible candidate, skipping", "unit", u)
	}
	return seeds, nil
}

// newSeededState returns a fresh state holding the required units.
func newSeededState(p *problem, seeds []int) *searchState {
	s := newSearchState(p)
	for _, i := range seeds {
		s.push(p, i)
	}
	return s
}

// planSize evaluates the root node of a team size and returns its
// first-level branches as tasks, in the order a sequential search would
// visit them, together with the statistics of the root itself.
func planSize(ctx context.Context, p *problem, seeds []int, size, maxCost int) ([]task, Stats) {
	depth := len(seeds)
	if depth == size {
		return []task{{size: size, first: -1}}, Stats{}
	}
	e := newEngine(ctx, p, newSeededState(p, seeds), size, maxCost)
	e.stats.NodesVisited++
	if e.prune(0, depth) {
		return nil, e.stats
	}
	slots := size - depth
	n := p.size()
	var tasks []task
	for i := 0; i < n && n-i >= slots; i++ {
		if e.state.chosenSet[i] {
			continue
		}
		tasks = append(tasks, task{size: size, first: i})
	}
	return tasks, e.stats
}

func runTask(ctx context.Context, clk clock.PassiveClock, p *problem, seeds []int, t task, maxCost int) taskResult {
	start := clk.Now()
	state := newSeededState(p, seeds)
	e := newEngine(ctx, p, state, t.size, maxCost)
	if t.first < 0 {
		e.extend(0, len(seeds))
	} else {
		state.push(p, t.first)
		if state.cost <= maxCost {
			e.extend(t.first+1, len(seeds)+1)
		}
	}
	return taskResult{
		compositions: e.results,
		stats:        e.stats,
		stopped:      e.stopped,
		elapsed:      clk.Since(start),
	}
}
