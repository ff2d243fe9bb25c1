package solver

import (
	"context"
	"sort"
)

// cancelCheckMask sets how often the engine polls its context: once every
// cancelCheckMask+1 visited nodes.
const cancelCheckMask = 1023

// searchState is the mutable state of one depth-first search. counts[t]
// always equals the number of chosen units carrying dense trait t.
type searchState struct {
	chosen    []int
	chosenSet []bool
	cost      int
	counts    []int
}

func newSearchState(p *problem) *searchState {
	return &searchState{
		chosen:    make([]int, 0, p.maxSlots),
		chosenSet: make([]bool, p.size()),
		counts:    make([]int, len(p.traitIDs)),
	}
}

func (s *searchState) push(p *problem, i int) {
	s.chosen = append(s.chosen, i)
	s.chosenSet[i] = true
	s.cost += p.costs[i]
	for _, t := range p.traits[i] {
		s.counts[t]++
	}
}

// pop undoes the most recent push of i.
func (s *searchState) pop(p *problem, i int) {
	s.chosen = s.chosen[:len(s.chosen)-1]
	s.chosenSet[i] = false
	s.cost -= p.costs[i]
	for _, t := range p.traits[i] {
		s.counts[t]--
	}
}

// engine runs the backtracking search for a single team size over one state.
// An engine is not safe for concurrent use; parallel searches run one engine
// per task.
type engine struct {
	ctx      context.Context
	p        *problem
	state    *searchState
	teamSize int
	maxCost  int

	results []Composition
	stats   Stats

	steps   uint64
	stopped bool
}

func newEngine(ctx context.Context, p *problem, state *searchState, teamSize, maxCost int) *engine {
	return &engine{ctx: ctx, p: p, state: state, teamSize: teamSize, maxCost: maxCost}
}

// cancelled polls the context every cancelCheckMask+1 calls and latches.
func (e *engine) cancelled() bool {
	if e.stopped {
		return true
	}
	if e.steps&cancelCheckMask == 0 {
		select {
		case <-e.ctx.Done():
			e.stopped = true
		default:
		}
	}
	e.steps++
	return e.stopped
}

// prune applies the size, cost and region tests to the node (index, depth)
// and records which one fired. It reports whether the node must be dropped.
func (e *engine) prune(index, depth int) bool {
	slots := e.teamSize - depth
	if index >= e.p.size() || e.p.size()-index < slots {
		e.stats.SizePrunes++
		return true
	}
	if !e.p.costViable(e.state.cost, index, slots, e.maxCost) {
		e.stats.CostPrunes++
		return true
	}
	if !e.p.regionViable(e.state.counts, index, slots) {
		e.stats.RegionPrunes++
		return true
	}
	return false
}

// extend explores every completion of the current state that picks its
// remaining units from candidates index..n-1.
func (e *engine) extend(index, depth int) {
	if e.cancelled() {
		return
	}
	e.stats.NodesVisited++

	if depth == e.teamSize {
		e.leaf()
		return
	}
	if e.prune(index, depth) {
		return
	}

	slots := e.teamSize - depth
	n := e.p.size()
	for i := index; i < n; i++ {
		// Picking i would leave fewer candidates than the remaining slots.
		if n-i < slots {
			break
		}
		if e.state.chosenSet[i] {
			continue
		}
		e.state.push(e.p, i)
		if e.state.cost <= e.maxCost {
			e.extend(i+1, depth+1)
		}
		e.state.pop(e.p, i)
		if e.stopped {
			return
		}
	}
}

// leaf evaluates a full-size state. The region count is computed first so
// rejected leaves never build the detail map.
func (e *engine) leaf() {
	e.stats.LeavesEvaluated++
	s := e.state
	if s.cost > e.maxCost {
		return
	}
	regions := 0
	for slot, ti := range e.p.regionTraits {
		if s.counts[ti] >= e.p.regionMin[slot] {
			regions++
		}
	}
	if regions == 0 || regions < e.p.minRegions {
		return
	}

	details := make(map[string]int)
	for ti, n := range s.counts {
		if n == 0 {
			continue
		}
		if lvl := AchievedLevel(e.p.thresholds[ti], n); lvl > 0 {
			details[e.p.traitIDs[ti]] = lvl
		}
	}

	units := make([]string, len(s.chosen))
	for k, i := range s.chosen {
		units[k] = e.p.ids[i]
	}
	e.results = append(e.results, newComposition(units, s.cost, details))
	e.stats.Accepted++
}

func newComposition(units []string, cost int, details map[string]int) Composition {
	traits := make([]string, 0, len(details))
	for t := range details {
		traits = append(traits, t)
	}
	sort.Strings(traits)
	return Composition{
		Units:            units,
		TotalCost:        cost,
		ActivatedDetails: details,
		ActivatedTraits:  traits,
		TraitCount:       len(details),
	}
}
