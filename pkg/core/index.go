package core

import (
	"sort"
	"strconv"
	"strings"

	"github.com/traitcalc/traitcalc/internal/logging"
	"github.com/traitcalc/traitcalc/pkg/config"
)

// Index is the derived, read-only view of the reference tables that the
// solver and the checker work from. It is built once by NewIndex.
type Index struct {
	units   map[string]*Unit
	costs   map[string]int
	traits  map[string]*Trait
	regions RegionSet

	// thresholds holds only traits with at least one parsed threshold.
	thresholds map[string][]int

	regionCoverage map[string]int
	traitCount     map[string]int

	// pool is the budget-independent candidate pool, best-first.
	pool []string
}

// NewIndex derives the unit → traits mapping, the threshold index, the per-unit
// heuristics and the ordered candidate pool from tables.
//
// Threshold keys that do not parse as positive integers are dropped; a trait
// left with no threshold is kept (it still counts toward unit heuristics) but
// never activates.
func NewIndex(tables *config.ReferenceTables, regions RegionSet) (*Index, error) {
	if tables == nil || tables.Traits == nil {
		return nil, &config.ConfigurationError{Table: config.TableTraits, Reason: "table is absent"}
	}
	if tables.Costs == nil {
		return nil, &config.ConfigurationError{Table: config.TableCosts, Reason: "table is absent"}
	}

	idx := &Index{
		units:          make(map[string]*Unit),
		costs:          make(map[string]int, len(tables.Costs)),
		traits:         make(map[string]*Trait, len(tables.Traits)),
		regions:        regions,
		thresholds:     make(map[string][]int),
		regionCoverage: make(map[string]int),
		traitCount:     make(map[string]int),
	}

	costUnits := make([]string, 0, len(tables.Costs))
	for unit := range tables.Costs {
		costUnits = append(costUnits, unit)
	}
	sort.Strings(costUnits)

	for _, unit := range costUnits {
		cost := tables.Costs[unit]
		if unit == "" {
			return nil, &config.ConfigurationError{Table: config.TableCosts, Reason: "empty unit identifier"}
		}
		if cost <= 0 {
			return nil, &config.ConfigurationError{
				Table: config.TableCosts, Key: unit, Reason: "cost must be a positive integer, got " + strconv.Itoa(cost),
			}
		}
		idx.costs[unit] = cost
	}

	traitIDs := make([]string, 0, len(tables.Traits))
	for id := range tables.Traits {
		traitIDs = append(traitIDs, id)
	}
	sort.Strings(traitIDs)

	for _, id := range traitIDs {
		if id == "" {
			return nil, &config.ConfigurationError{Table: config.TableTraits, Reason: "empty trait identifier"}
		}
		spec := tables.Traits[id]
		trait := &Trait{
			ID:         id,
			Thresholds: ParseThresholds(spec.Activations),
			Members:    dedupeSorted(spec.Units),
		}
		for _, m := range trait.Members {
			if m == "" {
				return nil, &config.ConfigurationError{Table: config.TableTraits, Key: id, Reason: "empty unit identifier in units"}
			}
		}
		idx.traits[id] = trait
		if trait.Activatable() {
			idx.thresholds[id] = trait.Thresholds
		}

		for _, m := range trait.Members {
			u := idx.unit(m)
			u.Traits = append(u.Traits, id)
		}
	}

	for unit, cost := range idx.costs {
		idx.unit(unit).Cost = cost
	}

	for id, u := range idx.units {
		// traitIDs is sorted, so u.Traits already is.
		idx.traitCount[id] = len(u.Traits)
		for _, t := range u.Traits {
			if regions.Contains(t) {
				idx.regionCoverage[id]++
			}
		}
	}

	idx.pool = idx.buildPool()

	logging.Log.V(logging.DEBUG).Info("Built reference index",
		"traits", len(idx.traits),
		"activatableTraits", len(idx.thresholds),
		"units", len(idx.units),
		"pool", len(idx.pool))

	return idx, nil
}

// unit returns the unit entry for id, creating it on first use.
func (idx *Index) unit(id string) *Unit {
	u, ok := idx.units[id]
	if !ok {
		u = &Unit{ID: id}
		idx.units[id] = u
	}
	return u
}

// buildPool filters units to those with a known cost and at least one region
// trait, ordered by region coverage desc, trait count desc, cost asc, id asc.
func (idx *Index) buildPool() []string {
	pool := make([]string, 0, len(idx.units))
	for id := range idx.units {
		if _, ok := idx.costs[id]; !ok {
			if idx.regionCoverage[id] > 0 {
				logging.Log.V(logging.DEBUG).Info("Skipping unit without cost", "unit", id)
			}
			continue
		}
		if idx.regionCoverage[id] == 0 {
			continue
		}
		pool = append(pool, id)
	}
	sort.Slice(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if idx.regionCoverage[a] != idx.regionCoverage[b] {
			return idx.regionCoverage[a] > idx.regionCoverage[b]
		}
		if idx.traitCount[a] != idx.traitCount[b] {
			return idx.traitCount[a] > idx.traitCount[b]
		}
		if idx.costs[a] != idx.costs[b] {
			return idx.costs[a] < idx.costs[b]
		}
		return a < b
	})
	return pool
}

// ParseThresholds extracts the distinct positive integer keys of activations,
// ascending. Keys that do not parse are ignored.
func ParseThresholds(activations map[string]string) []int {
	seen := make(map[int]struct{}, len(activations))
	out := make([]int, 0, len(activations))
	for k := range activations {
		n, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || n <= 0 {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func dedupeSorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	n := 0
	for i, s := range out {
		if i > 0 && s == out[n-1] {
			continue
		}
		out[n] = s
		n++
	}
	return out[:n]
}

// Regions returns the target-region set the index was built with.
func (idx *Index) Regions() RegionSet { return idx.regions }

// IsRegion reports whether trait is a target region.
func (idx *Index) IsRegion(trait string) bool { return idx.regions.Contains(trait) }

// Cost returns the cost of unit and whether it is in the cost table.
func (idx *Index) Cost(unit string) (int, bool) {
	c, ok := idx.costs[unit]
	return c, ok
}

// Unit returns a copy of the unit entry.
func (idx *Index) Unit(id string) (Unit, bool) {
	u, ok := idx.units[id]
	if !ok {
		return Unit{}, false
	}
	cp := *u
	cp.Traits = append([]string(nil), u.Traits...)
	return cp, true
}

// UnitTraits returns the sorted traits of unit. The slice must not be modified.
func (idx *Index) UnitTraits(unit string) []string {
	if u, ok := idx.units[unit]; ok {
		return u.Traits
	}
	return nil
}

// Trait returns the trait entry.
func (idx *Index) Trait(id string) (*Trait, bool) {
	t, ok := idx.traits[id]
	return t, ok
}

// TraitIDs returns every trait identifier, sorted.
func (idx *Index) TraitIDs() []string {
	ids := make([]string, 0, len(idx.traits))
	for id := range idx.traits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Thresholds returns the trait → thresholds index for activatable traits.
// The map is shared and must not be modified.
func (idx *Index) Thresholds() map[string][]int { return idx.thresholds }

// RegionCoverage returns how many target-region traits unit belongs to.
func (idx *Index) RegionCoverage(unit string) int { return idx.regionCoverage[unit] }

// TraitCount returns how many traits unit belongs to.
func (idx *Index) TraitCount(unit string) int { return idx.traitCount[unit] }

// Pool returns the full candidate pool, best-first.
func (idx *Index) Pool() []string {
	return append([]string(nil), idx.pool...)
}

// Candidates returns the pool restricted to units whose own cost fits maxCost,
// keeping the pool order.
func (idx *Index) Candidates(maxCost int) []string {
	out := make([]string, 0, len(idx.pool))
	for _, id := range idx.pool {
		if idx.costs[id] <= maxCost {
			out = append(out, id)
		}
	}
	return out
}
