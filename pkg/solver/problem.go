package solver

import (
	"sort"

	"github.com/traitcalc/traitcalc/pkg/core"
)

// problem is the dense, per-run view of the candidate pool the engine works
// on. Units and traits are addressed by small integers so the hot path never
// touches a map.
type problem struct {
	ids   []string // pool position → unit id
	costs []int
	// traits[i] lists the dense trait indices of candidate i.
	traits [][]int

	traitIDs   []string // dense trait index → trait id
	thresholds [][]int  // nil when the trait never activates

	// regionOf maps a dense trait index to its region slot, or -1.
	regionOf     []int
	regionTraits []int // region slot → dense trait index
	regionMin    []int // region slot → smallest threshold

	minRegions int
	maxSlots   int

	// suffixCosts[i] holds the min(maxSlots, n-i) smallest costs of
	// candidates i..n-1, ascending.
	suffixCosts [][]int
	// suffixRegions[i*R+r] counts candidates i..n-1 carrying region slot r.
	suffixRegions []int
}

// newProblem densifies candidates and precomputes the bound tables. Only
// activatable target-region traits get a region slot; the others can never
// contribute to the region count.
func newProblem(idx *core.Index, candidates []string, maxSlots, minRegions int) *problem {
	n := len(candidates)
	p := &problem{
		ids:        append([]string(nil), candidates...),
		costs:      make([]int, n),
		traits:     make([][]int, n),
		minRegions: minRegions,
		maxSlots:   maxSlots,
	}

	dense := make(map[string]int)
	thresholds := idx.Thresholds()
	for i, id := range candidates {
		p.costs[i], _ = idx.Cost(id)
		for _, t := range idx.UnitTraits(id) {
			ti, ok := dense[t]
			if !ok {
				ti = len(p.traitIDs)
				dense[t] = ti
				p.traitIDs = append(p.traitIDs, t)
				p.thresholds = append(p.thresholds, thresholds[t])
				p.regionOf = append(p.regionOf, -1)
				if th := thresholds[t]; len(th) > 0 && idx.IsRegion(t) {
					p.regionOf[ti] = len(p.regionTraits)
					p.regionTraits = append(p.regionTraits, ti)
					p.regionMin = append(p.regionMin, th[0])
				}
			}
			p.traits[i] = append(p.traits[i], ti)
		}
	}

	p.buildSuffixTables()
	return p
}

func (p *problem) buildSuffixTables() {
	n := len(p.ids)
	r := len(p.regionTraits)

	p.suffixCosts = make([][]int, n+1)
	p.suffixCosts[n] = []int{}
	for i := n - 1; i >= 0; i-- {
		next := p.suffixCosts[i+1]
		pos := sort.SearchInts(next, p.costs[i])
		merged := make([]int, 0, min(len(next)+1, p.maxSlots))
		merged = append(merged, next[:pos]...)
		merged = append(merged, p.costs[i])
		merged = append(merged, next[pos:]...)
		if len(merged) > p.maxSlots {
			merged = merged[:p.maxSlots]
		}
		p.suffixCosts[i] = merged
	}

	p.suffixRegions = make([]int, (n+1)*r)
	for i := n - 1; i >= 0; i-- {
		copy(p.suffixRegions[i*r:(i+1)*r], p.suffixRegions[(i+1)*r:(i+2)*r])
		for _, ti := range p.traits[i] {
			if slot := p.regionOf[ti]; slot >= 0 {
				p.suffixRegions[i*r+slot]++
			}
		}
	}
}

// size returns the number of candidates.
func (p *problem) size() int { return len(p.ids) }

// position returns the pool position of unit, or -1.
func (p *problem) position(unit string) int {
	for i, id := range p.ids {
		if id == unit {
			return i
		}
	}
	return -1
}
