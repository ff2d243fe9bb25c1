package solver

import (
	"sort"

	"github.com/traitcalc/traitcalc/pkg/core"
)

// AchievedLevel returns the largest threshold not exceeding count, or 0 when
// count is below every threshold. thresholds must be ascending.
func AchievedLevel(thresholds []int, count int) int {
	// Index of the first threshold > count.
	i := sort.SearchInts(thresholds, count+1)
	if i == 0 {
		return 0
	}
	return thresholds[i-1]
}

// Evaluate returns the activated traits for counts: trait → achieved threshold.
// Traits without an entry in thresholds never activate.
func Evaluate(counts map[string]int, thresholds map[string][]int) map[string]int {
	activated := make(map[string]int)
	for trait, n := range counts {
		if n <= 0 {
			continue
		}
		if lvl := AchievedLevel(thresholds[trait], n); lvl > 0 {
			activated[trait] = lvl
		}
	}
	return activated
}

// CountMembers returns trait → number of units carrying it.
// Units unknown to idx contribute nothing.
func CountMembers(idx *core.Index, units []string) map[string]int {
	counts := make(map[string]int)
	for _, u := range units {
		for _, t := range idx.UnitTraits(u) {
			counts[t]++
		}
	}
	return counts
}

// CountRegions returns how many keys of activated are target regions.
func CountRegions(activated map[string]int, regions core.RegionSet) int {
	n := 0
	for trait := range activated {
		if regions.Contains(trait) {
			n++
		}
	}
	return n
}
