package solver

import "sort"

// Aggregate concatenates per-size compositions in order and sorts them by
// total cost ascending, then trait count descending. The sort is stable, so
// ties keep their discovery order. No deduplication happens across sizes.
func Aggregate(perSize ...[]Composition) []Composition {
	n := 0
	for _, s := range perSize {
		n += len(s)
	}
	all := make([]Composition, 0, n)
	for _, s := range perSize {
		all = append(all, s...)
	}
	SortCompositions(all)
	return all
}

// SortCompositions sorts in place by (total cost asc, trait count desc), stably.
func SortCompositions(cs []Composition) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].TotalCost != cs[j].TotalCost {
			return cs[i].TotalCost < cs[j].TotalCost
		}
		return cs[i].TraitCount > cs[j].TraitCount
	})
}
