package core

import "sort"

// DefaultRegions is the reference target-region list: the thirteen origin
// traits of the game set the calculator was built for.
var DefaultRegions = []string{
	"Bilgewater",
	"Demacia",
	"Freljord",
	"Ionia",
	"Ixtal",
	"Noxus",
	"Piltover",
	"Shadow Isles",
	"Shurima",
	"Targon",
	"Void",
	"Yordle",
	"Zaun",
}

// RegionSet is an immutable set of target-region trait identifiers.
type RegionSet struct {
	ids     []string
	members map[string]struct{}
}

// NewRegionSet builds a set from ids. Duplicates and empty identifiers are dropped.
func NewRegionSet(ids ...string) RegionSet {
	rs := RegionSet{members: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := rs.members[id]; dup {
			continue
		}
		rs.members[id] = struct{}{}
		rs.ids = append(rs.ids, id)
	}
	sort.Strings(rs.ids)
	return rs
}

// DefaultRegionSet returns a RegionSet over DefaultRegions.
func DefaultRegionSet() RegionSet {
	return NewRegionSet(DefaultRegions...)
}

// Contains reports whether trait is a target region.
func (r RegionSet) Contains(trait string) bool {
	_, ok := r.members[trait]
	return ok
}

// IDs returns the region identifiers in ascending order.
func (r RegionSet) IDs() []string {
	return append([]string(nil), r.ids...)
}

// Len returns the number of regions.
func (r RegionSet) Len() int {
	return len(r.ids)
}
