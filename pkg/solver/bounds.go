package solver

// Both bounds are optimistic: they only reject a subtree when no completion
// of it can be accepted, so pruning never loses a valid composition.

// costViable reports whether the cheapest way to fill slots from candidates
// index..n-1 keeps cost within maxCost.
func (p *problem) costViable(cost, index, slots, maxCost int) bool {
	if slots <= 0 {
		return cost <= maxCost
	}
	if index > p.size() {
		return false
	}
	cheapest := p.suffixCosts[index]
	if len(cheapest) < slots {
		return false
	}
	for _, c := range cheapest[:slots] {
		cost += c
		if cost > maxCost {
			return false
		}
	}
	return true
}

// regionViable reports whether the target regions already activated, plus
// those still reachable by adding up to slots candidates from index..n-1,
// can reach minRegions.
func (p *problem) regionViable(counts []int, index, slots int) bool {
	activated, reachable := p.regionReach(counts, index, slots)
	return reachable >= p.minRegions || activated >= p.minRegions
}

// regionReach returns the number of region slots activated by counts and the
// size of the union of activated and reachable ones.
func (p *problem) regionReach(counts []int, index, slots int) (activated, union int) {
	r := len(p.regionTraits)
	var suffix []int
	if index < p.size() {
		suffix = p.suffixRegions[index*r : (index+1)*r]
	}
	for slot, ti := range p.regionTraits {
		have := counts[ti]
		if have >= p.regionMin[slot] {
			activated++
			union++
			continue
		}
		if suffix == nil {
			continue
		}
		if have+min(slots, suffix[slot]) >= p.regionMin[slot] {
			union++
		}
	}
	return activated, union
}
