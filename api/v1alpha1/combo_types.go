// Package v1alpha1 holds the wire types of the traitcalc result file.
//
// The field names are the contract with the downstream validator and
// browsing tools and must not change within this version.
package v1alpha1

// ComboFile is the result artifact of one search run.
type ComboFile struct {
	// SearchParameters echoes the parameters the search ran with.
	SearchParameters SearchParameters `json:"search_parameters"`

	// TotalCombinationsFound equals len(Combinations).
	TotalCombinationsFound int `json:"total_combinations_found"`

	// Combinations is sorted by total cost ascending, then trait count descending.
	Combinations []Combination `json:"combinations"`

	// Truncated is set when the search was cancelled before completion.
	// +optional
	Truncated bool `json:"truncated,omitempty"`
}

// SearchParameters are the inputs of a search.
type SearchParameters struct {
	StartUnits int `json:"start_units"`
	MaxUnits   int `json:"max_units"`
	MaxCost    int `json:"max_cost"`

	// RequiredUnits is always present, empty when no unit is required.
	RequiredUnits []string `json:"required_units"`

	// MinRegions is the minimum number of activated target regions.
	// Files without it were produced with the default of 5.
	// +optional
	MinRegions int `json:"min_regions,omitempty"`
}

// Combination is one accepted team.
type Combination struct {
	Units []string `json:"units"`

	// TraitCount equals len(ActivatedDetails).
	TraitCount int `json:"trait_count"`

	// ActivatedTraits holds the keys of ActivatedDetails, sorted.
	ActivatedTraits []string `json:"activated_traits"`

	TotalCost int `json:"total_cost"`

	// ActivatedDetails maps trait to achieved activation threshold.
	ActivatedDetails map[string]int `json:"activated_details"`
}

// DefaultMinRegions applies to files that do not record min_regions.
const DefaultMinRegions = 5

// EffectiveMinRegions returns MinRegions, or DefaultMinRegions when unset.
func (p SearchParameters) EffectiveMinRegions() int {
	if p.MinRegions > 0 {
		return p.MinRegions
	}
	return DefaultMinRegions
}

// Size returns the number of units.
func (c Combination) Size() int {
	return len(c.Units)
}

// HasUnit reports whether unit is part of the combination.
func (c Combination) HasUnit(unit string) bool {
	for _, u := range c.Units {
		if u == unit {
			return true
		}
	}
	return false
}
