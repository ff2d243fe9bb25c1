package config

import "fmt"

// Search parameter defaults, matching the reference run of the calculator.
const (
	DefaultStartUnits = 7
	DefaultMaxUnits   = 8
	DefaultMaxCost    = 50
	DefaultMinRegions = 5
)

// SearchSpec holds the parameters of one search.
type SearchSpec struct {
	// StartUnits and MaxUnits bound the team size, inclusive.
	StartUnits int `json:"start_units" yaml:"start_units"`
	MaxUnits   int `json:"max_units" yaml:"max_units"`
	// MaxCost is the inclusive budget.
	MaxCost int `json:"max_cost" yaml:"max_cost"`
	// RequiredUnits are forced into every composition.
	RequiredUnits []string `json:"required_units" yaml:"required_units"`
	// MinRegions is the minimum number of activated target-region traits.
	MinRegions int `json:"min_regions" yaml:"min_regions"`
}

// DefaultSearchSpec returns the reference parameters.
func DefaultSearchSpec() SearchSpec {
	return SearchSpec{
		StartUnits: DefaultStartUnits,
		MaxUnits:   DefaultMaxUnits,
		MaxCost:    DefaultMaxCost,
		MinRegions: DefaultMinRegions,
	}
}

// Validate checks that the parameters admit a search.
func (s *SearchSpec) Validate() error {
	if s.StartUnits < 1 {
		return &InfeasibleParametersError{Field: "start_units", Reason: fmt.Sprintf("must be >= 1, got %d", s.StartUnits)}
	}
	if s.StartUnits > s.MaxUnits {
		return &InfeasibleParametersError{
			Field:  "start_units",
			Reason: fmt.Sprintf("start_units (%d) exceeds max_units (%d)", s.StartUnits, s.MaxUnits),
		}
	}
	if s.MaxCost < 0 {
		return &InfeasibleParametersError{Field: "max_cost", Reason: fmt.Sprintf("must be >= 0, got %d", s.MaxCost)}
	}
	if s.MinRegions < 1 {
		return &InfeasibleParametersError{Field: "min_regions", Reason: fmt.Sprintf("must be >= 1, got %d", s.MinRegions)}
	}
	if len(s.RequiredUnits) > s.MaxUnits {
		return &InfeasibleParametersError{
			Field:  "required_units",
			Reason: fmt.Sprintf("%d required units do not fit in max_units (%d)", len(s.RequiredUnits), s.MaxUnits),
		}
	}
	seen := make(map[string]struct{}, len(s.RequiredUnits))
	for _, u := range s.RequiredUnits {
		if _, dup := seen[u]; dup {
			return &InfeasibleParametersError{Field: "required_units", Reason: fmt.Sprintf("unit %q listed twice", u)}
		}
		seen[u] = struct{}{}
	}
	return nil
}
