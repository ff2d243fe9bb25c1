// Package config holds the reference tables and search parameters of a traitcalc search.
//
// This package defines the file-level shapes of the two reference tables and
// the search parameters, loads them from disk, and validates them before any
// index is built:
//
//   - TraitData: trait identifier → member units and activation tiers
//   - CostData: unit identifier → integer cost
//   - ReferenceTables: both tables, loaded together
//   - SearchSpec: team size range, budget, required units, region minimum
//
// Tables are read from JSON (.json) or YAML (.yaml, .yml) files:
//
//	tables, err := config.LoadReferenceTables("var/traits.json", "var/costs.json")
//	if err != nil {
//	    return err // *config.ConfigurationError names the table and key
//	}
//
//	spec := config.SearchSpec{StartUnits: 7, MaxUnits: 8, MaxCost: 50, MinRegions: 5}
//	if err := spec.Validate(); err != nil {
//	    return err // *config.InfeasibleParametersError
//	}
//
// Errors returned by this package and by the packages built on it belong to a
// small taxonomy (ConfigurationError, UnknownUnitError,
// InfeasibleParametersError); each one matches its sentinel through errors.Is.
package config
