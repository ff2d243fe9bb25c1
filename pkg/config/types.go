package config

// TraitSpec is one entry of the trait table.
type TraitSpec struct {
	// Units are the member unit identifiers.
	Units []string `json:"units" yaml:"units"`
	// Activations maps an activation threshold (as text) to its bonus description.
	// Keys that do not parse as positive integers are ignored by the index.
	Activations map[string]string `json:"activations" yaml:"activations"`
}

// TraitData maps trait identifier to its spec.
type TraitData map[string]TraitSpec

// CostData maps unit identifier to its cost.
type CostData map[string]int

// ReferenceTables bundles the two tables a search consumes. Both are treated
// as immutable once loaded.
type ReferenceTables struct {
	Traits TraitData
	Costs  CostData
}
