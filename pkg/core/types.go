package core

// Unit is a collectible unit. Immutable once loaded.
type Unit struct {
	ID   string
	Cost int
	// Traits are the identifiers of the traits the unit belongs to, sorted.
	Traits []string
}

// Trait is a bonus category. Immutable once loaded.
type Trait struct {
	ID string
	// Thresholds are the distinct positive activation levels, ascending.
	// Empty when no activation key parsed; such a trait never activates.
	Thresholds []int
	// Members are the member unit identifiers, sorted and distinct.
	Members []string
}

// Activatable reports whether the trait has at least one usable threshold.
func (t *Trait) Activatable() bool {
	return len(t.Thresholds) > 0
}

// MinThreshold returns the smallest activation level, or 0 when the trait
// cannot activate.
func (t *Trait) MinThreshold() int {
	if len(t.Thresholds) == 0 {
		return 0
	}
	return t.Thresholds[0]
}
