package checker

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/traitcalc/traitcalc/api/v1alpha1"
)

// UnitDetail describes one unit of an inspected combination.
type UnitDetail struct {
	Name string
	// Cost is 0 when Known is false.
	Cost   int
	Known  bool
	Traits []string
}

// ActivatedTrait is one activated trait of an inspected combination.
type ActivatedTrait struct {
	Trait     string
	Threshold int
	Region    bool
}

// Inspection is the detailed view of one combination.
type Inspection struct {
	Index       int
	Combination v1alpha1.Combination

	Units          []UnitDetail
	CalculatedCost int

	// Activated is sorted by trait.
	Activated        []ActivatedTrait
	RegionsActivated int
	RegionTotal      int

	Problems []string
}

// Valid reports whether the combination passed every check.
func (in *Inspection) Valid() bool { return len(in.Problems) == 0 }

// Inspect returns the detailed view of the combination at index i.
func (c *Checker) Inspect(file *v1alpha1.ComboFile, i int) (*Inspection, error) {
	if i < 0 || i >= len(file.Combinations) {
		if len(file.Combinations) == 0 {
			return nil, fmt.Errorf("invalid combination index %d: the file holds no combinations", i)
		}
		return nil, fmt.Errorf("invalid combination index %d, valid range 0-%d", i, len(file.Combinations)-1)
	}
	combo := file.Combinations[i]
	in := &Inspection{
		Index:       i,
		Combination: combo,
		RegionTotal: c.index.Regions().Len(),
		Problems:    c.CheckCombination(combo, file.SearchParameters),
	}
	for _, u := range combo.Units {
		cost, known := c.index.Cost(u)
		in.CalculatedCost += cost
		in.Units = append(in.Units, UnitDetail{
			Name:   u,
			Cost:   cost,
			Known:  known,
			Traits: append([]string(nil), c.index.UnitTraits(u)...),
		})
	}

	traits := append([]string(nil), combo.ActivatedTraits...)
	sort.Strings(traits)
	for _, t := range traits {
		region := c.index.IsRegion(t)
		if region {
			in.RegionsActivated++
		}
		in.Activated = append(in.Activated, ActivatedTrait{
			Trait:     t,
			Threshold: combo.ActivatedDetails[t],
			Region:    region,
		})
	}
	return in, nil
}

// Write renders the inspection as text.
func (in *Inspection) Write(w io.Writer) error {
	var b strings.Builder
	combo := in.Combination
	fmt.Fprintf(&b, "Combination #%d:\n", in.Index+1)
	fmt.Fprintf(&b, "Units: [%s]\n", strings.Join(combo.Units, ", "))
	fmt.Fprintf(&b, "Total cost: %d\n", combo.TotalCost)
	fmt.Fprintf(&b, "Team size: %d\n", combo.Size())
	fmt.Fprintf(&b, "Trait count: %d\n", combo.TraitCount)

	b.WriteString("\nUnit costs:\n")
	for _, u := range in.Units {
		if u.Known {
			fmt.Fprintf(&b, "  %s: %d\n", u.Name, u.Cost)
		} else {
			fmt.Fprintf(&b, "  %s: unknown\n", u.Name)
		}
	}
	fmt.Fprintf(&b, "  Total: %d\n", in.CalculatedCost)

	b.WriteString("\nUnit traits:\n")
	for _, u := range in.Units {
		fmt.Fprintf(&b, "  %s: [%s]\n", u.Name, strings.Join(u.Traits, ", "))
	}

	b.WriteString("\nActivated traits:\n")
	for _, a := range in.Activated {
		marker := ""
		if a.Region {
			marker = " [TARGET REGION]"
		}
		fmt.Fprintf(&b, "  %s: threshold %d%s\n", a.Trait, a.Threshold, marker)
	}
	fmt.Fprintf(&b, "\nTarget regions activated: %d/%d\n", in.RegionsActivated, in.RegionTotal)

	if in.Valid() {
		b.WriteString("\nThis combination is VALID\n")
	} else {
		b.WriteString("\nThis combination has ERRORS:\n")
		for _, p := range in.Problems {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
