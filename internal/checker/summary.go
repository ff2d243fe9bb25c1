package checker

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/traitcalc/traitcalc/api/v1alpha1"
)

// DefaultTopN is the length of the frequency listings of a Summary.
const DefaultTopN = 10

// Frequency counts how many combinations contain a name.
type Frequency struct {
	Name  string
	Count int
	// Rate is Count as a percentage of all combinations.
	Rate float64
}

// SizeCount is the number of combinations of one team size.
type SizeCount struct {
	Size  int
	Count int
}

// Summary holds the statistics of a result file.
type Summary struct {
	Total int

	MinCost, MaxCost int
	AvgCost          float64

	MinTraits, MaxTraits int
	AvgTraits            float64

	// Sizes is ordered by team size.
	Sizes []SizeCount
	// TopTraits and TopUnits are ordered by count desc, then name.
	TopTraits []Frequency
	TopUnits  []Frequency
	// Regions lists every target region in set order, including those never activated.
	Regions []Frequency
}

// Summarize computes the statistics of file. topN bounds the trait and unit
// listings; values below 1 mean DefaultTopN.
func (c *Checker) Summarize(file *v1alpha1.ComboFile, topN int) Summary {
	if topN < 1 {
		topN = DefaultTopN
	}
	combos := file.Combinations
	s := Summary{Total: len(combos)}

	sizes := make(map[int]int)
	traits := make(map[string]int)
	units := make(map[string]int)
	regions := make(map[string]int)
	costSum, traitSum := 0, 0
	for i, combo := range combos {
		if i == 0 || combo.TotalCost < s.MinCost {
			s.MinCost = combo.TotalCost
		}
		if i == 0 || combo.TotalCost > s.MaxCost {
			s.MaxCost = combo.TotalCost
		}
		if i == 0 || combo.TraitCount < s.MinTraits {
			s.MinTraits = combo.TraitCount
		}
		if i == 0 || combo.TraitCount > s.MaxTraits {
			s.MaxTraits = combo.TraitCount
		}
		costSum += combo.TotalCost
		traitSum += combo.TraitCount
		sizes[combo.Size()]++
		for _, t := range combo.ActivatedTraits {
			traits[t]++
		}
		for _, r := range c.regionsOf(combo) {
			regions[r]++
		}
		for _, u := range combo.Units {
			units[u]++
		}
	}
	if s.Total == 0 {
		return s
	}
	s.AvgCost = float64(costSum) / float64(s.Total)
	s.AvgTraits = float64(traitSum) / float64(s.Total)

	for size, n := range sizes {
		s.Sizes = append(s.Sizes, SizeCount{Size: size, Count: n})
	}
	sort.Slice(s.Sizes, func(i, j int) bool { return s.Sizes[i].Size < s.Sizes[j].Size })

	s.TopTraits = topFrequencies(traits, s.Total, topN)
	s.TopUnits = topFrequencies(units, s.Total, topN)
	for _, r := range c.index.Regions().IDs() {
		s.Regions = append(s.Regions, frequency(r, regions[r], s.Total))
	}
	return s
}

func frequency(name string, count, total int) Frequency {
	return Frequency{Name: name, Count: count, Rate: float64(count) / float64(total) * 100}
}

func topFrequencies(counts map[string]int, total, n int) []Frequency {
	out := make([]Frequency, 0, len(counts))
	for name, count := range counts {
		out = append(out, frequency(name, count, total))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Write renders the summary as text.
func (s Summary) Write(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Summary statistics:\n")
	fmt.Fprintf(&b, "Total combinations: %d\n", s.Total)
	if s.Total == 0 {
		_, err := io.WriteString(w, b.String())
		return err
	}
	fmt.Fprintf(&b, "Cost range: %d - %d\n", s.MinCost, s.MaxCost)
	fmt.Fprintf(&b, "Average cost: %.1f\n", s.AvgCost)
	fmt.Fprintf(&b, "Trait count range: %d - %d\n", s.MinTraits, s.MaxTraits)
	fmt.Fprintf(&b, "Average trait count: %.1f\n", s.AvgTraits)
	b.WriteString("Team size distribution:\n")
	for _, sc := range s.Sizes {
		fmt.Fprintf(&b, "  %d units: %d combinations\n", sc.Size, sc.Count)
	}
	writeFrequencies(&b, "Most common activated traits:", s.TopTraits)
	writeFrequencies(&b, "Target region activation rates:", s.Regions)
	writeFrequencies(&b, "Most used units:", s.TopUnits)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeFrequencies(b *strings.Builder, title string, fs []Frequency) {
	b.WriteString(title)
	b.WriteString("\n")
	for _, f := range fs {
		fmt.Fprintf(b, "  %s: %d times (%.1f%%)\n", f.Name, f.Count, f.Rate)
	}
}
