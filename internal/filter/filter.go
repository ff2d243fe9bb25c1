// Package filter narrows a result file to the combinations that contain a
// chosen set of units.
package filter

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/traitcalc/traitcalc/api/v1alpha1"
)

// DefaultLimit caps the number of listed matches.
const DefaultLimit = 100

// ErrNoSelection is returned when no unit is selected.
var ErrNoSelection = errors.New("select at least one unit")

// Match is a combination containing every selected unit.
type Match struct {
	Combination v1alpha1.Combination
	// Additional are the units beyond the selection, sorted.
	Additional []string
}

// Result is the outcome of a filter.
type Result struct {
	Selected []string
	// Total counts every match; Matches holds at most the limit.
	Total   int
	Matches []Match
}

// Filter returns the combinations whose units include every selected unit,
// ordered by total cost asc, then trait count desc. At most limit matches are
// listed; limit below 1 means DefaultLimit.
func Filter(combos []v1alpha1.Combination, selected []string, limit int) (*Result, error) {
	sel := make(map[string]struct{}, len(selected))
	for _, u := range selected {
		if u = strings.TrimSpace(u); u != "" {
			sel[u] = struct{}{}
		}
	}
	if len(sel) == 0 {
		return nil, ErrNoSelection
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	var kept []v1alpha1.Combination
	for _, c := range combos {
		if containsAll(c.Units, sel) {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].TotalCost != kept[j].TotalCost {
			return kept[i].TotalCost < kept[j].TotalCost
		}
		return kept[i].TraitCount > kept[j].TraitCount
	})

	res := &Result{Selected: sortedSet(sel), Total: len(kept)}
	for _, c := range kept[:min(limit, len(kept))] {
		res.Matches = append(res.Matches, Match{Combination: c, Additional: additional(c.Units, sel)})
	}
	return res, nil
}

// Units returns every unit appearing in combos, sorted.
func Units(combos []v1alpha1.Combination) []string {
	set := make(map[string]struct{})
	for _, c := range combos {
		for _, u := range c.Units {
			set[u] = struct{}{}
		}
	}
	return sortedSet(set)
}

func containsAll(units []string, sel map[string]struct{}) bool {
	found := 0
	seen := make(map[string]struct{}, len(units))
	for _, u := range units {
		if _, ok := sel[u]; !ok {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		found++
	}
	return found == len(sel)
}

func additional(units []string, sel map[string]struct{}) []string {
	extra := make(map[string]struct{}, len(units))
	for _, u := range units {
		if _, ok := sel[u]; !ok {
			extra[u] = struct{}{}
		}
	}
	return sortedSet(extra)
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Write renders the result as text.
func (r *Result) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Selected: [%s]\n", strings.Join(r.Selected, ", "))
	if r.Total == 0 {
		b.WriteString("No combinations found.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	fmt.Fprintf(&b, "Found %d combinations, displaying %d\n", r.Total, len(r.Matches))
	for i, m := range r.Matches {
		extra := "None"
		if len(m.Additional) > 0 {
			extra = strings.Join(m.Additional, ", ")
		}
		fmt.Fprintf(&b, "%d. Additional: %s | Cost: %d | Traits: %d | %s\n",
			i+1, extra, m.Combination.TotalCost, m.Combination.TraitCount,
			strings.Join(m.Combination.ActivatedTraits, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
