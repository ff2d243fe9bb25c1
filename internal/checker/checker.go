package checker

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/traitcalc/traitcalc/api/v1alpha1"
	"github.com/traitcalc/traitcalc/pkg/core"
	"github.com/traitcalc/traitcalc/pkg/solver"
)

// Top-level keys every result file carries.
var requiredFileKeys = []string{"search_parameters", "total_combinations_found", "combinations"}

// Fields every combination carries.
var requiredComboFields = []string{"units", "trait_count", "activated_traits", "total_cost", "activated_details"}

// Checker validates result files against one reference index.
type Checker struct {
	index *core.Index
}

// NewChecker creates a Checker for index.
func NewChecker(index *core.Index) (*Checker, error) {
	if index == nil {
		return nil, errors.New("checker: index is nil")
	}
	return &Checker{index: index}, nil
}

// Index returns the reference index.
func (c *Checker) Index() *core.Index { return c.index }

// CheckFile reads path and validates it. The decoded file is returned with
// the report; it is nil when the file misses a top-level key.
func (c *Checker) CheckFile(path string) (*Report, *v1alpha1.ComboFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading result file: %w", err)
	}
	report, file, err := c.CheckData(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return report, file, nil
}

// CheckData validates the raw JSON of a result file. Invalid JSON is an
// error; a missing key or field is reported as a problem of the file.
func (c *Checker) CheckData(data []byte) (*Report, *v1alpha1.ComboFile, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decoding result file: %w", err)
	}
	report := &Report{}
	for _, key := range requiredFileKeys {
		if _, ok := raw[key]; !ok {
			report.FileErrors = append(report.FileErrors, fmt.Sprintf("missing required key %q", key))
		}
	}
	if len(report.FileErrors) > 0 {
		return report, nil, nil
	}

	var rawCombos []map[string]json.RawMessage
	if err := json.Unmarshal(raw["combinations"], &rawCombos); err != nil {
		return nil, nil, fmt.Errorf("decoding combinations: %w", err)
	}
	missing := make(map[int][]string)
	for i, rc := range rawCombos {
		for _, field := range requiredComboFields {
			if _, ok := rc[field]; !ok {
				missing[i] = append(missing[i], fmt.Sprintf("missing field %q", field))
			}
		}
	}

	var file v1alpha1.ComboFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("decoding result file: %w", err)
	}
	c.check(report, &file, missing)
	return report, &file, nil
}

// Check validates a decoded result file.
func (c *Checker) Check(file *v1alpha1.ComboFile) *Report {
	report := &Report{}
	c.check(report, file, nil)
	return report
}

func (c *Checker) check(report *Report, file *v1alpha1.ComboFile, missing map[int][]string) {
	report.Parameters = file.SearchParameters
	report.Claimed = file.TotalCombinationsFound
	report.Actual = len(file.Combinations)
	if report.Claimed != report.Actual {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"claimed total (%d) does not match actual count (%d)", report.Claimed, report.Actual))
	}

	// first occurrence of every unit set, per team size
	seen := make(map[string]int)
	for i, combo := range file.Combinations {
		var problems []string
		if m := missing[i]; len(m) > 0 {
			problems = m
		} else {
			problems = c.CheckCombination(combo, file.SearchParameters)
			key := unitSetKey(combo.Units)
			if first, dup := seen[key]; dup {
				problems = append(problems, fmt.Sprintf("same units as combination %d", first+1))
			} else {
				seen[key] = i
			}
		}
		if len(problems) == 0 {
			report.Valid++
			continue
		}
		report.Invalid++
		for _, p := range problems {
			report.Errors = append(report.Errors, Issue{Combination: i, Message: p})
		}
	}
}

// CheckCombination returns the problems found in combo, none when it is valid.
func (c *Checker) CheckCombination(combo v1alpha1.Combination, params v1alpha1.SearchParameters) []string {
	var problems []string

	for _, u := range params.RequiredUnits {
		if !combo.HasUnit(u) {
			problems = append(problems, fmt.Sprintf("missing required unit %q", u))
		}
	}

	if size := combo.Size(); size < params.StartUnits || size > params.MaxUnits {
		problems = append(problems, fmt.Sprintf("team size %d not in range [%d, %d]",
			size, params.StartUnits, params.MaxUnits))
	}

	if combo.TotalCost > params.MaxCost {
		problems = append(problems, fmt.Sprintf("total cost %d exceeds maximum %d", combo.TotalCost, params.MaxCost))
	}
	calculated := 0
	for _, u := range combo.Units {
		cost, ok := c.index.Cost(u)
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown unit %q", u))
			continue
		}
		calculated += cost
	}
	if calculated != combo.TotalCost {
		problems = append(problems, fmt.Sprintf("cost mismatch: calculated %d, reported %d", calculated, combo.TotalCost))
	}

	expected := solver.Evaluate(solver.CountMembers(c.index, combo.Units), c.index.Thresholds())
	if missingTraits := keysMissing(expected, combo.ActivatedDetails); len(missingTraits) > 0 {
		problems = append(problems, fmt.Sprintf("missing activated traits: %s", strings.Join(missingTraits, ", ")))
	}
	if extra := keysMissing(combo.ActivatedDetails, expected); len(extra) > 0 {
		problems = append(problems, fmt.Sprintf("extra activated traits: %s", strings.Join(extra, ", ")))
	}
	for _, trait := range sortedKeys(expected) {
		got, ok := combo.ActivatedDetails[trait]
		if ok && got != expected[trait] {
			problems = append(problems, fmt.Sprintf("trait %s: expected threshold %d, got %d", trait, expected[trait], got))
		}
	}

	if !sameSet(combo.ActivatedTraits, combo.ActivatedDetails) {
		problems = append(problems, "activated_traits does not match activated_details keys")
	}
	if combo.TraitCount != len(combo.ActivatedDetails) {
		problems = append(problems, fmt.Sprintf("trait_count %d does not match activated traits count %d",
			combo.TraitCount, len(combo.ActivatedDetails)))
	}

	minRegions := params.EffectiveMinRegions()
	if regions := c.activatedRegions(combo.ActivatedDetails); len(regions) < minRegions {
		problems = append(problems, fmt.Sprintf("only %d target regions activated, need at least %d: [%s]",
			len(regions), minRegions, strings.Join(regions, ", ")))
	}

	if dups := duplicates(combo.Units); len(dups) > 0 {
		problems = append(problems, fmt.Sprintf("duplicate units: %s", strings.Join(dups, ", ")))
	}
	return problems
}

// activatedRegions returns the sorted target regions among the keys of details.
func (c *Checker) activatedRegions(details map[string]int) []string {
	var regions []string
	for trait := range details {
		if c.index.IsRegion(trait) {
			regions = append(regions, trait)
		}
	}
	sort.Strings(regions)
	return regions
}

// regionsOf returns the target regions in a combination's activated trait list.
func (c *Checker) regionsOf(combo v1alpha1.Combination) []string {
	var regions []string
	for _, t := range combo.ActivatedTraits {
		if c.index.IsRegion(t) {
			regions = append(regions, t)
		}
	}
	return regions
}

// unitSetKey identifies a unit set independent of order. Sets of different
// sizes never collide.
func unitSetKey(units []string) string {
	sorted := append([]string(nil), units...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}

func keysMissing(want, got map[string]int) []string {
	var out []string
	for k := range want {
		if _, ok := got[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sameSet(list []string, details map[string]int) bool {
	set := make(map[string]struct{}, len(list))
	for _, t := range list {
		if _, ok := details[t]; !ok {
			return false
		}
		set[t] = struct{}{}
	}
	return len(set) == len(details)
}

func duplicates(units []string) []string {
	counts := make(map[string]int, len(units))
	for _, u := range units {
		counts[u]++
	}
	var out []string
	for u, n := range counts {
		if n > 1 {
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return out
}
