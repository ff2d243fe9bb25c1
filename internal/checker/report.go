package checker

import (
	"fmt"
	"io"
	"strings"

	"github.com/traitcalc/traitcalc/api/v1alpha1"
)

// maxReportedErrors bounds the errors Report.Write prints.
const maxReportedErrors = 10

// Issue is one problem found in a combination.
type Issue struct {
	// Combination is the zero-based position in the file.
	Combination int
	Message     string
}

func (i Issue) String() string {
	return fmt.Sprintf("combination %d: %s", i.Combination+1, i.Message)
}

// Report is the outcome of validating a result file.
type Report struct {
	Parameters v1alpha1.SearchParameters
	// Claimed is total_combinations_found; Actual is the list length.
	Claimed int
	Actual  int

	Valid   int
	Invalid int

	// FileErrors are structural problems; when set no combination was checked.
	FileErrors []string
	Errors     []Issue
	Warnings   []string
}

// OK reports whether the file and every combination in it are valid.
func (r *Report) OK() bool {
	return len(r.FileErrors) == 0 && r.Invalid == 0
}

// SuccessRate returns the percentage of valid combinations, 100 for an empty file.
func (r *Report) SuccessRate() float64 {
	checked := r.Valid + r.Invalid
	if checked == 0 {
		return 100
	}
	return float64(r.Valid) / float64(checked) * 100
}

// Write renders the report as text.
func (r *Report) Write(w io.Writer) error {
	var b strings.Builder
	if len(r.FileErrors) > 0 {
		for _, e := range r.FileErrors {
			fmt.Fprintf(&b, "ERROR: %s\n", e)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	p := r.Parameters
	b.WriteString("Search parameters:\n")
	fmt.Fprintf(&b, "  start_units: %d\n", p.StartUnits)
	fmt.Fprintf(&b, "  max_units: %d\n", p.MaxUnits)
	fmt.Fprintf(&b, "  max_cost: %d\n", p.MaxCost)
	fmt.Fprintf(&b, "  required_units: [%s]\n", strings.Join(p.RequiredUnits, ", "))
	fmt.Fprintf(&b, "  min_regions: %d\n", p.EffectiveMinRegions())
	fmt.Fprintf(&b, "Total combinations claimed: %d\n", r.Claimed)
	fmt.Fprintf(&b, "Actual combinations in file: %d\n", r.Actual)
	for _, warn := range r.Warnings {
		fmt.Fprintf(&b, "WARNING: %s\n", warn)
	}

	b.WriteString("\nValidation results:\n")
	fmt.Fprintf(&b, "  Valid combinations: %d\n", r.Valid)
	fmt.Fprintf(&b, "  Invalid combinations: %d\n", r.Invalid)
	fmt.Fprintf(&b, "  Success rate: %.1f%%\n", r.SuccessRate())
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\nFirst %d errors:\n", min(maxReportedErrors, len(r.Errors)))
		for _, issue := range r.Errors[:min(maxReportedErrors, len(r.Errors))] {
			fmt.Fprintf(&b, "  %s\n", issue)
		}
		if extra := len(r.Errors) - maxReportedErrors; extra > 0 {
			fmt.Fprintf(&b, "  ... and %d more errors\n", extra)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
