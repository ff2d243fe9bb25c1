package solver

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/traitcalc/traitcalc/pkg/config"
)

// Composition is an accepted team.
type Composition struct {
	// Units holds the required units first, then the rest in pool order.
	Units     []string
	TotalCost int
	// ActivatedDetails maps each activated trait to its achieved threshold.
	ActivatedDetails map[string]int
	// ActivatedTraits is the sorted key set of ActivatedDetails.
	ActivatedTraits []string
	// TraitCount equals len(ActivatedDetails).
	TraitCount int
}

// Size returns the number of units in the composition.
func (c *Composition) Size() int { return len(c.Units) }

// Stats counts search events.
type Stats struct {
	NodesVisited    uint64
	CostPrunes      uint64
	RegionPrunes    uint64
	SizePrunes      uint64
	LeavesEvaluated uint64
	Accepted        uint64
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.NodesVisited += o.NodesVisited
	s.CostPrunes += o.CostPrunes
	s.RegionPrunes += o.RegionPrunes
	s.SizePrunes += o.SizePrunes
	s.LeavesEvaluated += o.LeavesEvaluated
	s.Accepted += o.Accepted
}

// SizeResult summarizes the search of one team size.
type SizeResult struct {
	TeamSize int
	Found    int
	Stats    Stats
	// Elapsed is the summed wall time of the tasks of this size.
	Elapsed time.Duration
}

// Result is the aggregated outcome of a search.
type Result struct {
	// Spec is the search as run. RequiredUnits lists the units actually
	// seeded, which differs from the request only under RequiredPolicySkip.
	Spec config.SearchSpec
	// Compositions is sorted by total cost ascending, then trait count descending.
	Compositions []Composition
	Total        int
	// Truncated is set when the search stopped early on context cancellation.
	Truncated bool
	Stats     Stats
	Sizes     []SizeResult
	Elapsed   time.Duration
}

// RequiredPolicy says what to do with a required unit that is not in the
// candidate pool.
type RequiredPolicy int

const (
	// RequiredPolicyFail rejects the search with an *config.UnknownUnitError.
	RequiredPolicyFail RequiredPolicy = iota
	// RequiredPolicySkip drops the unit and logs a warning.
	RequiredPolicySkip
)

func (p RequiredPolicy) String() string {
	switch p {
	case RequiredPolicyFail:
		return "fail"
	case RequiredPolicySkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Observer receives search statistics. Implementations must be safe for use
// by a single goroutine at a time; the optimizer never calls them concurrently.
type Observer interface {
	ObserveSize(size SizeResult)
	ObserveRun(result *Result)
}

// OptimizerSpec configures an Optimizer.
type OptimizerSpec struct {
	// Workers bounds the number of concurrent search tasks. Values below 1 mean 1.
	Workers        int
	RequiredPolicy RequiredPolicy
	// Observer, if set, is notified after each team size and after the run.
	Observer Observer
	// Clock times the run and its tasks. Nil means the wall clock.
	Clock clock.PassiveClock
}
