package checker

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/traitcalc/traitcalc/api/v1alpha1"
)

// DefaultBestN is the length of a best-of listing.
const DefaultBestN = 5

// Ranked is a combination with its position in the file and its activated regions.
type Ranked struct {
	Index       int
	Combination v1alpha1.Combination
	Regions     []string
}

// Ranker orders combinations for a best-of listing.
type Ranker interface {
	// Title names the ordering in listings.
	Title() string
	// Less reports whether a ranks before b.
	Less(a, b Ranked) bool
}

// RankingStrategy is an enumeration of the orderings a Ranker can apply.
type RankingStrategy int

// enumeration of RankingStrategy
const (
	// LowestCost ranks by total cost asc, then trait count desc.
	LowestCost RankingStrategy = iota
	// MostTraits ranks by trait count desc, then total cost asc.
	MostTraits
	// MostRegions ranks by activated target regions desc, then total cost asc.
	MostRegions
)

// RankingStrategies lists every strategy in listing order.
var RankingStrategies = []RankingStrategy{LowestCost, MostTraits, MostRegions}

func (s RankingStrategy) String() string {
	switch s {
	case LowestCost:
		return "cost"
	case MostTraits:
		return "traits"
	case MostRegions:
		return "regions"
	default:
		return fmt.Sprintf("RankingStrategy(%d)", int(s))
	}
}

// ParseRankingStrategy maps a strategy name to its value.
func ParseRankingStrategy(name string) (RankingStrategy, error) {
	for _, s := range RankingStrategies {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown ranking strategy %q", name)
}

// NewRanker is a factory that creates a Ranker for the provided strategy.
func NewRanker(strategy RankingStrategy) (Ranker, error) {
	switch strategy {
	case LowestCost:
		return costRanker{}, nil
	case MostTraits:
		return traitRanker{}, nil
	case MostRegions:
		return regionRanker{}, nil
	default:
		return nil, fmt.Errorf("unsupported ranking strategy: %v", strategy)
	}
}

type costRanker struct{}

func (costRanker) Title() string { return "Lowest cost" }

func (costRanker) Less(a, b Ranked) bool {
	if a.Combination.TotalCost != b.Combination.TotalCost {
		return a.Combination.TotalCost < b.Combination.TotalCost
	}
	return a.Combination.TraitCount > b.Combination.TraitCount
}

type traitRanker struct{}

func (traitRanker) Title() string { return "Most traits" }

func (traitRanker) Less(a, b Ranked) bool {
	if a.Combination.TraitCount != b.Combination.TraitCount {
		return a.Combination.TraitCount > b.Combination.TraitCount
	}
	return a.Combination.TotalCost < b.Combination.TotalCost
}

type regionRanker struct{}

func (regionRanker) Title() string { return "Most target regions" }

func (regionRanker) Less(a, b Ranked) bool {
	if len(a.Regions) != len(b.Regions) {
		return len(a.Regions) > len(b.Regions)
	}
	return a.Combination.TotalCost < b.Combination.TotalCost
}

// Best returns the first n combinations of file under ranker. Ties keep file order.
func (c *Checker) Best(file *v1alpha1.ComboFile, ranker Ranker, n int) []Ranked {
	if n < 1 {
		n = DefaultBestN
	}
	ranked := make([]Ranked, len(file.Combinations))
	for i, combo := range file.Combinations {
		ranked[i] = Ranked{Index: i, Combination: combo, Regions: c.regionsOf(combo)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranker.Less(ranked[i], ranked[j]) })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// WriteBest renders a best-of listing as text.
func WriteBest(w io.Writer, ranker Ranker, ranked []Ranked) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (top %d):\n", ranker.Title(), len(ranked))
	for i, r := range ranked {
		fmt.Fprintf(&b, "  %d. Cost: %d, Traits: %d, Regions: %d\n",
			i+1, r.Combination.TotalCost, r.Combination.TraitCount, len(r.Regions))
		fmt.Fprintf(&b, "     Units: [%s]\n", strings.Join(r.Combination.Units, ", "))
		if _, ok := ranker.(regionRanker); ok {
			fmt.Fprintf(&b, "     Regions: [%s]\n", strings.Join(r.Regions, ", "))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
