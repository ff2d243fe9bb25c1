package solver

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/traitcalc/traitcalc/pkg/config"
	"github.com/traitcalc/traitcalc/pkg/core"
)

func mustIndex(tables *config.ReferenceTables, regions core.RegionSet) *core.Index {
	idx, err := core.NewIndex(tables, regions)
	Expect(err).NotTo(HaveOccurred())
	return idx
}

func mustOptimize(idx *core.Index, opts OptimizerSpec, spec config.SearchSpec) *Result {
	opt, err := NewOptimizer(idx, opts)
	Expect(err).NotTo(HaveOccurred())
	res, err := opt.Optimize(context.Background(), spec)
	Expect(err).NotTo(HaveOccurred())
	return res
}

func unitKey(units []string) string {
	sorted := append([]string(nil), units...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// expectValid asserts every composition property that can be checked
// against the index alone.
func expectValid(idx *core.Index, spec config.SearchSpec, res *Result) {
	seen := make(map[string]bool)
	for i, c := range res.Compositions {
		key := unitKey(c.Units)
		Expect(seen).NotTo(HaveKey(key), "duplicate unit set %s", key)
		seen[key] = true

		Expect(c.Size()).To(BeNumerically(">=", spec.StartUnits))
		Expect(c.Size()).To(BeNumerically("<=", spec.MaxUnits))

		cost := 0
		for _, u := range c.Units {
			uc, ok := idx.Cost(u)
			Expect(ok).To(BeTrue())
			cost += uc
		}
		Expect(c.TotalCost).To(Equal(cost))
		Expect(c.TotalCost).To(BeNumerically("<=", spec.MaxCost))

		want := Evaluate(CountMembers(idx, c.Units), idx.Thresholds())
		Expect(c.ActivatedDetails).To(Equal(want))
		Expect(c.TraitCount).To(Equal(len(c.ActivatedDetails)))
		Expect(sort.StringsAreSorted(c.ActivatedTraits)).To(BeTrue())
		Expect(c.ActivatedTraits).To(HaveLen(len(c.ActivatedDetails)))
		for _, t := range c.ActivatedTraits {
			Expect(c.ActivatedDetails).To(HaveKey(t))
		}
		Expect(CountRegions(c.ActivatedDetails, idx.Regions())).To(BeNumerically(">=", spec.MinRegions))

		for _, r := range spec.RequiredUnits {
			Expect(c.Units).To(ContainElement(r))
		}

		if i > 0 {
			prev := res.Compositions[i-1]
			Expect(prev.TotalCost).To(BeNumerically("<=", c.TotalCost))
			if prev.TotalCost == c.TotalCost {
				Expect(prev.TraitCount).To(BeNumerically(">=", c.TraitCount))
			}
		}
	}
	Expect(res.Total).To(Equal(len(res.Compositions)))
}

// bruteForce enumerates every subset of the pool and keeps the valid ones.
func bruteForce(idx *core.Index, spec config.SearchSpec) map[string]bool {
	pool := idx.Pool()
	out := make(map[string]bool)
	for mask := 0; mask < 1<<len(pool); mask++ {
		size := bits.OnesCount(uint(mask))
		if size < spec.StartUnits || size > spec.MaxUnits {
			continue
		}
		var units []string
		cost := 0
		for i, u := range pool {
			if mask&(1<<i) != 0 {
				units = append(units, u)
				c, _ := idx.Cost(u)
				cost += c
			}
		}
		if cost > spec.MaxCost {
			continue
		}
		missing := false
		for _, r := range spec.RequiredUnits {
			if !strings.Contains(","+unitKey(units)+",", ","+r+",") {
				missing = true
			}
		}
		if missing {
			continue
		}
		act := Evaluate(CountMembers(idx, units), idx.Thresholds())
		if len(act) == 0 || CountRegions(act, idx.Regions()) < spec.MinRegions {
			continue
		}
		out[unitKey(units)] = true
	}
	return out
}

var randomRegions = []string{"R0", "R1", "R2", "R3"}

func randomTables(r *rand.Rand) *config.ReferenceTables {
	names := append(append([]string(nil), randomRegions...), "C0", "C1")
	traits := config.TraitData{}
	for _, t := range names {
		activations := map[string]string{}
		for lvl := 1; lvl <= 3; lvl++ {
			if r.Intn(2) == 0 {
				activations[strconv.Itoa(lvl)] = "bonus"
			}
		}
		traits[t] = config.TraitSpec{Activations: activations}
	}
	costs := config.CostData{}
	units := 7 + r.Intn(4)
	for u := 0; u < units; u++ {
		id := fmt.Sprintf("U%02d", u)
		costs[id] = 1 + r.Intn(4)
		for _, ti := range r.Perm(len(names))[:1+r.Intn(3)] {
			spec := traits[names[ti]]
			spec.Units = append(spec.Units, id)
			traits[names[ti]] = spec
		}
	}
	return &config.ReferenceTables{Traits: traits, Costs: costs}
}

// fiveRegionTables has five region traits at threshold 1, one unit each.
func fiveRegionTables() *config.ReferenceTables {
	regions := []string{"Bilgewater", "Demacia", "Freljord", "Ionia", "Noxus"}
	tables := &config.ReferenceTables{Traits: config.TraitData{}, Costs: config.CostData{}}
	for i, r := range regions {
		u := fmt.Sprintf("Unit%d", i)
		tables.Traits[r] = config.TraitSpec{Units: []string{u}, Activations: map[string]string{"1": "bonus"}}
		tables.Costs[u] = 1
	}
	return tables
}

// requiredTables: A and B cost 2, C..F cost 1. With A and B seeded, every
// pair from C..F except E+F reaches five regions.
func requiredTables() *config.ReferenceTables {
	one := map[string]string{"1": "bonus"}
	return &config.ReferenceTables{
		Traits: config.TraitData{
			"Ionia":    {Units: []string{"A"}, Activations: one},
			"Void":     {Units: []string{"B"}, Activations: one},
			"Demacia":  {Units: []string{"C"}, Activations: one},
			"Noxus":    {Units: []string{"C"}, Activations: one},
			"Freljord": {Units: []string{"D"}, Activations: one},
			"Zaun":     {Units: []string{"D"}, Activations: one},
			"Shurima":  {Units: []string{"E"}, Activations: one},
			"Targon":   {Units: []string{"F"}, Activations: one},
		},
		Costs: config.CostData{"A": 2, "B": 2, "C": 1, "D": 1, "E": 1, "F": 1},
	}
}

// denseTables builds a pool large enough that a search cannot finish
// before a cancelled context is observed.
func denseTables() *config.ReferenceTables {
	tables := &config.ReferenceTables{Traits: config.TraitData{}, Costs: config.CostData{}}
	for i := 0; i < 40; i++ {
		u := fmt.Sprintf("U%02d", i)
		tables.Costs[u] = 1 + i%5
		for k, r := range core.DefaultRegions {
			if (i+k)%4 == 0 {
				spec := tables.Traits[r]
				spec.Units = append(spec.Units, u)
				spec.Activations = map[string]string{"1": "a", "2": "b"}
				tables.Traits[r] = spec
			}
		}
	}
	return tables
}

type recordingObserver struct {
	sizes []SizeResult
	runs  []*Result
}

func (o *recordingObserver) ObserveSize(s SizeResult) { o.sizes = append(o.sizes, s) }
func (o *recordingObserver) ObserveRun(r *Result)     { o.runs = append(o.runs, r) }

var _ = Describe("Optimizer", func() {

	Context("with reference scenarios", func() {
		It("should find nothing when no unit belongs to a target region", func() {
			tables := &config.ReferenceTables{
				Traits: config.TraitData{
					"Sorcerer": {Units: []string{"a", "b", "c"}, Activations: map[string]string{"3": "bonus"}},
				},
				Costs: config.CostData{"a": 1, "b": 1, "c": 1},
			}
			spec := config.SearchSpec{StartUnits: 3, MaxUnits: 3, MaxCost: 3, MinRegions: 5}
			res := mustOptimize(mustIndex(tables, core.DefaultRegionSet()), OptimizerSpec{}, spec)
			Expect(res.Compositions).To(BeEmpty())
			Expect(res.Total).To(BeZero())
			Expect(res.Truncated).To(BeFalse())
		})

		It("should find the single team covering five single-unit regions", func() {
			spec := config.SearchSpec{StartUnits: 5, MaxUnits: 5, MaxCost: 5, MinRegions: 5}
			res := mustOptimize(mustIndex(fiveRegionTables(), core.DefaultRegionSet()), OptimizerSpec{}, spec)
			Expect(res.Compositions).To(HaveLen(1))
			c := res.Compositions[0]
			Expect(c.Units).To(ConsistOf("Unit0", "Unit1", "Unit2", "Unit3", "Unit4"))
			Expect(c.TraitCount).To(Equal(5))
			Expect(c.TotalCost).To(Equal(5))
		})

		It("should keep the required units in every composition", func() {
			idx := mustIndex(requiredTables(), core.DefaultRegionSet())
			spec := config.SearchSpec{StartUnits: 4, MaxUnits: 4, MaxCost: 10, MinRegions: 5, RequiredUnits: []string{"A", "B"}}
			res := mustOptimize(idx, OptimizerSpec{}, spec)

			Expect(res.Compositions).To(HaveLen(5))
			for _, c := range res.Compositions {
				Expect(c.Units).To(HaveLen(4))
				Expect(c.Units[:2]).To(Equal([]string{"A", "B"}))
			}
			expectValid(idx, spec, res)
		})
	})

	Context("with required units", func() {
		var idx *core.Index

		BeforeEach(func() {
			idx = mustIndex(requiredTables(), core.DefaultRegionSet())
		})

		It("should fail fast on a unit outside the pool by default", func() {
			opt, err := NewOptimizer(idx, OptimizerSpec{})
			Expect(err).NotTo(HaveOccurred())
			_, err = opt.Optimize(context.Background(), config.SearchSpec{
				StartUnits: 4, MaxUnits: 4, MaxCost: 10, MinRegions: 5, RequiredUnits: []string{"A", "Nobody"},
			})
			Expect(errors.Is(err, config.ErrUnknownUnit)).To(BeTrue())
			var unknown *config.UnknownUnitError
			Expect(errors.As(err, &unknown)).To(BeTrue())
			Expect(unknown.Unit).To(Equal("Nobody"))
		})

		It("should treat a required unit over budget as outside the pool", func() {
			opt, err := NewOptimizer(idx, OptimizerSpec{})
			Expect(err).NotTo(HaveOccurred())
			_, err = opt.Optimize(context.Background(), config.SearchSpec{
				StartUnits: 1, MaxUnits: 4, MaxCost: 1, MinRegions: 1, RequiredUnits: []string{"A"},
			})
			Expect(errors.Is(err, config.ErrUnknownUnit)).To(BeTrue())
		})

		It("should drop the unit and search with the rest under the skip policy", func() {
			spec := config.SearchSpec{StartUnits: 4, MaxUnits: 4, MaxCost: 10, MinRegions: 5, RequiredUnits: []string{"A", "Nobody", "B"}}
			res := mustOptimize(idx, OptimizerSpec{RequiredPolicy: RequiredPolicySkip}, spec)

			Expect(res.Spec.RequiredUnits).To(Equal([]string{"A", "B"}))
			Expect(res.Compositions).To(HaveLen(5))
			expectValid(idx, res.Spec, res)
		})

		It("should skip team sizes smaller than the required units", func() {
			spec := config.SearchSpec{StartUnits: 1, MaxUnits: 2, MaxCost: 10, MinRegions: 2, RequiredUnits: []string{"A", "B"}}
			res := mustOptimize(idx, OptimizerSpec{}, spec)

			Expect(res.Sizes).To(HaveLen(1))
			Expect(res.Sizes[0].TeamSize).To(Equal(2))
			Expect(res.Compositions).To(HaveLen(1))
			Expect(res.Compositions[0].Units).To(Equal([]string{"A", "B"}))
		})

		It("should reject required units that alone exceed the budget", func() {
			spec := config.SearchSpec{StartUnits: 2, MaxUnits: 2, MaxCost: 3, MinRegions: 1, RequiredUnits: []string{"C", "D"}}
			res := mustOptimize(idx, OptimizerSpec{}, spec)
			Expect(res.Compositions).To(HaveLen(1))

			spec.MaxCost = 1
			res = mustOptimize(idx, OptimizerSpec{}, spec)
			Expect(res.Compositions).To(BeEmpty())
		})
	})

	Context("with invalid parameters", func() {
		It("should report infeasible parameters before searching", func() {
			opt, err := NewOptimizer(mustIndex(fiveRegionTables(), core.DefaultRegionSet()), OptimizerSpec{})
			Expect(err).NotTo(HaveOccurred())
			_, err = opt.Optimize(context.Background(), config.SearchSpec{StartUnits: 6, MaxUnits: 5, MaxCost: 5, MinRegions: 5})
			Expect(errors.Is(err, config.ErrInfeasibleParameters)).To(BeTrue())
		})

		It("should refuse a nil index", func() {
			_, err := NewOptimizer(nil, OptimizerSpec{})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("against exhaustive enumeration", func() {
		It("should find exactly the valid compositions of random instances", func() {
			r := rand.New(rand.NewSource(20251017))
			for round := 0; round < 40; round++ {
				idx := mustIndex(randomTables(r), core.NewRegionSet(randomRegions...))
				spec := config.SearchSpec{
					StartUnits: 2,
					MaxUnits:   2 + r.Intn(3),
					MaxCost:    4 + r.Intn(9),
					MinRegions: 1 + r.Intn(3),
				}
				if pool := idx.Candidates(spec.MaxCost); len(pool) > 0 && round%2 == 1 {
					spec.RequiredUnits = []string{pool[r.Intn(len(pool))]}
				}

				res := mustOptimize(idx, OptimizerSpec{}, spec)
				expectValid(idx, spec, res)

				got := make(map[string]bool, len(res.Compositions))
				for _, c := range res.Compositions {
					got[unitKey(c.Units)] = true
				}
				Expect(got).To(Equal(bruteForce(idx, spec)), "round %d, spec %+v", round, spec)
			}
		})
	})

	Context("in parallel mode", func() {
		It("should return exactly the sequential result", func() {
			idx := mustIndex(denseTables(), core.DefaultRegionSet())
			spec := config.SearchSpec{StartUnits: 3, MaxUnits: 4, MaxCost: 8, MinRegions: 5}

			sequential := mustOptimize(idx, OptimizerSpec{Workers: 1}, spec)
			parallel := mustOptimize(idx, OptimizerSpec{Workers: 4}, spec)

			Expect(sequential.Compositions).NotTo(BeEmpty())
			Expect(parallel.Compositions).To(Equal(sequential.Compositions))
			Expect(parallel.Stats).To(Equal(sequential.Stats))
			expectValid(idx, spec, parallel)
		})

		It("should give the same result for random instances", func() {
			r := rand.New(rand.NewSource(7))
			for round := 0; round < 10; round++ {
				idx := mustIndex(randomTables(r), core.NewRegionSet(randomRegions...))
				spec := config.SearchSpec{StartUnits: 2, MaxUnits: 4, MaxCost: 10, MinRegions: 2}
				Expect(mustOptimize(idx, OptimizerSpec{Workers: 3}, spec).Compositions).
					To(Equal(mustOptimize(idx, OptimizerSpec{}, spec).Compositions))
			}
		})
	})

	Context("with a cancelled context", func() {
		It("should return a truncated result of valid compositions", func() {
			idx := mustIndex(denseTables(), core.DefaultRegionSet())
			spec := config.SearchSpec{StartUnits: 6, MaxUnits: 8, MaxCost: 30, MinRegions: 5}
			opt, err := NewOptimizer(idx, OptimizerSpec{Workers: 2})
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := opt.Optimize(ctx, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Truncated).To(BeTrue())
			expectValid(idx, spec, res)
		})
	})

	Context("with an observer", func() {
		It("should report every team size and the run", func() {
			obs := &recordingObserver{}
			idx := mustIndex(requiredTables(), core.DefaultRegionSet())
			spec := config.SearchSpec{StartUnits: 3, MaxUnits: 5, MaxCost: 10, MinRegions: 5}
			res := mustOptimize(idx, OptimizerSpec{Observer: obs}, spec)

			Expect(obs.sizes).To(HaveLen(3))
			Expect(obs.sizes[0].TeamSize).To(Equal(3))
			Expect(obs.runs).To(ConsistOf(res))

			var accepted uint64
			for _, s := range obs.sizes {
				accepted += s.Stats.Accepted
				Expect(s.Stats.LeavesEvaluated).To(BeNumerically(">=", s.Stats.Accepted))
			}
			Expect(accepted).To(Equal(uint64(res.Total)))
			Expect(res.Stats.Accepted).To(Equal(accepted))
		})
	})

	Context("with a fixed clock", func() {
		It("should time the run and every size with the injected clock", func() {
			clk := clocktesting.NewFakePassiveClock(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC))
			idx := mustIndex(requiredTables(), core.DefaultRegionSet())
			spec := config.SearchSpec{StartUnits: 3, MaxUnits: 5, MaxCost: 10, MinRegions: 5}
			res := mustOptimize(idx, OptimizerSpec{Workers: 2, Clock: clk}, spec)

			Expect(res.Elapsed).To(BeZero())
			for _, s := range res.Sizes {
				Expect(s.Elapsed).To(BeZero())
			}
		})
	})
})
