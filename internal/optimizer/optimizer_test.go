package optimizer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/traitcalc/traitcalc/internal/actuator"
	"github.com/traitcalc/traitcalc/internal/collector"
	"github.com/traitcalc/traitcalc/pkg/config"
	"github.com/traitcalc/traitcalc/pkg/core"
	"github.com/traitcalc/traitcalc/pkg/solver"
)

type staticSource struct {
	tables *config.ReferenceTables
	err    error
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Collect(context.Context) (*config.ReferenceTables, error) {
	return s.tables, s.err
}

// fiveRegionTables yields exactly one team of five at cost five.
func fiveRegionTables() *config.ReferenceTables {
	tables := &config.ReferenceTables{Traits: config.TraitData{}, Costs: config.CostData{}}
	for i, r := range []string{"Bilgewater", "Demacia", "Freljord", "Ionia", "Noxus"} {
		u := fmt.Sprintf("Unit%d", i)
		tables.Traits[r] = config.TraitSpec{Units: []string{u}, Activations: map[string]string{"1": "bonus"}}
		tables.Costs[u] = 1
	}
	return tables
}

func largeTables() *config.ReferenceTables {
	tables := &config.ReferenceTables{Traits: config.TraitData{}, Costs: config.CostData{}}
	for i := 0; i < 60; i++ {
		u := fmt.Sprintf("U%02d", i)
		tables.Costs[u] = 1 + i%5
		for k, r := range core.DefaultRegions {
			if (i+k)%3 == 0 {
				spec := tables.Traits[r]
				spec.Units = append(spec.Units, u)
				spec.Activations = map[string]string{"1": "a"}
				tables.Traits[r] = spec
			}
		}
	}
	return tables
}

var _ = Describe("Optimizer", func() {
	var (
		dir    string
		search config.SearchSpec
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		search = config.SearchSpec{StartUnits: 5, MaxUnits: 5, MaxCost: 5, MinRegions: 5}
	})

	Context("with table files", func() {
		It("should run every stage and write the result file", func() {
			traitsPath := filepath.Join(dir, "traits.json")
			costsPath := filepath.Join(dir, "costs.json")
			outPath := filepath.Join(dir, "combos.json")
			tables := fiveRegionTables()
			Expect(config.SaveTraitData(traitsPath, tables.Traits)).To(Succeed())
			Expect(config.SaveCostData(costsPath, tables.Costs)).To(Succeed())

			opt, err := NewOptimizer(
				collector.NewTableSource(traitsPath, costsPath),
				actuator.NewActuator(outPath),
				Config{Search: search},
			)
			Expect(err).NotTo(HaveOccurred())

			outcome, err := opt.Optimize(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Result.Total).To(Equal(1))
			Expect(outcome.File.TotalCombinationsFound).To(Equal(1))

			written, err := actuator.ReadComboFile(outPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(written).To(Equal(outcome.File))
			Expect(written.Combinations[0].Units).To(ConsistOf("Unit0", "Unit1", "Unit2", "Unit3", "Unit4"))
			Expect(written.SearchParameters.RequiredUnits).To(BeEmpty())
		})
	})

	Context("without an actuator", func() {
		It("should return the result without writing", func() {
			opt, err := NewOptimizer(&staticSource{tables: fiveRegionTables()}, nil, Config{Search: search})
			Expect(err).NotTo(HaveOccurred())
			outcome, err := opt.Optimize(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.File).To(BeNil())
			Expect(outcome.Result.Compositions).To(HaveLen(1))
			Expect(outcome.Index.Regions().Len()).To(Equal(13))
		})
	})

	Context("when a stage fails", func() {
		It("should report a collection failure", func() {
			cause := &config.ConfigurationError{Table: config.TableTraits, Reason: "file not found: x"}
			opt, err := NewOptimizer(&staticSource{err: cause}, nil, Config{Search: search})
			Expect(err).NotTo(HaveOccurred())
			_, err = opt.Optimize(context.Background())
			Expect(errors.Is(err, config.ErrConfiguration)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("collecting reference tables"))
		})

		It("should report a malformed table", func() {
			bad := &config.ReferenceTables{Traits: config.TraitData{}, Costs: config.CostData{"Ahri": -1}}
			opt, err := NewOptimizer(&staticSource{tables: bad}, nil, Config{Search: search})
			Expect(err).NotTo(HaveOccurred())
			_, err = opt.Optimize(context.Background())
			Expect(errors.Is(err, config.ErrConfiguration)).To(BeTrue())
		})

		It("should report infeasible parameters", func() {
			search.MaxCost = -1
			opt, err := NewOptimizer(&staticSource{tables: fiveRegionTables()}, nil, Config{Search: search})
			Expect(err).NotTo(HaveOccurred())
			_, err = opt.Optimize(context.Background())
			Expect(errors.Is(err, config.ErrInfeasibleParameters)).To(BeTrue())
		})

		It("should report unknown required units", func() {
			search.RequiredUnits = []string{"Nobody"}
			opt, err := NewOptimizer(&staticSource{tables: fiveRegionTables()}, nil, Config{Search: search})
			Expect(err).NotTo(HaveOccurred())
			_, err = opt.Optimize(context.Background())
			Expect(errors.Is(err, config.ErrUnknownUnit)).To(BeTrue())
		})

		It("should refuse a nil source", func() {
			_, err := NewOptimizer(nil, nil, Config{})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with a timeout", func() {
		It("should write a partial result flagged as truncated", func() {
			outPath := filepath.Join(dir, "partial.json")
			opt, err := NewOptimizer(&staticSource{tables: largeTables()}, actuator.NewActuator(outPath), Config{
				Search:  config.SearchSpec{StartUnits: 8, MaxUnits: 8, MaxCost: 40, MinRegions: 5},
				Solver:  solver.OptimizerSpec{Workers: 2},
				Timeout: time.Nanosecond,
			})
			Expect(err).NotTo(HaveOccurred())

			outcome, err := opt.Optimize(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Result.Truncated).To(BeTrue())

			written, err := actuator.ReadComboFile(outPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(written.Truncated).To(BeTrue())
			Expect(written.TotalCombinationsFound).To(Equal(len(written.Combinations)))
		})
	})
})
