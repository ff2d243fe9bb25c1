package e2e

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/traitcalc/traitcalc/api/v1alpha1"
	"github.com/traitcalc/traitcalc/internal/actuator"
	"github.com/traitcalc/traitcalc/internal/cli"
)

func searchArgs(output string, extra ...string) []string {
	args := append([]string{"search", "--output", output,
		"--start-units", "5", "--max-units", "6", "--max-cost", "18"}, tableFlags()...)
	return append(args, extra...)
}

func readResult(path string) *v1alpha1.ComboFile {
	file, err := actuator.ReadComboFile(path)
	Expect(err).NotTo(HaveOccurred())
	return file
}

var _ = Describe("traitcalc", Ordered, func() {
	var sequential string

	BeforeAll(func() {
		sequential = filepath.Join(workDir, "sequential.json")
		out, err := traitcalc(searchArgs(sequential)...)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Wrote " + sequential))
	})

	It("should find compositions that satisfy every constraint", func() {
		file := readResult(sequential)
		Expect(file.TotalCombinationsFound).To(BeNumerically(">", 0))
		Expect(file.Truncated).To(BeFalse())
		for _, c := range file.Combinations {
			Expect(c.Size()).To(BeNumerically(">=", 5))
			Expect(c.Size()).To(BeNumerically("<=", 6))
			Expect(c.TotalCost).To(BeNumerically("<=", 18))
			Expect(c.TraitCount).To(Equal(len(c.ActivatedDetails)))
		}
	})

	It("should sort by cost, then by trait count descending", func() {
		file := readResult(sequential)
		for i := 1; i < len(file.Combinations); i++ {
			prev, cur := file.Combinations[i-1], file.Combinations[i]
			Expect(prev.TotalCost).To(BeNumerically("<=", cur.TotalCost))
			if prev.TotalCost == cur.TotalCost {
				Expect(prev.TraitCount).To(BeNumerically(">=", cur.TraitCount))
			}
		}
	})

	It("should pass its own validation", func() {
		out, err := traitcalc(append([]string{"validate", sequential}, tableFlags()...)...)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Invalid combinations: 0"))
		Expect(out).To(ContainSubstring("Most traits (top 5):"))
	})

	It("should write the same file with parallel workers", func() {
		parallel := filepath.Join(workDir, "parallel.json")
		_, err := traitcalc(searchArgs(parallel, "--workers", "4")...)
		Expect(err).NotTo(HaveOccurred())

		want, err := os.ReadFile(sequential)
		Expect(err).NotTo(HaveOccurred())
		got, err := os.ReadFile(parallel)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(got)).To(Equal(string(want)))
	})

	It("should put required units in every composition", func() {
		required := filepath.Join(workDir, "required.json")
		_, err := traitcalc(searchArgs(required, "--required", "Ionia Scout", "--required", "Void Scout")...)
		Expect(err).NotTo(HaveOccurred())

		file := readResult(required)
		Expect(file.SearchParameters.RequiredUnits).To(Equal([]string{"Ionia Scout", "Void Scout"}))
		Expect(file.Combinations).NotTo(BeEmpty())
		for _, c := range file.Combinations {
			Expect(c.Units[:2]).To(Equal([]string{"Ionia Scout", "Void Scout"}))
			Expect(c.ActivatedDetails).To(HaveKey("Sorcerer"))
		}

		all := readResult(sequential)
		expected := 0
		for _, c := range all.Combinations {
			if c.HasUnit("Ionia Scout") && c.HasUnit("Void Scout") {
				expected++
			}
		}
		Expect(file.TotalCombinationsFound).To(Equal(expected))
	})

	It("should list the same compositions through the filter", func() {
		out, err := traitcalc("filter", sequential, "--units", "Ionia Scout,Void Scout", "--limit", "1000")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Selected: [Ionia Scout, Void Scout]"))
		Expect(out).NotTo(ContainSubstring("No combinations found."))
	})

	It("should inspect the cheapest composition", func() {
		out, err := traitcalc(append([]string{"inspect", sequential, "0"}, tableFlags()...)...)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Combination #1:"))
		Expect(out).To(ContainSubstring("[TARGET REGION]"))
		Expect(out).To(ContainSubstring("This combination is VALID"))
	})

	It("should reject a tampered result file", func() {
		file := readResult(sequential)
		file.Combinations[0].ActivatedDetails["Bruiser"] = 3
		tampered := filepath.Join(workDir, "tampered.json")
		Expect(actuator.WriteComboFile(tampered, file)).To(Succeed())

		out, err := traitcalc(append([]string{"validate", tampered}, tableFlags()...)...)
		Expect(errors.Is(err, cli.ErrInvalidResult)).To(BeTrue())
		Expect(out).To(ContainSubstring("Invalid combinations: 1"))
	})

	It("should keep a valid partial result when the deadline passes", func() {
		partial := filepath.Join(workDir, "partial.json")
		out, err := traitcalc(searchArgs(partial, "--timeout", "1ns", "--workers", "2")...)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("result is partial"))

		file := readResult(partial)
		Expect(file.Truncated).To(BeTrue())
		Expect(file.TotalCombinationsFound).To(Equal(len(file.Combinations)))

		out, err = traitcalc(append([]string{"validate", partial}, tableFlags()...)...)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Invalid combinations: 0"))
	})

	It("should export search metrics", func() {
		metricsPath := filepath.Join(workDir, "metrics.prom")
		_, err := traitcalc(searchArgs(filepath.Join(workDir, "metered.json"), "--metrics-file", metricsPath)...)
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(metricsPath)
		Expect(err).NotTo(HaveOccurred())
		text := string(data)
		for _, name := range []string{
			"traitcalc_search_nodes_visited_total",
			"traitcalc_search_cost_prunes_total",
			"traitcalc_search_region_prunes_total",
			"traitcalc_search_run_duration_seconds",
		} {
			Expect(text).To(ContainSubstring(name))
		}
		Expect(strings.Count(text, `team_size="5"`)).To(BeNumerically(">", 0))
	})
})
