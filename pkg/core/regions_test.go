package core

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RegionSet", func() {
	Context("with the default regions", func() {
		It("should hold the thirteen reference regions", func() {
			rs := DefaultRegionSet()
			Expect(rs.Len()).To(Equal(13))
			Expect(rs.Contains("Shadow Isles")).To(BeTrue())
			Expect(rs.Contains("Zaun")).To(BeTrue())
		})

		It("should not contain class traits", func() {
			Expect(DefaultRegionSet().Contains("Sorcerer")).To(BeFalse())
		})
	})

	Context("with a custom list", func() {
		It("should drop duplicates and empty identifiers", func() {
			rs := NewRegionSet("Void", "", "Ionia", "Void")
			Expect(rs.Len()).To(Equal(2))
			Expect(rs.IDs()).To(Equal([]string{"Ionia", "Void"}))
		})

		It("should return a copy of its identifiers", func() {
			rs := NewRegionSet("Void", "Ionia")
			ids := rs.IDs()
			ids[0] = "changed"
			Expect(rs.IDs()).To(Equal([]string{"Ionia", "Void"}))
		})
	})

	Context("when empty", func() {
		It("should contain nothing", func() {
			var rs RegionSet
			Expect(rs.Len()).To(BeZero())
			Expect(rs.Contains("Void")).To(BeFalse())
		})
	})
})
