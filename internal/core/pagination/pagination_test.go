package pagination_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wedflix/command-center/internal/core/pagination"
)

var _ = Describe("PageConfig", func() {
	items := []string{"a", "b", "c", "d", "e", "f", "g"}

	Describe("Slice", func() {
		It("should return the first window", func() {
			cfg := pagination.PageConfig{PageSize: 3, PageNumber: 1}
			Expect(pagination.Slice(items, cfg)).To(Equal([]string{"a", "b", "c"}))
		})

		It("should return a middle window", func() {
			cfg := pagination.PageConfig{PageSize: 3, PageNumber: 2}
			Expect(pagination.Slice(items, cfg)).To(Equal([]string{"d", "e", "f"}))
		})

		It("should return a short final window", func() {
			cfg := pagination.PageConfig{PageSize: 3, PageNumber: 3}
			Expect(pagination.Slice(items, cfg)).To(Equal([]string{"g"}))
		})

		It("should return an empty slice past the end", func() {
			cfg := pagination.PageConfig{PageSize: 3, PageNumber: 4}
			Expect(pagination.Slice(items, cfg)).To(BeEmpty())
		})

		It("should return everything when the page is larger than the set", func() {
			cfg := pagination.PageConfig{PageSize: 100, PageNumber: 1}
			Expect(pagination.Slice(items, cfg)).To(Equal(items))
		})
	})

	Describe("Validate", func() {
		It("should reject a zero page size", func() {
			cfg := pagination.PageConfig{PageSize: 0, PageNumber: 1}
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should reject page zero", func() {
			cfg := pagination.PageConfig{PageSize: 5, PageNumber: 0}
			Expect(cfg.Validate()).To(HaveOccurred())
		})

		It("should accept a sane config", func() {
			cfg := pagination.PageConfig{PageSize: 5, PageNumber: 1}
			Expect(cfg.Validate()).ToNot(HaveOccurred())
		})
	})

	Describe("Prev and Next", func() {
		It("should clamp the previous page at 1", func() {
			cfg := pagination.PageConfig{PageSize: 5, PageNumber: 1}
			Expect(cfg.Prev().PageNumber).To(Equal(1))
		})

		It("should step back from a later page", func() {
			cfg := pagination.PageConfig{PageSize: 5, PageNumber: 3}
			Expect(cfg.Prev().PageNumber).To(Equal(2))
		})

		It("should step forward", func() {
			cfg := pagination.PageConfig{PageSize: 5, PageNumber: 3}
			Expect(cfg.Next().PageNumber).To(Equal(4))
		})
	})

	Describe("TotalPages", func() {
		It("should round up partial pages", func() {
			cfg := pagination.PageConfig{PageSize: 3}
			Expect(cfg.TotalPages(7)).To(Equal(3))
		})

		It("should return zero for an empty set", func() {
			cfg := pagination.PageConfig{PageSize: 3}
			Expect(cfg.TotalPages(0)).To(Equal(0))
		})
	})
})
