package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/robert008/flutter-ocr-kit/internal/geometry"
)

var _ = Describe("AssignRegions", func() {
	var regions []geometry.Region

	BeforeEach(func() {
		regions = []geometry.Region{
			{Class: "text", Box: geometry.Rect{X1: 0, Y1: 0, X2: 100, Y2: 100}},
			{Class: "table", Box: geometry.Rect{X1: 50, Y1: 0, X2: 150, Y2: 100}},
		}
	})

	It("assigns a line to the region that covers it", func() {
		lines := []geometry.TextLine{tl(120, 10, 140, 20, "row", 0.9)}
		out := AssignRegions(regions, lines, 0)
		Expect(out[0].Lines).To(BeEmpty())
		Expect(out[1].Lines).To(HaveLen(1))
	})

	It("breaks containment ties by detection order", func() {
		lines := []geometry.TextLine{tl(60, 10, 80, 20, "shared", 0.9)}
		out := AssignRegions(regions, lines, 0)
		Expect(out[0].Lines).To(HaveLen(1))
		Expect(out[1].Lines).To(BeEmpty())
	})

	It("admits partial containment at the default threshold", func() {
		// Half the line's area falls inside the first region.
		lines := []geometry.TextLine{tl(90, 10, 110, 20, "half", 0.9)}
		out := AssignRegions(regions, lines, 0)
		Expect(out[0].Lines).To(HaveLen(1))
	})

	It("leaves a line unassigned below the threshold", func() {
		// At most 6/7 of this line falls inside any region.
		lines := []geometry.TextLine{tl(90, 10, 160, 20, "wide", 0.9)}
		out := AssignRegions(regions, lines, 0.9)
		Expect(out[0].Lines).To(BeEmpty())
		Expect(out[1].Lines).To(BeEmpty())
	})

	It("leaves a line outside every region unassigned", func() {
		lines := []geometry.TextLine{tl(200, 200, 210, 210, "stray", 0.9)}
		out := AssignRegions(regions, lines, 0)
		Expect(out[0].Lines).To(BeEmpty())
		Expect(out[1].Lines).To(BeEmpty())
	})

	It("does not mutate the input regions", func() {
		lines := []geometry.TextLine{tl(60, 10, 80, 20, "shared", 0.9)}
		_ = AssignRegions(regions, lines, 0)
		Expect(regions[0].Lines).To(BeNil())
	})
})

var _ = Describe("FilterRegions", func() {
	It("keeps only the target classes", func() {
		regions := []geometry.Region{
			{Class: "table"},
			{Class: "figure"},
			{Class: "text"},
		}
		out := FilterRegions(regions, []string{"table", "text"})
		Expect(out).To(HaveLen(2))
		Expect(out[0].Class).To(Equal("table"))
		Expect(out[1].Class).To(Equal("text"))
	})
})

var _ = Describe("FindRegion", func() {
	It("returns the first region of the class in detection order", func() {
		regions := []geometry.Region{
			{Class: "text", Confidence: 0.5},
			{Class: "table", Confidence: 0.8},
			{Class: "table", Confidence: 0.9},
		}
		r := FindRegion(regions, "table")
		Expect(r).NotTo(BeNil())
		Expect(r.Confidence).To(Equal(0.8))
	})

	It("returns nil when the class is absent", func() {
		Expect(FindRegion(nil, "table")).To(BeNil())
	})
})
