package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/robert008/flutter-ocr-kit/internal/geometry"
)

var _ = Describe("SpatialEntities", func() {
	var pattern LabelPattern

	When("searching right of the label", func() {
		BeforeEach(func() {
			pattern = LabelPattern{
				Name:      "uniform_number",
				Keywords:  []string{"統一編號", "統編"},
				Direction: SearchRight,
			}
		})

		It("pairs the label with the line to its right", func() {
			lines := []geometry.TextLine{
				tl(0, 0, 100, 20, "統一編號", 0.9),
				tl(120, 0, 220, 20, "12345678", 0.9),
			}
			found := SpatialEntities(lines, []LabelPattern{pattern})
			Expect(found).To(HaveLen(1))
			Expect(found[0].Name).To(Equal("uniform_number"))
			Expect(found[0].Value).To(Equal("12345678"))
		})

		It("prefers the nearest candidate", func() {
			lines := []geometry.TextLine{
				tl(0, 0, 100, 20, "統一編號", 0.9),
				tl(160, 0, 200, 20, "far", 0.9),
				tl(110, 0, 150, 20, "near", 0.9),
			}
			found := SpatialEntities(lines, []LabelPattern{pattern})
			Expect(found).To(HaveLen(1))
			Expect(found[0].Value).To(Equal("near"))
		})

		It("rejects a gap at the maximum and accepts one just inside", func() {
			lines := []geometry.TextLine{
				tl(0, 0, 10, 10, "統編", 0.9),
				tl(25, 0, 60, 10, "12345678", 0.9), // gap 15
			}
			strict := pattern
			strict.MaxHorizontalGap = 15
			Expect(SpatialEntities(lines, []LabelPattern{strict})).To(BeEmpty())

			loose := pattern
			loose.MaxHorizontalGap = 16
			Expect(SpatialEntities(lines, []LabelPattern{loose})).To(HaveLen(1))
		})

		It("requires vertical overlap of at least the configured fraction", func() {
			lines := []geometry.TextLine{
				tl(0, 0, 10, 10, "統編", 0.9),
				tl(30, 9, 60, 19, "12345678", 0.9), // 1px of overlap against 5 required
			}
			Expect(SpatialEntities(lines, []LabelPattern{pattern})).To(BeEmpty())
		})

		It("never reads another label occurrence as the value", func() {
			lines := []geometry.TextLine{
				tl(0, 0, 100, 20, "統一編號", 0.9),
				tl(120, 0, 180, 20, "統編", 0.9),
			}
			Expect(SpatialEntities(lines, []LabelPattern{pattern})).To(BeEmpty())
		})
	})

	When("searching below the label", func() {
		BeforeEach(func() {
			pattern = LabelPattern{
				Name:      "remark",
				Keywords:  []string{"備註"},
				Direction: SearchBelow,
			}
		})

		It("pairs the label with the line under it", func() {
			lines := []geometry.TextLine{
				tl(100, 0, 160, 20, "備註", 0.9),
				tl(90, 30, 200, 50, "免運費", 0.9),
			}
			found := SpatialEntities(lines, []LabelPattern{pattern})
			Expect(found).To(HaveLen(1))
			Expect(found[0].Value).To(Equal("免運費"))
		})

		It("rejects a vertical gap at the maximum", func() {
			lines := []geometry.TextLine{
				tl(100, 0, 160, 20, "備註", 0.9),
				tl(90, 60, 200, 80, "免運費", 0.9), // gap 40
			}
			strict := pattern
			strict.MaxVerticalGap = 40
			Expect(SpatialEntities(lines, []LabelPattern{strict})).To(BeEmpty())
		})

		It("ignores lines outside the horizontal band", func() {
			lines := []geometry.TextLine{
				tl(100, 0, 160, 20, "備註", 0.9),
				tl(400, 30, 500, 50, "elsewhere", 0.9),
			}
			Expect(SpatialEntities(lines, []LabelPattern{pattern})).To(BeEmpty())
		})
	})

	When("searching right then below", func() {
		BeforeEach(func() {
			pattern = LabelPattern{
				Name:      "customer",
				Keywords:  []string{"客戶名稱"},
				Direction: SearchRightThenBelow,
			}
		})

		It("falls back to the below search when nothing sits to the right", func() {
			lines := []geometry.TextLine{
				tl(100, 0, 200, 20, "客戶名稱", 0.9),
				tl(100, 30, 260, 50, "測試科技股份有限公司", 0.9),
			}
			found := SpatialEntities(lines, []LabelPattern{pattern})
			Expect(found).To(HaveLen(1))
			Expect(found[0].Value).To(Equal("測試科技股份有限公司"))
		})
	})
})
