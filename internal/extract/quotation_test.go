package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/robert008/flutter-ocr-kit/internal/geometry"
	"github.com/robert008/flutter-ocr-kit/internal/ocr"
)

var _ = Describe("QuotationExtractor", func() {
	var extractor *QuotationExtractor

	BeforeEach(func() {
		extractor = NewQuotationExtractor(testLogger(), QuotationConfig{})
	})

	result := func(lines ...geometry.TextLine) ocr.Result {
		return ocr.Result{Lines: lines, ImageWidth: 640, ImageHeight: 900}
	}

	tableLayout := func(x1, y1, x2, y2 float64) *ocr.LayoutResult {
		return &ocr.LayoutResult{Regions: []ocr.Detection{
			{Class: "table", Score: 0.9, Box: geometry.Rect{X1: x1, Y1: y1, X2: x2, Y2: y2}},
		}}
	}

	Describe("header fields", func() {
		It("reads the number from the labeled row, bounded by the date label", func() {
			res := result(
				tl(10, 10, 90, 30, "報價單號", 0.9),
				tl(120, 12, 220, 28, "QT-2025001", 0.9),
				tl(300, 10, 340, 30, "日期", 0.9),
				tl(360, 12, 460, 28, "2025-07-26", 0.9),
			)
			info := extractor.Extract(res, nil)

			Expect(info.Number).To(HaveValue(Equal("QT-2025001")))
			Expect(info.Date).To(HaveValue(Equal("2025-07-26")))
		})

		It("falls back to a bare identifier scan without a label", func() {
			res := result(
				tl(10, 10, 200, 30, "QT-20250001 報價", 0.9),
			)
			info := extractor.Extract(res, nil)
			Expect(info.Number).To(HaveValue(Equal("QT-20250001")))
		})

		It("pairs the customer name spatially", func() {
			res := result(
				tl(10, 10, 90, 30, "報價單號", 0.9),
				tl(120, 12, 220, 28, "QT-2025001", 0.9),
				tl(10, 50, 90, 70, "客戶名稱", 0.9),
				tl(120, 52, 320, 68, "測試科技股份有限公司", 0.9),
			)
			info := extractor.Extract(res, nil)
			Expect(info.CustomerName).To(HaveValue(Equal("測試科技股份有限公司")))
		})

		It("honors the configured customer-search reach", func() {
			narrow := NewQuotationExtractor(testLogger(), QuotationConfig{MaxHorizontalGap: 10})
			res := result(
				tl(10, 10, 200, 30, "QT-2025001 報價", 0.9),
				tl(10, 50, 90, 70, "客戶名稱", 0.9),
				tl(120, 52, 320, 68, "測試科技股份有限公司", 0.9), // gap 30
			)
			info := narrow.Extract(res, nil)
			Expect(info.CustomerName).To(BeNil())
		})

		It("captures the order number off its label", func() {
			res := result(
				tl(10, 10, 200, 30, "QT-2025001", 0.9),
				tl(10, 50, 240, 70, "訂單編號: PO-555", 0.9),
			)
			info := extractor.Extract(res, nil)
			Expect(info.OrderNumber).To(HaveValue(Equal("PO-555")))
		})

		It("is invalid without any number", func() {
			res := result(
				tl(10, 10, 90, 30, "報價單", 0.9),
			)
			info := extractor.Extract(res, nil)
			Expect(info.Valid()).To(BeFalse())
		})
	})

	Describe("item table", func() {
		var res ocr.Result

		BeforeEach(func() {
			res = result(
				tl(10, 10, 200, 30, "報價單號 QT-2025001", 0.9),
				tl(10, 110, 490, 130, "品名 規格 數量 單位 單價 金額", 0.9),
				tl(10, 150, 200, 170, "主機板 MB-X570 豪華版", 0.9),
				tl(220, 150, 240, 170, "2", 0.9),
				tl(260, 150, 280, 170, "台", 0.9),
				tl(300, 150, 340, 170, "$600", 0.9),
				tl(400, 150, 460, 170, "$1,200", 0.9),
				tl(10, 200, 200, 220, "散熱器 CL-240 水冷", 0.9),
				tl(220, 200, 240, 220, "3", 0.9),
				tl(400, 200, 460, 220, "$1,200", 0.9),
			)
		})

		It("skips the table entirely without a layout", func() {
			info := extractor.Extract(res, nil)
			Expect(info.Items).To(BeEmpty())
		})

		It("builds one item per product row", func() {
			info := extractor.Extract(res, tableLayout(0, 100, 500, 300))

			Expect(info.Items).To(HaveLen(2))
			first := info.Items[0]
			Expect(first.Name).To(Equal("主機板 MB-X570 豪華版"))
			Expect(first.Quantity).To(Equal(2))
			Expect(first.Unit).To(Equal("台"))
			Expect(first.UnitPrice).To(Equal(600.0))
			Expect(first.Amount).To(Equal(1200.0))
		})

		It("back-derives the unit price from a lone row total", func() {
			info := extractor.Extract(res, tableLayout(0, 100, 500, 300))

			second := info.Items[1]
			Expect(second.Quantity).To(Equal(3))
			Expect(second.Amount).To(Equal(1200.0))
			Expect(second.UnitPrice).To(Equal(400.0))
		})

		It("never treats the header row as a product", func() {
			info := extractor.Extract(res, tableLayout(0, 100, 500, 300))
			for _, item := range info.Items {
				Expect(item.Name).NotTo(ContainSubstring("品名"))
			}
		})

		It("ignores table regions outside the target classes", func() {
			textOnly := NewQuotationExtractor(testLogger(), QuotationConfig{
				TargetClasses: []string{"text"},
			})
			info := textOnly.Extract(res, tableLayout(0, 100, 500, 300))
			Expect(info.Items).To(BeEmpty())
		})

		When("a price cell straddles the table boundary", func() {
			var straddling ocr.Result

			BeforeEach(func() {
				// The $1,200 cell is only 2/3 inside the table box.
				straddling = result(
					tl(10, 10, 200, 30, "報價單號 QT-2025001", 0.9),
					tl(10, 150, 200, 170, "主機板 MB-X570 豪華版", 0.9),
					tl(220, 150, 240, 170, "2", 0.9),
					tl(300, 150, 340, 170, "$600", 0.9),
					tl(460, 150, 520, 170, "$1,200", 0.9),
				)
			})

			It("keeps the cell at the default containment ratio", func() {
				info := extractor.Extract(straddling, tableLayout(0, 100, 500, 300))
				Expect(info.Items).To(HaveLen(1))
				Expect(info.Items[0].Amount).To(Equal(1200.0))
				Expect(info.Items[0].UnitPrice).To(Equal(600.0))
			})

			It("drops the cell under a stricter configured ratio", func() {
				strict := NewQuotationExtractor(testLogger(), QuotationConfig{Containment: 0.8})
				info := strict.Extract(straddling, tableLayout(0, 100, 500, 300))
				Expect(info.Items).To(HaveLen(1))
				Expect(info.Items[0].Amount).To(Equal(600.0))
				Expect(info.Items[0].UnitPrice).To(Equal(300.0))
			})
		})
	})

	Describe("totals", func() {
		It("reads subtotal and tax rows and derives the total", func() {
			res := result(
				tl(10, 10, 200, 30, "報價單號 QT-2025001", 0.9),
				tl(10, 320, 60, 340, "小計", 0.9),
				tl(100, 322, 160, 338, "1,000", 0.9),
				tl(10, 360, 80, 380, "營業稅", 0.9),
				tl(100, 362, 140, 378, "50", 0.9),
			)
			info := extractor.Extract(res, nil)

			Expect(info.Subtotal).To(HaveValue(Equal(1000.0)))
			Expect(info.Tax).To(HaveValue(Equal(50.0)))
			Expect(info.Total).To(HaveValue(Equal(1050.0)))
		})

		It("keeps the bottom-most of duplicate total rows", func() {
			res := result(
				tl(10, 10, 200, 30, "報價單號 QT-2025001", 0.9),
				tl(10, 100, 60, 120, "總計", 0.9),
				tl(100, 102, 160, 118, "1,111", 0.9),
				tl(10, 300, 60, 320, "總計", 0.9),
				tl(100, 302, 160, 318, "2,222", 0.9),
			)
			info := extractor.Extract(res, nil)
			Expect(info.Total).To(HaveValue(Equal(2222.0)))
		})

		It("drops a tax candidate that is not below the reference", func() {
			res := result(
				tl(10, 10, 200, 30, "報價單號 QT-2025001", 0.9),
				tl(10, 100, 60, 120, "合計", 0.9),
				tl(100, 102, 160, 118, "500", 0.9),
				tl(10, 150, 80, 170, "稅金", 0.9),
				tl(100, 152, 160, 168, "500", 0.9),
			)
			info := extractor.Extract(res, nil)

			Expect(info.Tax).To(BeNil())
			Expect(info.Total).To(HaveValue(Equal(500.0)))
		})

		It("rejects a small embedded number as a tax value", func() {
			res := result(
				tl(10, 10, 200, 30, "報價單號 QT-2025001", 0.9),
				tl(10, 100, 120, 120, "營業稅 5%", 0.9),
			)
			info := extractor.Extract(res, nil)
			Expect(info.Tax).To(BeNil())
		})

		It("falls back to the largest currency value as the total", func() {
			res := result(
				tl(10, 10, 200, 30, "報價單號 QT-2025001", 0.9),
				tl(10, 100, 100, 120, "$300", 0.9),
				tl(10, 150, 100, 170, "$1,200", 0.9),
			)
			info := extractor.Extract(res, nil)
			Expect(info.Total).To(HaveValue(Equal(1200.0)))
		})
	})

	Describe("identifier cleanup", func() {
		It("strips label residue around a candidate", func() {
			Expect(cleanIDText("No.QT-2025001")).To(Equal("QT-2025001"))
			Expect(cleanIDText(": QT-2025001 ")).To(Equal("QT-2025001"))
		})

		It("keeps letters that belong to the identifier", func() {
			Expect(cleanIDText("a100n")).To(Equal("a100n"))
			Expect(cleanIDText("QT-2025001")).To(Equal("QT-2025001"))
		})
	})

	It("reports the frame's mean confidence", func() {
		res := result(
			tl(10, 10, 200, 30, "報價單號 QT-2025001", 0.8),
			tl(10, 50, 200, 70, "備註", 1.0),
		)
		info := extractor.Extract(res, nil)
		Expect(info.Confidence).To(BeNumerically("~", 0.9, 1e-9))
	})
})
