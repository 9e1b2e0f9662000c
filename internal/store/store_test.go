package store

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/robert008/flutter-ocr-kit/internal/entity"
)

var _ = Describe("Session", func() {
	var session *Session

	BeforeEach(func() {
		session = NewSession(testLogger(), Thresholds{})
	})

	It("merges every spelling of one invoice into a single record", func() {
		for _, number := range []string{"AB-12345678", "AB 12345678", "AB12345678"} {
			_, outcome := session.MergeInvoice(entity.InvoiceInfo{Number: strp(number), Confidence: 0.70})
			Expect(outcome).NotTo(Equal(Rejected))
		}

		records := session.Invoices()
		Expect(records).To(HaveLen(1))
		Expect(records[0].Number).To(Equal("AB-12345678"))
	})

	It("keeps separate records for distinct invoices", func() {
		session.MergeInvoice(entity.InvoiceInfo{Number: strp("AB-11111111"), Confidence: 0.70})
		session.MergeInvoice(entity.InvoiceInfo{Number: strp("CD-22222222"), Confidence: 0.70})
		Expect(session.Invoices()).To(HaveLen(2))
	})

	It("leaves the store untouched by a rejected observation", func() {
		rec, outcome := session.MergeInvoice(entity.InvoiceInfo{Number: strp("AB-12345678"), Confidence: 0.30})
		Expect(outcome).To(Equal(Rejected))
		Expect(rec).To(BeZero())
		Expect(session.Invoices()).To(BeEmpty())
	})

	It("returns the stored record when an update is rejected", func() {
		created, _ := session.MergeInvoice(entity.InvoiceInfo{Number: strp("AB-12345678"), Confidence: 0.80})

		rec, outcome := session.MergeInvoice(entity.InvoiceInfo{Number: strp("AB-12345678"), Confidence: 0.30})
		Expect(outcome).To(Equal(Rejected))
		Expect(rec.ID).To(Equal(created.ID))
		Expect(rec.Confidence).To(Equal(0.80))
	})

	It("applies the observation upgrade sequence to one quotation", func() {
		first := entity.QuotationInfo{
			Number:     strp("QT-2025001"),
			Items:      []entity.LineItem{{Name: "主機板", Amount: 1200}, {Name: "散熱器", Amount: 600}},
			Confidence: 0.65,
		}
		second := entity.QuotationInfo{
			Number:     strp("QT 2025001"),
			Items:      []entity.LineItem{{Name: "主機板", Amount: 1200}, {Name: "散熱器", Amount: 600}, {Name: "機殼", Amount: 900}},
			Confidence: 0.80,
		}
		third := entity.QuotationInfo{
			Number:     strp("QT-2025001"),
			Items:      []entity.LineItem{{Name: "主機板", Amount: 1200}},
			Confidence: 0.50,
		}

		created, outcome := session.MergeQuotation(first)
		Expect(outcome).To(Equal(Created))

		_, outcome = session.MergeQuotation(second)
		Expect(outcome).To(Equal(Updated))

		_, outcome = session.MergeQuotation(third)
		Expect(outcome).To(Equal(Rejected))

		records := session.Quotations()
		Expect(records).To(HaveLen(1))
		Expect(records[0].ID).To(Equal(created.ID))
		Expect(records[0].Number).To(Equal("QT-2025001"))
		Expect(records[0].Items).To(HaveLen(3))
		Expect(records[0].Confidence).To(Equal(0.80))
	})

	It("clears every record", func() {
		session.MergeInvoice(entity.InvoiceInfo{Number: strp("AB-12345678"), Confidence: 0.70})
		session.MergeQuotation(entity.QuotationInfo{Number: strp("QT-2025001"), Confidence: 0.70})

		session.Clear()

		Expect(session.Invoices()).To(BeEmpty())
		Expect(session.Quotations()).To(BeEmpty())
	})
})
