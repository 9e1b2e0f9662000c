// Package store keeps the session's deduplicated record set alive across
// repeated observations of the same physical document. Merge policy lives in
// pure functions; Session is the thin mutable wrapper around them.
package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/robert008/flutter-ocr-kit/internal/entity"
	"github.com/robert008/flutter-ocr-kit/internal/extract"
)

// Default confidence gates for record creation and update.
const (
	DefaultCreateThreshold = 0.60
	DefaultUpdateThreshold = 0.60
)

// Thresholds gates record creation and update on observation confidence.
type Thresholds struct {
	Create float64
	Update float64
}

func (t Thresholds) withDefaults() Thresholds {
	if t.Create <= 0 {
		t.Create = DefaultCreateThreshold
	}
	if t.Update <= 0 {
		t.Update = DefaultUpdateThreshold
	}
	return t
}

// Outcome reports what a merge did with an observation.
type Outcome int

const (
	Rejected Outcome = iota
	Created
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "rejected"
	}
}

// DedupeKey canonicalizes a record identifier to its digit sequence, so
// "AB-12345678", "AB 12345678" and "AB12345678" all merge into one record.
func DedupeKey(identifier string) string {
	return extract.DigitsOnly(identifier)
}

// MergeInvoice applies one invoice observation to the existing record (nil
// when the key is absent). It never mutates its inputs; a Rejected outcome
// returns existing unchanged.
func MergeInvoice(existing *entity.ScannedInvoice, info entity.InvoiceInfo, now time.Time, t Thresholds) (*entity.ScannedInvoice, Outcome) {
	t = t.withDefaults()
	if !info.Valid() {
		return existing, Rejected
	}

	if existing == nil {
		if info.Confidence < t.Create {
			return nil, Rejected
		}
		return &entity.ScannedInvoice{
			ID:         uuid.New(),
			Number:     *info.Number,
			Period:     info.Period,
			SellerName: info.SellerName,
			Amount:     info.Amount,
			Date:       info.Date,
			Time:       info.Time,
			RandomCode: info.RandomCode,
			Confidence: info.Confidence,
			ScannedAt:  now,
		}, Created
	}

	if info.Confidence < t.Update {
		return existing, Rejected
	}

	merged := *existing // the Number never changes: it is the store key
	fillString(&merged.Period, info.Period)
	fillString(&merged.SellerName, info.SellerName)
	fillString(&merged.Date, info.Date)
	fillString(&merged.Time, info.Time)
	fillString(&merged.RandomCode, info.RandomCode)
	if info.Amount != nil && (merged.Amount == nil || info.Confidence > existing.Confidence) {
		merged.Amount = info.Amount
	}
	if info.Confidence > merged.Confidence {
		merged.Confidence = info.Confidence
	}
	return &merged, Updated
}

// MergeQuotation applies one quotation observation to the existing record.
// Item lists are only ever replaced wholesale, and never by a worse,
// partial observation.
func MergeQuotation(existing *entity.ScannedQuotation, info entity.QuotationInfo, now time.Time, t Thresholds) (*entity.ScannedQuotation, Outcome) {
	t = t.withDefaults()
	if !info.Valid() {
		return existing, Rejected
	}

	if existing == nil {
		if info.Confidence < t.Create {
			return nil, Rejected
		}
		return &entity.ScannedQuotation{
			ID:           uuid.New(),
			Number:       *info.Number,
			Date:         info.Date,
			CustomerName: info.CustomerName,
			OrderNumber:  info.OrderNumber,
			Items:        info.Items,
			Subtotal:     info.Subtotal,
			Tax:          info.Tax,
			Total:        info.Total,
			Confidence:   info.Confidence,
			ScannedAt:    now,
		}, Created
	}

	if info.Confidence < t.Update {
		return existing, Rejected
	}

	merged := *existing
	fillString(&merged.Date, info.Date)
	fillString(&merged.CustomerName, info.CustomerName)
	fillString(&merged.OrderNumber, info.OrderNumber)

	if len(info.Items) > 0 {
		betterItems := info.Confidence > existing.Confidence && len(info.Items) >= len(existing.Items)
		if len(existing.Items) == 0 || betterItems {
			merged.Items = info.Items
		}
	}
	if existing.Total == nil || info.Confidence > existing.Confidence {
		if info.Subtotal != nil {
			merged.Subtotal = info.Subtotal
		}
		if info.Tax != nil {
			merged.Tax = info.Tax
		}
		if info.Total != nil {
			merged.Total = info.Total
		}
	}
	if info.Confidence > merged.Confidence {
		merged.Confidence = info.Confidence
	}
	return &merged, Updated
}

// fillString fills a currently-nil optional field from the observation.
func fillString(dst **string, src *string) {
	if *dst == nil && src != nil {
		*dst = src
	}
}
