package entity

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceInfo is one observation's worth of extracted invoice fields.
// It is ephemeral: built per scan cycle, handed to the merge engine,
// then discarded. Absent fields are nil.
type InvoiceInfo struct {
	Number     *string `json:"number,omitempty"`      // e.g. "AB-12345678"
	Period     *string `json:"period,omitempty"`      // e.g. "114年09-10月"
	SellerName *string `json:"seller_name,omitempty"`
	Amount     *int64  `json:"amount,omitempty"`
	Date       *string `json:"date,omitempty"` // YYYY-MM-DD
	Time       *string `json:"time,omitempty"` // HH:MM or HH:MM:SS
	RandomCode *string `json:"random_code,omitempty"`

	// Confidence is the mean OCR confidence of every line that
	// contributed a field.
	Confidence float64 `json:"confidence"`
}

// Valid requires at minimum a successfully extracted invoice number.
func (i InvoiceInfo) Valid() bool {
	return i.Number != nil && *i.Number != ""
}

// ScannedInvoice is the persisted form of an invoice, mutated by the merge
// engine over repeated observations. Number is immutable after creation.
type ScannedInvoice struct {
	ID         uuid.UUID `json:"id"`
	Number     string    `json:"number"`
	Period     *string   `json:"period,omitempty"`
	SellerName *string   `json:"seller_name,omitempty"`
	Amount     *int64    `json:"amount,omitempty"`
	Date       *string   `json:"date,omitempty"`
	Time       *string   `json:"time,omitempty"`
	RandomCode *string   `json:"random_code,omitempty"`
	Confidence float64   `json:"confidence"`
	ScannedAt  time.Time `json:"scanned_at"`
}
