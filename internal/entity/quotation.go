package entity

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is one row of a quotation's item table.
type LineItem struct {
	Name      string  `json:"name"`
	Spec      string  `json:"spec,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	Quantity  int     `json:"quantity,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
	Amount    float64 `json:"amount"`
}

// QuotationInfo is one observation's worth of extracted quotation fields.
// Ephemeral, like InvoiceInfo.
type QuotationInfo struct {
	Number       *string    `json:"number,omitempty"`
	Date         *string    `json:"date,omitempty"` // YYYY-MM-DD
	CustomerName *string    `json:"customer_name,omitempty"`
	OrderNumber  *string    `json:"order_number,omitempty"`
	Items        []LineItem `json:"items,omitempty"`
	Subtotal     *float64   `json:"subtotal,omitempty"`
	Tax          *float64   `json:"tax,omitempty"`
	Total        *float64   `json:"total,omitempty"`

	// Confidence is the mean OCR confidence across all lines of the
	// observation.
	Confidence float64 `json:"confidence"`
}

// Valid requires at minimum a successfully extracted quotation number.
func (q QuotationInfo) Valid() bool {
	return q.Number != nil && *q.Number != ""
}

// ScannedQuotation is the persisted form of a quotation. Number is
// immutable after creation; Items are only ever replaced wholesale.
type ScannedQuotation struct {
	ID           uuid.UUID  `json:"id"`
	Number       string     `json:"number"`
	Date         *string    `json:"date,omitempty"`
	CustomerName *string    `json:"customer_name,omitempty"`
	OrderNumber  *string    `json:"order_number,omitempty"`
	Items        []LineItem `json:"items,omitempty"`
	Subtotal     *float64   `json:"subtotal,omitempty"`
	Tax          *float64   `json:"tax,omitempty"`
	Total        *float64   `json:"total,omitempty"`
	Confidence   float64    `json:"confidence"`
	ScannedAt    time.Time  `json:"scanned_at"`
}
