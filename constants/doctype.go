package constants

// DocType is the document template a scan cycle extracts against.
type DocType string

// Stable values (serialized into session dumps).
const (
	DocTypeInvoice   DocType = "INVOICE"
	DocTypeQuotation DocType = "QUOTATION"
)

// AllDocTypes returns the supported templates.
func AllDocTypes() []DocType {
	return []DocType{DocTypeInvoice, DocTypeQuotation}
}

// IsValidDocType checks if the given string is a supported template.
func IsValidDocType(s string) bool {
	switch DocType(s) {
	case DocTypeInvoice, DocTypeQuotation:
		return true
	}
	return false
}
