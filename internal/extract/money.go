package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

var (
	reCurrencyToken = regexp.MustCompile(`(?:NT\$|TWD|[$])\s*\d+(?:,\d{3})*(?:\.\d+)?|\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+\.\d{1,2}`)
	reDigits        = regexp.MustCompile(`\d+`)
	rePureNumber    = regexp.MustCompile(`^\d+$`)
	reNumberTail    = regexp.MustCompile(`\d+(?:,\d{3})*(?:\.\d+)?`)
)

// normalizeText folds full-width characters to their narrow forms and trims
// surrounding whitespace. OCR on CJK documents routinely emits full-width
// digits and punctuation that the numeric patterns must still match.
func normalizeText(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// squash lowercases and removes all whitespace, the canonical form used for
// label-vocabulary containment tests.
func squash(s string) string {
	folded := strings.ToLower(width.Fold.String(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}

// looksLikeCurrency reports whether the text carries a currency-looking
// token: a currency-prefixed number, a comma-grouped number, or a decimal.
func looksLikeCurrency(s string) bool {
	return reCurrencyToken.MatchString(normalizeText(s))
}

// parseAmount extracts the first currency-looking or plain numeric token and
// parses it exactly. Returns false when no number is present.
func parseAmount(s string) (decimal.Decimal, bool) {
	t := normalizeText(s)
	m := reCurrencyToken.FindString(t)
	if m == "" {
		m = reNumberTail.FindString(t)
	}
	if m == "" {
		return decimal.Zero, false
	}
	m = strings.NewReplacer("NT$", "", "TWD", "", "$", "", ",", "", " ", "").Replace(m)
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// parseAmountValue is parseAmount collapsed to float64.
func parseAmountValue(s string) (float64, bool) {
	d, ok := parseAmount(s)
	if !ok {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// parseIntAmount parses a whole-unit amount, rejecting fractional values.
func parseIntAmount(s string) (int64, bool) {
	d, ok := parseAmount(s)
	if !ok || !d.IsInteger() {
		return 0, false
	}
	return d.IntPart(), true
}

// roundDiv divides amount by qty and rounds half away from zero to whole
// units, the rule used to back-derive a unit price from a row total.
func roundDiv(amount float64, qty int) float64 {
	if qty <= 0 {
		return 0
	}
	d := decimal.NewFromFloat(amount).DivRound(decimal.NewFromInt(int64(qty)), 0)
	f, _ := d.Float64()
	return f
}

// isPureNumber reports whether the folded, de-spaced text is digits only.
func isPureNumber(s string) bool {
	return rePureNumber.MatchString(strings.ReplaceAll(normalizeText(s), " ", ""))
}

// DigitsOnly strips everything but ASCII digits; the dedupe key of a
// record identifier is exactly this canonicalization.
func DigitsOnly(s string) string {
	return strings.Join(reDigits.FindAllString(width.Fold.String(s), -1), "")
}

// hasHan reports whether the text contains at least one ideographic rune.
func hasHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
