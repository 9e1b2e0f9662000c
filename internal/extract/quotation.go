package extract

import (
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/robert008/flutter-ocr-kit/constants"
	"github.com/robert008/flutter-ocr-kit/internal/entity"
	"github.com/robert008/flutter-ocr-kit/internal/geometry"
	"github.com/robert008/flutter-ocr-kit/internal/ocr"
)

var (
	quotationNumberKeywords = []string{"報價單號", "報價編號", "單號", "quotation no", "quote no"}
	quotationDateKeywords   = []string{"日期", "date"}

	reQuotationID   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{4,}$`)
	reLongDigits    = regexp.MustCompile(`^\d{6,}$`)
	reBareQuotation = regexp.MustCompile(`\b[A-Z]{1,4}-?\d{5,}\b`)
	reOrderNumber   = regexp.MustCompile(`訂單編號\W{0,2}([A-Za-z0-9-]{3,})`)
	reQuantity      = regexp.MustCompile(`^\d{1,4}$`)
	reCodeToken     = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9-]{2,}`)
	reHasDigit      = regexp.MustCompile(`\d`)
)

// tableHeaderWords disqualify a table line from being a product row.
var tableHeaderWords = []string{
	"品名", "項次", "項目", "數量", "單位", "單價", "金額", "規格",
	"小計", "合計", "總計", "備註", "說明",
}

// unitGlyphs are the single counter glyphs recognized as an item unit.
var unitGlyphs = map[string]bool{
	"個": true, "台": true, "件": true, "組": true, "套": true,
	"式": true, "批": true, "箱": true, "只": true, "支": true,
	"條": true, "張": true, "片": true, "袋": true, "瓶": true,
}

// Totals vocabulary. 稅 rows are checked before 總計/合計 rows so that
// "營業稅" is never read as a total.
var (
	taxKeywords      = []string{"營業稅", "稅金", "稅額"}
	totalKeywords    = []string{"總計", "總金額", "合計"}
	subtotalKeywords = []string{"小計", "未稅"}
)

// QuotationConfig holds the geometric tuning of the quotation pipeline.
type QuotationConfig struct {
	RowHeightFactor   float64 // same-row tolerance as a multiple of line height, default 1.2
	TotalRowTolerance float64 // totals right-search tolerance multiple, default 1.5
	EmbeddedMinimum   float64 // embedded-number fallback floor, default 100

	Containment   float64  // region-membership ratio, default DefaultContainment
	TargetClasses []string // region classes extraction may read, default constants.ExtractableRegionClasses

	// Label/value search reach; zero values take the spatial defaults.
	MaxHorizontalGap float64
	MaxVerticalGap   float64
	OverlapFraction  float64
}

// QuotationExtractor turns one OCR observation (plus optional layout) into a
// QuotationInfo.
type QuotationExtractor struct {
	Logger *slog.Logger
	Cfg    QuotationConfig
}

func NewQuotationExtractor(logger *slog.Logger, cfg QuotationConfig) *QuotationExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RowHeightFactor <= 0 {
		cfg.RowHeightFactor = 1.2
	}
	if cfg.TotalRowTolerance <= 0 {
		cfg.TotalRowTolerance = 1.5
	}
	if cfg.EmbeddedMinimum <= 0 {
		cfg.EmbeddedMinimum = 100
	}
	if cfg.Containment <= 0 {
		cfg.Containment = DefaultContainment
	}
	if len(cfg.TargetClasses) == 0 {
		cfg.TargetClasses = constants.ExtractableRegionClasses
	}
	return &QuotationExtractor{Logger: logger, Cfg: cfg}
}

// Extract runs every quotation field finder. Table items are attempted only
// when the layout detector supplied a "table" region.
func (e *QuotationExtractor) Extract(res ocr.Result, layout *ocr.LayoutResult) entity.QuotationInfo {
	var info entity.QuotationInfo
	lines := res.UsableLines()
	if len(lines) == 0 {
		return info
	}

	if v, ok := e.findNumber(lines); ok {
		info.Number = &v
	}
	if m := reISODate.FindString(joinScan(lines)); m != "" {
		d := normalizeDate(m)
		info.Date = &d
	}
	for _, se := range SpatialEntities(lines, []LabelPattern{{
		Name:             "customer",
		Keywords:         []string{"客戶名稱", "客戶", "customer"},
		Direction:        SearchRight,
		MaxHorizontalGap: e.Cfg.MaxHorizontalGap,
		MaxVerticalGap:   e.Cfg.MaxVerticalGap,
		OverlapFraction:  e.Cfg.OverlapFraction,
	}}) {
		v := se.Value
		info.CustomerName = &v
		break
	}
	if v, i := findFirstCapture(lines, reOrderNumber); i >= 0 {
		info.OrderNumber = &v
	}
	if layout != nil {
		regions := AssignRegions(layout.ToRegions(), lines, e.Cfg.Containment)
		regions = FilterRegions(regions, e.Cfg.TargetClasses)
		if table := FindRegion(regions, constants.RegionTable); table != nil {
			info.Items = e.extractItems(table.Lines)
		}
	}
	e.resolveTotals(lines, &info)

	info.Confidence = res.MeanConfidence()
	e.Logger.Debug("quotation.extract",
		"valid", info.Valid(),
		"items", len(info.Items),
		"confidence", info.Confidence,
	)
	return info
}

// findNumber locates the quotation number: a label line first, then the
// candidate sitting between the label's right edge and the date label's left
// edge on the same visual row, cleaned and shape-checked. Without a label
// line it degrades to a bare regex scan of the whole document.
func (e *QuotationExtractor) findNumber(lines []geometry.TextLine) (string, bool) {
	labelIdx := -1
	for i, l := range lines {
		if containsAny(l.Text, quotationNumberKeywords) {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		for _, l := range lines {
			if m := reBareQuotation.FindString(normalizeText(l.Text)); m != "" {
				return m, true
			}
		}
		return "", false
	}

	label := lines[labelIdx]
	rightBound := math.Inf(1)
	for _, l := range lines {
		if containsAny(l.Text, quotationDateKeywords) && sameRow(label.Box, l.Box, 1.0) && l.Box.X1 > label.Box.X2 {
			rightBound = l.Box.X1
			break
		}
	}

	type candidate struct {
		x    float64
		text string
	}
	var candidates []candidate
	for i, l := range lines {
		if i == labelIdx || !sameRow(label.Box, l.Box, 1.0) {
			continue
		}
		if l.Box.X1 <= label.Box.X2 || l.Box.X1 >= rightBound {
			continue
		}
		cleaned := cleanIDText(l.Text)
		if reQuotationID.MatchString(cleaned) && reHasDigit.MatchString(cleaned) || reLongDigits.MatchString(cleaned) {
			candidates = append(candidates, candidate{x: l.Box.X1, text: cleaned})
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].x < candidates[j].x })
	return candidates[0].text, true
}

// extractItems reads the item table: product rows are detected among the
// region's member lines, their same-row cells gathered and classified, and
// price roles resolved.
func (e *QuotationExtractor) extractItems(inTable []geometry.TextLine) []entity.LineItem {
	var products []geometry.TextLine
	for _, l := range inTable {
		if isProductLine(l.Text) {
			products = append(products, l)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Box.CenterY() < products[j].Box.CenterY() })

	var items []entity.LineItem
	for _, p := range products {
		item := e.buildItem(p, inTable)
		if item.Name != "" && item.Amount > 0 {
			items = append(items, item)
		}
	}
	return items
}

// isProductLine applies the product-row shape test: long enough, not a
// header word or bare number/price, carrying both an ideographic name and an
// alphanumeric code token.
func isProductLine(text string) bool {
	t := normalizeText(text)
	if utf8.RuneCountInString(t) <= 5 {
		return false
	}
	s := squash(t)
	for _, h := range tableHeaderWords {
		if strings.Contains(s, h) {
			return false
		}
	}
	if isPureNumber(t) || looksLikeCurrency(t) && !hasHan(t) {
		return false
	}
	return hasHan(t) && reCodeToken.MatchString(t)
}

// buildItem clusters the product line's visual row and classifies each cell.
func (e *QuotationExtractor) buildItem(p geometry.TextLine, inTable []geometry.TextLine) entity.LineItem {
	item := entity.LineItem{Name: normalizeText(p.Text)}
	tol := e.Cfg.RowHeightFactor * p.Box.Height()

	var row []geometry.TextLine
	for _, l := range inTable {
		if l == p || math.Abs(l.Box.CenterY()-p.Box.CenterY()) >= tol {
			continue
		}
		row = append(row, l)
	}
	sort.Slice(row, func(i, j int) bool { return row[i].Box.X1 < row[j].Box.X1 })

	var prices []float64
	var specs []string
	for _, cell := range row {
		t := normalizeText(cell.Text)
		switch {
		case t == "":
		case looksLikeCurrency(t):
			if v, ok := parseAmountValue(t); ok && v > 0 {
				prices = append(prices, v)
			}
		case reQuantity.MatchString(t):
			if item.Quantity == 0 {
				item.Quantity, _ = strconv.Atoi(t)
			}
		case utf8.RuneCountInString(t) == 1 && unitGlyphs[t]:
			item.Unit = t
		case !reHasDigit.MatchString(t):
			specs = append(specs, t)
		}
	}
	item.Spec = strings.Join(specs, " ")

	// Price-role disambiguation: the largest candidate is the row amount,
	// the second-largest the unit price. A lone candidate is the amount;
	// the unit price is then back-derived from the quantity.
	sort.Float64s(prices)
	switch {
	case len(prices) >= 2:
		item.Amount = prices[len(prices)-1]
		item.UnitPrice = prices[len(prices)-2]
	case len(prices) == 1:
		item.Amount = prices[0]
		if item.Quantity > 0 {
			item.UnitPrice = roundDiv(item.Amount, item.Quantity)
		}
	}
	return item
}

// resolveTotals scans keyword rows for subtotal, tax and total, keeping the
// bottom-most occurrence of each, then reconciles the three.
func (e *QuotationExtractor) resolveTotals(lines []geometry.TextLine, info *entity.QuotationInfo) {
	sorted := make([]geometry.TextLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Box.CenterY() < sorted[j].Box.CenterY() })

	subtotal := e.bottomMost(sorted, subtotalKeywords, nil)
	tax := e.bottomMost(sorted, taxKeywords, totalKeywords)
	total := e.bottomMost(sorted, totalKeywords, taxKeywords)

	if subtotal != nil {
		info.Subtotal = subtotal
	}
	// Tax candidates at or above the chosen subtotal/total are likely
	// mis-detections; drop them.
	if tax != nil {
		ref := total
		if subtotal != nil {
			ref = subtotal
		}
		if ref == nil || *tax < *ref {
			info.Tax = tax
		}
	}
	switch {
	case total != nil:
		info.Total = total
	case subtotal != nil:
		t := *subtotal
		if info.Tax != nil {
			t += *info.Tax
		}
		info.Total = &t
	default:
		if v, ok := largestCurrencyValue(lines); ok {
			info.Total = &v
		}
	}
}

// bottomMost collects every candidate value for the keyword set and returns
// the one at the greatest Y. Lines matching any exclusion keyword are
// skipped so tax and total vocabularies never claim each other's rows.
func (e *QuotationExtractor) bottomMost(sorted []geometry.TextLine, keywords, exclude []string) *float64 {
	var best *float64
	for _, l := range sorted { // ascending Y: the last hit is bottom-most
		if !containsAny(l.Text, keywords) || containsAny(l.Text, exclude) {
			continue
		}
		if v, ok := e.rowValue(sorted, l); ok {
			value := v
			best = &value
		}
	}
	return best
}

// rowValue finds the value for a keyword line: the nearest numeric token to
// the right on the same visual row, else a number embedded in the label line
// itself (accepted only above the embedded minimum, to reject stray
// percentages).
func (e *QuotationExtractor) rowValue(lines []geometry.TextLine, label geometry.TextLine) (float64, bool) {
	tol := e.Cfg.TotalRowTolerance * label.Box.Height()
	bestGap := math.Inf(1)
	var bestVal float64
	found := false
	for _, l := range lines {
		if l == label || l.Box.X1 <= label.Box.X2 {
			continue
		}
		if math.Abs(l.Box.CenterY()-label.Box.CenterY()) > tol {
			continue
		}
		v, ok := parseAmountValue(l.Text)
		if !ok {
			continue
		}
		if gap := l.Box.X1 - label.Box.X2; gap < bestGap {
			bestGap, bestVal, found = gap, v, true
		}
	}
	if found {
		return bestVal, true
	}
	if v, ok := parseAmountValue(label.Text); ok && v > e.Cfg.EmbeddedMinimum {
		return v, true
	}
	return 0, false
}

// largestCurrencyValue is the last-resort total: the single largest
// currency-looking value anywhere in the document.
func largestCurrencyValue(lines []geometry.TextLine) (float64, bool) {
	best, found := 0.0, false
	for _, l := range lines {
		if !looksLikeCurrency(l.Text) {
			continue
		}
		if v, ok := parseAmountValue(l.Text); ok && v > best {
			best, found = v, true
		}
	}
	return best, found
}

func containsAny(text string, keywords []string) bool {
	s := squash(text)
	for _, kw := range keywords {
		if strings.Contains(s, squash(kw)) {
			return true
		}
	}
	return false
}

// sameRow reports whether two boxes' vertical centers sit within factor ×
// the first box's height of each other.
func sameRow(a, b geometry.Rect, factor float64) bool {
	return math.Abs(a.CenterY()-b.CenterY()) < factor*a.Height()
}

// cleanIDText strips label residue around an identifier candidate: separator
// punctuation on both ends and a leading "No."/"No:" marker. Letters are
// never trimmed, so identifiers ending in them stay intact.
func cleanIDText(s string) string {
	t := strings.Trim(normalizeText(s), ":# .")
	lower := strings.ToLower(t)
	for _, marker := range []string{"no.", "no:"} {
		if strings.HasPrefix(lower, marker) {
			t = strings.TrimLeft(t[len(marker):], ":# .")
			break
		}
	}
	return strings.ReplaceAll(t, " ", "")
}

// joinScan concatenates line texts for whole-document single-pattern scans.
func joinScan(lines []geometry.TextLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = normalizeText(l.Text)
	}
	return strings.Join(parts, "\n")
}

// findFirstCapture returns the first capture-group match and its line index,
// or -1.
func findFirstCapture(lines []geometry.TextLine, re *regexp.Regexp) (string, int) {
	for i, l := range lines {
		if m := re.FindStringSubmatch(normalizeText(l.Text)); m != nil {
			return m[1], i
		}
	}
	return "", -1
}
