package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/robert008/flutter-ocr-kit/internal/entity"
	"github.com/robert008/flutter-ocr-kit/internal/geometry"
	"github.com/robert008/flutter-ocr-kit/internal/ocr"
)

// certPhrase is the certification phrase printed on every electronic invoice
// copy; it anchors relative search for nearby fields.
const certPhrase = "電子發票證明聯"

// anchorWindow is how many lines after the anchor count as "near" it.
const anchorWindow = 5

// multiInvoiceLookback is the per-partition context kept before each anchor
// when a document carries several invoice images.
const multiInvoiceLookback = 2

var (
	reInvoiceNumber = regexp.MustCompile(`([A-Z]{2})\s*-?\s*(\d{8})`)
	rePeriodRange   = regexp.MustCompile(`\d{2,3}年\d{1,2}-\d{1,2}月`)
	rePeriodSingle  = regexp.MustCompile(`\d{2,3}年\d{1,2}月`)
	reISODate       = regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`)
	reRandomCode    = regexp.MustCompile(`隨機碼\D{0,2}(\d{4})`)

	// Amount patterns in priority order; the first line matching the
	// highest-priority pattern wins.
	reAmountByPriority = []*regexp.Regexp{
		regexp.MustCompile(`總\s*計[::]?\s*(?:NT\$|TWD|[$])?\s*(\d{1,3}(?:,\d{3})+|\d+)`),
		regexp.MustCompile(`合\s*計[::]?\s*(?:NT\$|TWD|[$])?\s*(\d{1,3}(?:,\d{3})+|\d+)`),
		regexp.MustCompile(`小\s*計[::]?\s*(?:NT\$|TWD|[$])?\s*(\d{1,3}(?:,\d{3})+|\d+)`),
		regexp.MustCompile(`(?:總金額|金額)[::]?\s*(?:NT\$|TWD|[$])?\s*(\d{1,3}(?:,\d{3})+|\d+)`),
		regexp.MustCompile(`(?i)total[::]?\s*(?:NT\$|TWD|[$])?\s*(\d{1,3}(?:,\d{3})+|\d+)`),
		regexp.MustCompile(`[$]\s*(\d{1,3}(?:,\d{3})+|\d+)`),
	}

	// sellerMarkers are boilerplate fragments that disqualify a line from
	// being the seller name.
	sellerMarkers = []string{"統一編號", "統編", "電子發票", "證明聯", "收執聯", "隨機碼"}
)

// Amount sanity range, whole TWD.
const (
	minInvoiceAmount = 1
	maxInvoiceAmount = 10_000_000
)

// InvoiceConfig holds the per-field confidence gates for invoice extraction.
type InvoiceConfig struct {
	NumberConfidence float64 // default 0.90
	FieldConfidence  float64 // default 0.85
	AmountConfidence float64 // default 0.65
}

// InvoiceExtractor turns one OCR observation into an InvoiceInfo. All
// finders are independent; no finder's failure blocks the others.
type InvoiceExtractor struct {
	Logger *slog.Logger
	Cfg    InvoiceConfig
}

func NewInvoiceExtractor(logger *slog.Logger, cfg InvoiceConfig) *InvoiceExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.NumberConfidence <= 0 {
		cfg.NumberConfidence = 0.90
	}
	if cfg.FieldConfidence <= 0 {
		cfg.FieldConfidence = 0.85
	}
	if cfg.AmountConfidence <= 0 {
		cfg.AmountConfidence = 0.65
	}
	return &InvoiceExtractor{Logger: logger, Cfg: cfg}
}

// Extract runs every field finder over the observation and assembles an
// InvoiceInfo. Absent fields stay nil; validity hinges on the number.
func (e *InvoiceExtractor) Extract(res ocr.Result) entity.InvoiceInfo {
	return e.extractLines(res.UsableLines())
}

// ExtractAll handles documents carrying several invoice images: the line
// stream is partitioned at each anchor occurrence (keeping two lines of
// lookback context) and the single-invoice extractor runs per partition.
func (e *InvoiceExtractor) ExtractAll(res ocr.Result) []entity.InvoiceInfo {
	lines := res.UsableLines()
	anchors := anchorIndexes(lines)
	if len(anchors) <= 1 {
		return []entity.InvoiceInfo{e.extractLines(lines)}
	}

	infos := make([]entity.InvoiceInfo, 0, len(anchors))
	for k, a := range anchors {
		start := a - multiInvoiceLookback
		if start < 0 {
			start = 0
		}
		end := len(lines)
		if k+1 < len(anchors) {
			end = anchors[k+1]
		}
		infos = append(infos, e.extractLines(lines[start:end]))
	}
	return infos
}

func (e *InvoiceExtractor) extractLines(lines []geometry.TextLine) entity.InvoiceInfo {
	var info entity.InvoiceInfo
	if len(lines) == 0 {
		return info
	}

	anchor := -1
	if idx := anchorIndexes(lines); len(idx) > 0 {
		anchor = idx[0]
	}
	contrib := map[int]bool{}

	if v, i, ok := e.findNumber(lines, anchor); ok {
		info.Number, contrib[i] = &v, true
	}
	if v, i, ok := e.findPeriod(lines, anchor); ok {
		info.Period, contrib[i] = &v, true
	}
	if v, i, ok := e.findSeller(lines, anchor); ok {
		info.SellerName, contrib[i] = &v, true
	}
	if v, i, ok := e.findAmount(lines); ok {
		info.Amount, contrib[i] = &v, true
	}
	if v, i, ok := e.findEntity(lines, EntityDate); ok {
		d := normalizeDate(v)
		info.Date, contrib[i] = &d, true
	}
	if v, i, ok := e.findEntity(lines, EntityTime); ok {
		info.Time, contrib[i] = &v, true
	}
	if v, i, ok := e.findCapture(lines, reRandomCode); ok {
		info.RandomCode, contrib[i] = &v, true
	}

	var sum float64
	for i := range contrib {
		sum += lines[i].Confidence
	}
	if len(contrib) > 0 {
		info.Confidence = sum / float64(len(contrib))
	}

	e.Logger.Debug("invoice.extract",
		"anchor", anchor >= 0,
		"valid", info.Valid(),
		"fields", len(contrib),
		"confidence", info.Confidence,
	)
	return info
}

func anchorIndexes(lines []geometry.TextLine) []int {
	var idx []int
	for i, l := range lines {
		if strings.Contains(squash(l.Text), certPhrase) {
			idx = append(idx, i)
		}
	}
	return idx
}

// findNumber looks for the two-letter + eight-digit invoice number, first in
// a small window after the anchor, then in the whole document.
func (e *InvoiceExtractor) findNumber(lines []geometry.TextLine, anchor int) (string, int, bool) {
	scan := func(from, to int) (string, int, bool) {
		for i := from; i < to; i++ {
			m := reInvoiceNumber.FindStringSubmatch(normalizeText(lines[i].Text))
			if m == nil || lines[i].Confidence < e.Cfg.NumberConfidence {
				continue
			}
			return m[1] + "-" + m[2], i, true
		}
		return "", 0, false
	}
	if anchor >= 0 {
		to := anchor + 1 + anchorWindow
		if to > len(lines) {
			to = len(lines)
		}
		if v, i, ok := scan(anchor+1, to); ok {
			return v, i, true
		}
	}
	return scan(0, len(lines))
}

// findPeriod prefers an explicit 民國 period near the anchor, then anywhere,
// then infers the bi-monthly bucket from any ISO-like date line.
func (e *InvoiceExtractor) findPeriod(lines []geometry.TextLine, anchor int) (string, int, bool) {
	scan := func(from, to int) (string, int, bool) {
		for i := from; i < to; i++ {
			if lines[i].Confidence < e.Cfg.FieldConfidence {
				continue
			}
			t := normalizeText(lines[i].Text)
			if m := rePeriodRange.FindString(t); m != "" {
				return m, i, true
			}
			if m := rePeriodSingle.FindString(t); m != "" {
				return m, i, true
			}
		}
		return "", 0, false
	}
	if anchor >= 0 {
		to := anchor + 1 + anchorWindow
		if to > len(lines) {
			to = len(lines)
		}
		if v, i, ok := scan(anchor, to); ok {
			return v, i, true
		}
	}
	if v, i, ok := scan(0, len(lines)); ok {
		return v, i, true
	}
	// Inference fallback: bucket any recognizable date.
	for i, l := range lines {
		if l.Confidence < e.Cfg.FieldConfidence {
			continue
		}
		m := reISODate.FindStringSubmatch(normalizeText(l.Text))
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			continue
		}
		return formatPeriod(year, month), i, true
	}
	return "", 0, false
}

// formatPeriod maps a Gregorian year/month to the regional bi-monthly
// invoicing bucket: 民國 year with 01-02, 03-04, ... month pairs.
func formatPeriod(year, month int) string {
	twYear := year - 1911
	start := (month-1)/2*2 + 1
	return fmt.Sprintf("%d年%02d-%02d月", twYear, start, start+1)
}

// findSeller walks upward from the anchor (or over the first three lines
// when there is none) for the first line that is plausibly a business name.
func (e *InvoiceExtractor) findSeller(lines []geometry.TextLine, anchor int) (string, int, bool) {
	try := func(i int) (string, bool) {
		l := lines[i]
		if l.Confidence < e.Cfg.FieldConfidence {
			return "", false
		}
		name := normalizeText(l.Text)
		if len([]rune(name)) < 2 || isPureNumber(name) {
			return "", false
		}
		s := squash(name)
		for _, marker := range sellerMarkers {
			if strings.Contains(s, marker) {
				return "", false
			}
		}
		return name, true
	}
	if anchor >= 0 {
		for i := anchor - 1; i >= 0; i-- {
			if v, ok := try(i); ok {
				return v, i, true
			}
		}
		return "", 0, false
	}
	limit := 3
	if len(lines) < limit {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		if v, ok := try(i); ok {
			return v, i, true
		}
	}
	return "", 0, false
}

// findAmount takes the first match in pattern-priority order and accepts it
// only inside the sanity range.
func (e *InvoiceExtractor) findAmount(lines []geometry.TextLine) (int64, int, bool) {
	for _, re := range reAmountByPriority {
		for i, l := range lines {
			if l.Confidence < e.Cfg.AmountConfidence {
				continue
			}
			m := re.FindStringSubmatch(normalizeText(l.Text))
			if m == nil {
				continue
			}
			v, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
			if err != nil || v < minInvoiceAmount || v > maxInvoiceAmount {
				continue
			}
			return v, i, true
		}
	}
	return 0, 0, false
}

// findEntity returns the first tagged entity of the type, scanning lines in
// order with the optional-field confidence gate applied per line.
func (e *InvoiceExtractor) findEntity(lines []geometry.TextLine, t EntityType) (string, int, bool) {
	for i, l := range lines {
		if l.Confidence < e.Cfg.FieldConfidence {
			continue
		}
		folded := l
		folded.Text = normalizeText(l.Text)
		if found := Entities([]geometry.TextLine{folded}, []EntityType{t}); len(found) > 0 {
			return found[0].Value, i, true
		}
	}
	return "", 0, false
}

// findCapture returns the first capture-group match over the document.
func (e *InvoiceExtractor) findCapture(lines []geometry.TextLine, re *regexp.Regexp) (string, int, bool) {
	for i, l := range lines {
		if l.Confidence < e.Cfg.FieldConfidence {
			continue
		}
		if m := re.FindStringSubmatch(normalizeText(l.Text)); m != nil {
			return m[1], i, true
		}
	}
	return "", 0, false
}

// normalizeDate reformats an ISO-like date match as YYYY-MM-DD.
func normalizeDate(s string) string {
	m := reISODate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
