package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robert008/flutter-ocr-kit/internal/entity"
)

// Session is the in-memory record set for one scanning session. All merges
// go through a single mutex: the merge decision compares against the current
// stored confidence and item count, so concurrent unsynchronized merges
// could apply observations out of precedence order.
type Session struct {
	logger     *slog.Logger
	thresholds Thresholds

	mu         sync.Mutex
	invoices   map[string]*entity.ScannedInvoice
	quotations map[string]*entity.ScannedQuotation
	now        func() time.Time
}

func NewSession(logger *slog.Logger, thresholds Thresholds) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		logger:     logger,
		thresholds: thresholds.withDefaults(),
		invoices:   make(map[string]*entity.ScannedInvoice),
		quotations: make(map[string]*entity.ScannedQuotation),
		now:        time.Now,
	}
}

// MergeInvoice creates or updates the record keyed by the observation's
// dedupe key. A sub-threshold observation is a complete no-op.
func (s *Session) MergeInvoice(info entity.InvoiceInfo) (entity.ScannedInvoice, Outcome) {
	if !info.Valid() {
		return entity.ScannedInvoice{}, Rejected
	}
	key := DedupeKey(*info.Number)

	s.mu.Lock()
	defer s.mu.Unlock()
	merged, outcome := MergeInvoice(s.invoices[key], info, s.now(), s.thresholds)
	if outcome == Rejected {
		s.logger.Debug("invoice merge rejected", "key", key, "confidence", info.Confidence)
		if existing := s.invoices[key]; existing != nil {
			return *existing, outcome
		}
		return entity.ScannedInvoice{}, outcome
	}
	s.invoices[key] = merged
	s.logger.Info("invoice merge", "key", key, "outcome", outcome.String(), "confidence", merged.Confidence)
	return *merged, outcome
}

// MergeQuotation is MergeInvoice's counterpart for quotations.
func (s *Session) MergeQuotation(info entity.QuotationInfo) (entity.ScannedQuotation, Outcome) {
	if !info.Valid() {
		return entity.ScannedQuotation{}, Rejected
	}
	key := DedupeKey(*info.Number)

	s.mu.Lock()
	defer s.mu.Unlock()
	merged, outcome := MergeQuotation(s.quotations[key], info, s.now(), s.thresholds)
	if outcome == Rejected {
		s.logger.Debug("quotation merge rejected", "key", key, "confidence", info.Confidence)
		if existing := s.quotations[key]; existing != nil {
			return *existing, outcome
		}
		return entity.ScannedQuotation{}, outcome
	}
	s.quotations[key] = merged
	s.logger.Info("quotation merge", "key", key, "outcome", outcome.String(), "confidence", merged.Confidence)
	return *merged, outcome
}

// Invoices returns a snapshot of the stored invoices, oldest scan first.
func (s *Session) Invoices() []entity.ScannedInvoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ScannedInvoice, 0, len(s.invoices))
	for _, r := range s.invoices {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScannedAt.Before(out[j].ScannedAt) })
	return out
}

// Quotations returns a snapshot of the stored quotations, oldest scan first.
func (s *Session) Quotations() []entity.ScannedQuotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ScannedQuotation, 0, len(s.quotations))
	for _, r := range s.quotations {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScannedAt.Before(out[j].ScannedAt) })
	return out
}

// Clear destroys every record in the session.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = make(map[string]*entity.ScannedInvoice)
	s.quotations = make(map[string]*entity.ScannedQuotation)
	s.logger.Info("session cleared")
}
