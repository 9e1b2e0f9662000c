// Package scan drives the per-frame cycle: admission, extraction, merge.
package scan

import (
	"log/slog"
	"sync/atomic"

	"github.com/robert008/flutter-ocr-kit/constants"
	"github.com/robert008/flutter-ocr-kit/internal/extract"
	"github.com/robert008/flutter-ocr-kit/internal/ocr"
	"github.com/robert008/flutter-ocr-kit/internal/store"
)

// Gate is the at-most-one-in-flight admission control. A frame arriving
// while another is outstanding is dropped, not buffered; the capture layer
// simply offers the next frame later. Stop is cooperative: it prevents the
// next cycle from starting but lets an admitted one finish its merge.
type Gate struct {
	busy    atomic.Bool
	stopped atomic.Bool
}

// TryBegin admits one cycle. It returns false while another cycle is in
// flight or after Stop.
func (g *Gate) TryBegin() bool {
	if g.stopped.Load() {
		return false
	}
	return g.busy.CompareAndSwap(false, true)
}

// End releases the in-flight slot.
func (g *Gate) End() { g.busy.Store(false) }

// Stop prevents any further cycle from being admitted.
func (g *Gate) Stop() { g.stopped.Store(true) }

// Stopped reports whether Stop was called.
func (g *Gate) Stopped() bool { return g.stopped.Load() }

// Scanner runs one extraction+merge cycle per admitted frame. Extraction is
// pure; only the session mutates state.
type Scanner struct {
	Logger     *slog.Logger
	Gate       Gate
	Invoices   *extract.InvoiceExtractor
	Quotations *extract.QuotationExtractor
	Session    *store.Session
}

func NewScanner(logger *slog.Logger, inv *extract.InvoiceExtractor, quo *extract.QuotationExtractor, session *store.Session) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{Logger: logger, Invoices: inv, Quotations: quo, Session: session}
}

// FrameOutcome reports what happened to one offered frame.
type FrameOutcome struct {
	Admitted bool
	Merges   []store.Outcome
}

// Frame offers one captured frame's results to the pipeline. Returns
// Admitted=false when the gate dropped it.
func (s *Scanner) Frame(docType constants.DocType, res ocr.Result, layout *ocr.LayoutResult) FrameOutcome {
	if !s.Gate.TryBegin() {
		s.Logger.Debug("frame dropped", "doc_type", string(docType))
		return FrameOutcome{}
	}
	defer s.Gate.End()

	out := FrameOutcome{Admitted: true}
	switch docType {
	case constants.DocTypeInvoice:
		for _, info := range s.Invoices.ExtractAll(res) {
			_, outcome := s.Session.MergeInvoice(info)
			out.Merges = append(out.Merges, outcome)
		}
	case constants.DocTypeQuotation:
		info := s.Quotations.Extract(res, layout)
		_, outcome := s.Session.MergeQuotation(info)
		out.Merges = append(out.Merges, outcome)
	default:
		s.Logger.Warn("unknown document type", "doc_type", string(docType))
	}
	return out
}
