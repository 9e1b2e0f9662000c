package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/robert008/flutter-ocr-kit/constants"
	"github.com/robert008/flutter-ocr-kit/internal/common"
	"github.com/robert008/flutter-ocr-kit/internal/extract"
	"github.com/robert008/flutter-ocr-kit/internal/ocr"
	"github.com/robert008/flutter-ocr-kit/internal/scan"
	"github.com/robert008/flutter-ocr-kit/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 3 || len(os.Args) > 4 {
		logger.Error("usage", "cmd", "docscan <invoice|quotation> <ocr.json> [layout.json]")
		os.Exit(2)
	}
	docType := constants.DocType(strings.ToUpper(os.Args[1]))
	if !constants.IsValidDocType(string(docType)) {
		logger.Error("unknown document type", "arg", os.Args[1])
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	res, err := decodeResultFile(os.Args[2])
	if err != nil {
		logger.Error("read ocr result", "path", os.Args[2], "error", err)
		os.Exit(1)
	}
	var layout *ocr.LayoutResult
	if len(os.Args) == 4 {
		l, err := decodeLayoutFile(os.Args[3])
		if err != nil {
			logger.Error("read layout result", "path", os.Args[3], "error", err)
			os.Exit(1)
		}
		layout = &l
	}

	session := store.NewSession(logger, store.Thresholds{
		Create: cfg.Thresholds.Create,
		Update: cfg.Thresholds.Update,
	})
	scanner := scan.NewScanner(logger,
		extract.NewInvoiceExtractor(logger, extract.InvoiceConfig{
			NumberConfidence: cfg.Thresholds.InvoiceNumber,
			FieldConfidence:  cfg.Thresholds.Field,
			AmountConfidence: cfg.Thresholds.Amount,
		}),
		extract.NewQuotationExtractor(logger, extract.QuotationConfig{
			Containment:      cfg.Extract.Containment,
			TargetClasses:    cfg.Extract.TargetClasses,
			MaxHorizontalGap: cfg.Extract.MaxHorizontalGap,
			MaxVerticalGap:   cfg.Extract.MaxVerticalGap,
			OverlapFraction:  cfg.Extract.OverlapFraction,
		}),
		session,
	)

	outcome := scanner.Frame(docType, res, layout)
	logger.Info("frame processed", "admitted", outcome.Admitted, "merges", len(outcome.Merges))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	switch docType {
	case constants.DocTypeInvoice:
		err = enc.Encode(session.Invoices())
	case constants.DocTypeQuotation:
		err = enc.Encode(session.Quotations())
	}
	if err != nil {
		logger.Error("encode records", "error", err)
		os.Exit(1)
	}
}

func decodeResultFile(path string) (ocr.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ocr.Result{}, err
	}
	return ocr.DecodeResult(data)
}

func decodeLayoutFile(path string) (ocr.LayoutResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ocr.LayoutResult{}, err
	}
	return ocr.DecodeLayout(data)
}
