package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/robert008/flutter-ocr-kit/internal/entity"
	"github.com/robert008/flutter-ocr-kit/internal/export"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 4 {
		logger.Error("usage", "cmd", "docscan-export <invoices|quotations> <records.json> <out.xlsx>")
		os.Exit(2)
	}
	kind, inPath, outPath := os.Args[1], os.Args[2], os.Args[3]

	data, err := os.ReadFile(inPath)
	if err != nil {
		logger.Error("read records", "path", inPath, "error", err)
		os.Exit(1)
	}

	svc := export.NewService(logger)
	var out []byte
	switch kind {
	case "invoices":
		var recs []entity.ScannedInvoice
		if err := json.Unmarshal(data, &recs); err != nil {
			logger.Error("decode invoices", "error", err)
			os.Exit(1)
		}
		out, err = svc.InvoicesXLSX(recs)
	case "quotations":
		var recs []entity.ScannedQuotation
		if err := json.Unmarshal(data, &recs); err != nil {
			logger.Error("decode quotations", "error", err)
			os.Exit(1)
		}
		out, err = svc.QuotationsXLSX(recs)
	default:
		logger.Error("unknown record kind", "arg", kind)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("build workbook", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		logger.Error("write workbook", "path", outPath, "error", err)
		os.Exit(1)
	}
	logger.Info("export complete", "path", outPath, "bytes", len(out))
}
