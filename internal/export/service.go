// Package export turns a session's scanned records into XLSX workbooks for
// the surrounding app to share or archive.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/robert008/flutter-ocr-kit/internal/entity"
)

// Service produces XLSX bytes from scanned records.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// InvoicesXLSX returns a workbook with one row per scanned invoice.
func (s *Service) InvoicesXLSX(invoices []entity.ScannedInvoice) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	const sheet = "Invoices"
	if err := ensureSheet(f, sheet); err != nil {
		return nil, err
	}

	headers := []string{
		"Invoice Number",
		"Period",
		"Seller",
		"Amount",
		"Date",
		"Time",
		"Random Code",
		"Confidence",
		"Scanned At",
	}
	writeHeaders(f, sheet, headers)

	row := 2
	for _, r := range invoices {
		write := cellWriter(f, sheet, row)
		write(1, r.Number)
		write(2, strOrEmpty(r.Period))
		write(3, strOrEmpty(r.SellerName))
		if r.Amount != nil {
			write(4, *r.Amount)
		}
		write(5, strOrEmpty(r.Date))
		write(6, strOrEmpty(r.Time))
		write(7, strOrEmpty(r.RandomCode))
		write(8, r.Confidence)
		write(9, r.ScannedAt.UTC().Format(time.RFC3339))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16)
	_ = f.SetColWidth(sheet, "B", "C", 22)
	_ = f.SetColWidth(sheet, "D", "H", 12)
	_ = f.SetColWidth(sheet, "I", "I", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.invoices", "rows", len(invoices), "elapsed", time.Since(start))
	return buf.Bytes(), nil
}

// QuotationsXLSX returns a workbook with one row per scanned quotation; item
// lists are flattened into a single cell.
func (s *Service) QuotationsXLSX(quotations []entity.ScannedQuotation) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	const sheet = "Quotations"
	if err := ensureSheet(f, sheet); err != nil {
		return nil, err
	}

	headers := []string{
		"Quotation Number",
		"Date",
		"Customer",
		"Order Number",
		"Items",
		"Subtotal",
		"Tax",
		"Total",
		"Confidence",
		"Scanned At",
	}
	writeHeaders(f, sheet, headers)

	row := 2
	for _, r := range quotations {
		write := cellWriter(f, sheet, row)
		write(1, r.Number)
		write(2, strOrEmpty(r.Date))
		write(3, strOrEmpty(r.CustomerName))
		write(4, strOrEmpty(r.OrderNumber))
		write(5, flattenItems(r.Items))
		if r.Subtotal != nil {
			write(6, *r.Subtotal)
		}
		if r.Tax != nil {
			write(7, *r.Tax)
		}
		if r.Total != nil {
			write(8, *r.Total)
		}
		write(9, r.Confidence)
		write(10, r.ScannedAt.UTC().Format(time.RFC3339))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "D", 18)
	_ = f.SetColWidth(sheet, "E", "E", 60)
	_ = f.SetColWidth(sheet, "F", "I", 12)
	_ = f.SetColWidth(sheet, "J", "J", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.quotations", "rows", len(quotations), "elapsed", time.Since(start))
	return buf.Bytes(), nil
}

func ensureSheet(f *excelize.File, sheet string) error {
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func cellWriter(f *excelize.File, sheet string, row int) func(col int, v any) {
	return func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func flattenItems(items []entity.LineItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s x%d @%.0f = %.0f", it.Name, it.Quantity, it.UnitPrice, it.Amount)
	}
	return strings.Join(parts, "; ")
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
