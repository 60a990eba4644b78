// Package export produces XLSX workbooks from persisted bills.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/bill-tracker/internal/domain/bills"
)

// Service flattens bills into a line-item workbook for download.
type Service struct {
	repo   bills.Repository
	logger *slog.Logger
}

func NewService(repo bills.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// BillsXLSX returns an XLSX workbook (as bytes) with one row per line item,
// matching the wide CSV schema so exports can be re-imported.
func (s *Service) BillsXLSX(ctx context.Context, filter bills.Filter) ([]byte, error) {
	start := time.Now()

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Bills"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIndex, _ := f.GetSheetIndex("Sheet1"); defaultIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Date",
		"Shop Name",
		"Item Name",
		"Quantity",
		"Cost per unit",
		"Total amount paid",
		"Item Type",
		"Upload Type",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	items := 0
	for _, bill := range list {
		for _, item := range bill.Items {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}

			write(1, bill.Date.Format("2006-01-02"))
			write(2, bill.ShopName)
			write(3, item.Name)
			write(4, item.Quantity.String())
			write(5, item.UnitPrice.StringFixed(2))
			write(6, item.LineTotal.StringFixed(2))
			write(7, item.Category)
			write(8, string(bill.UploadType))

			row++
			items++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "B", 24) // shop
	_ = f.SetColWidth(sheet, "C", "C", 32) // item
	_ = f.SetColWidth(sheet, "D", "F", 16) // amounts
	_ = f.SetColWidth(sheet, "G", "H", 16) // category, source

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		slog.Int("bills", len(list)),
		slog.Int("items", items),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}
