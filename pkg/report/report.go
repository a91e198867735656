// Package report exports sales data to .xlsx workbooks for the shop's
// accountant. One workbook, one sheet per panel.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dukaanlabs/dukaan/pkg/analytics"
	"github.com/dukaanlabs/dukaan/pkg/billing"
)

// Workbook accumulates sheets and saves the file.
type Workbook struct {
	f      *excelize.File
	sheets int
}

// NewWorkbook starts an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile()}
}

// AddSalesTrends writes the per-day revenue sheet.
func (w *Workbook) AddSalesTrends(trends analytics.SalesTrends) error {
	sheet, err := w.newSheet("Sales Trends")
	if err != nil {
		return err
	}

	w.setRow(sheet, 1, "Date", "Revenue", "Transactions")
	for i, p := range trends.Daily {
		w.setRow(sheet, i+2, p.Date, p.Revenue, p.Transactions)
	}

	base := len(trends.Daily) + 3
	w.setRow(sheet, base, "Weekly Revenue", trends.WeeklyRevenue)
	w.setRow(sheet, base+1, "Monthly Revenue", trends.MonthlyRevenue)
	return nil
}

// AddProductPerformance writes top sellers and category breakdown.
func (w *Workbook) AddProductPerformance(perf analytics.ProductPerformance) error {
	sheet, err := w.newSheet("Product Performance")
	if err != nil {
		return err
	}

	w.setRow(sheet, 1, "Product", "Quantity Sold", "Revenue")
	row := 2
	for _, p := range perf.TopProducts {
		w.setRow(sheet, row, p.Name, p.Quantity, p.Revenue)
		row++
	}

	row += 2
	w.setRow(sheet, row, "Category", "Revenue")
	row++
	for _, c := range perf.CategoryPerformance {
		w.setRow(sheet, row, c.Category, c.Revenue)
		row++
	}
	return nil
}

// AddReceipts writes the archived receipts sheet, one row per receipt.
func (w *Workbook) AddReceipts(receipts []*billing.Receipt) error {
	sheet, err := w.newSheet("Receipts")
	if err != nil {
		return err
	}

	w.setRow(sheet, 1, "Bill", "Completed", "Payment", "Items", "Grand Total")
	for i, r := range receipts {
		count := 0
		for _, it := range r.Items {
			count += it.Quantity
		}
		w.setRow(sheet, i+2,
			r.BillID, r.CompletedAt.Format("2006-01-02 15:04"), r.PaymentMode, count, r.GrandTotal)
	}
	return nil
}

// Save writes the workbook to path. At least one sheet must have been added.
func (w *Workbook) Save(path string) error {
	if w.sheets == 0 {
		return fmt.Errorf("report: nothing to export")
	}
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// newSheet adds a named sheet, reusing excelize's default first sheet for
// the first panel.
func (w *Workbook) newSheet(name string) (string, error) {
	if w.sheets == 0 {
		if err := w.f.SetSheetName(w.f.GetSheetName(0), name); err != nil {
			return "", fmt.Errorf("report: rename sheet: %w", err)
		}
	} else {
		if _, err := w.f.NewSheet(name); err != nil {
			return "", fmt.Errorf("report: add sheet %s: %w", name, err)
		}
	}
	w.sheets++
	return name, nil
}

func (w *Workbook) setRow(sheet string, row int, values ...interface{}) {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		w.f.SetCellValue(sheet, cell, v)
	}
}
