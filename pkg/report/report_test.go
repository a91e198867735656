package report_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dukaanlabs/dukaan/pkg/analytics"
	"github.com/dukaanlabs/dukaan/pkg/billing"
	"github.com/dukaanlabs/dukaan/pkg/report"
)

func TestWorkbook_RoundTrip(t *testing.T) {
	w := report.NewWorkbook()

	require.NoError(t, w.AddSalesTrends(analytics.SalesTrends{
		Daily: []analytics.TrendPoint{
			{Date: "2026-08-28", Revenue: 1250.50, Transactions: 14},
			{Date: "2026-08-29", Revenue: 980, Transactions: 9},
		},
		WeeklyRevenue:  8200,
		MonthlyRevenue: 48000,
	}))
	require.NoError(t, w.AddReceipts([]*billing.Receipt{
		{
			BillID: "bill-1", PaymentMode: "upi", GrandTotal: 21,
			Items:       []billing.BillItem{{Quantity: 2}},
			CompletedAt: time.Date(2026, 8, 29, 18, 30, 0, 0, time.UTC),
		},
	}))

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, w.Save(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Sales Trends")
	assert.Contains(t, f.GetSheetList(), "Receipts")

	got, err := f.GetCellValue("Sales Trends", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1250.5", got)

	bill, err := f.GetCellValue("Receipts", "A2")
	require.NoError(t, err)
	assert.Equal(t, "bill-1", bill)
}

func TestWorkbook_EmptyRefusesToSave(t *testing.T) {
	w := report.NewWorkbook()
	err := w.Save(filepath.Join(t.TempDir(), "empty.xlsx"))
	assert.Error(t, err)
}
