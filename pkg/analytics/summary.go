package analytics

import (
	"github.com/dukaanlabs/dukaan/pkg/catalog"
	"github.com/dukaanlabs/dukaan/pkg/collection"
)

// Summary is the dashboard header block. It is computed client-side from the
// product list plus the revenue panel, so it works even when only one of the
// two fetches succeeded.
type Summary struct {
	TotalProducts int
	TotalStock    int
	TodaySales    float64
	LowStockItems int
}

// ComputeSummary folds the product list and today's revenue into the
// dashboard figures. Products below threshold count as low stock.
func ComputeSummary(products []catalog.Product, todayRevenue float64, threshold int) Summary {
	return Summary{
		TotalProducts: len(products),
		TodaySales:    todayRevenue,
		TotalStock:    collection.SumBy(products, func(p catalog.Product) int { return p.Stock }),
		LowStockItems: len(LowStock(products, threshold)),
	}
}

// LowStock filters products below threshold, preserving order.
func LowStock(products []catalog.Product, threshold int) []catalog.Product {
	return collection.Filter(products, func(p catalog.Product) bool { return p.Stock < threshold })
}
