// Package analytics reads the BI routes. These panels are best-effort by
// design: a shop with the analytics routes not yet deployed still gets a
// working POS, so every fetch can also be had as a degraded Panel that
// renders a message instead of failing.
package analytics

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/dukaanlabs/dukaan/pkg/gateway"
)

// RevenueStats is the headline revenue block.
type RevenueStats struct {
	DailyRevenue   float64 `json:"dailyRevenue"`
	WeeklyRevenue  float64 `json:"weeklyRevenue"`
	MonthlyRevenue float64 `json:"monthlyRevenue"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

// TrendPoint is one day on the sales trends chart.
type TrendPoint struct {
	Date         string  `json:"date"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
}

// SalesTrends is the trends panel payload.
type SalesTrends struct {
	Daily          []TrendPoint `json:"daily"`
	WeeklyRevenue  float64      `json:"weeklyRevenue"`
	MonthlyRevenue float64      `json:"monthlyRevenue"`
}

// ProductStat is one product's sales contribution.
type ProductStat struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantitySold"`
	Revenue   float64 `json:"revenue"`
}

// CategoryStat aggregates revenue per category.
type CategoryStat struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// ProductPerformance is the performance panel payload.
type ProductPerformance struct {
	TopProducts         []ProductStat  `json:"topProducts"`
	CategoryPerformance []CategoryStat `json:"categoryPerformance"`
}

// ProfitLoss is the profit/loss panel payload.
type ProfitLoss struct {
	Products     []ProductStat `json:"products"`
	TotalRevenue float64       `json:"totalRevenue"`
}

// ForecastPoint is one forecasted day for one product.
type ForecastPoint struct {
	Date               string  `json:"date"`
	ForecastedQuantity float64 `json:"forecastedQuantity"`
}

// ProductForecast is the 7-day demand forecast for one product.
type ProductForecast struct {
	ProductID         string          `json:"productId"`
	Name              string          `json:"name"`
	AverageDailySales float64         `json:"averageDailySales"`
	TotalForecasted   float64         `json:"totalForecasted"`
	Forecast          []ForecastPoint `json:"forecast"`
}

// Forecast is the forecast panel payload.
type Forecast struct {
	Forecasts []ProductForecast `json:"forecasts"`
}

// Service reads the analytics routes.
type Service struct {
	gw *gateway.Client
}

// New builds a Service over gw.
func New(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

// Panel is a degraded fetch result: always renderable, never an error.
// NotDeployed distinguishes "these routes are not on this backend" from a
// transient failure.
type Panel[T any] struct {
	OK          bool
	NotDeployed bool
	Message     string
	Data        T
}

func panelFrom[T any](res gateway.Result) Panel[T] {
	var p Panel[T]
	if !res.Success {
		p.Message = res.Message
		p.NotDeployed = res.Kind == gateway.KindRouteMissing
		return p
	}
	if len(res.Data) > 0 {
		if err := json.Unmarshal(res.Data, &p.Data); err != nil {
			p.Message = "unexpected response from server"
			return p
		}
	}
	p.OK = true
	return p
}

// RevenueStats fetches the headline revenue figures.
func (s *Service) RevenueStats(ctx context.Context) Panel[RevenueStats] {
	return panelFrom[RevenueStats](s.gw.Read(ctx, "/analytics/revenue", nil))
}

// SalesTrends fetches per-day revenue for the last days days.
func (s *Service) SalesTrends(ctx context.Context, days int) Panel[SalesTrends] {
	q := url.Values{"days": {strconv.Itoa(days)}}
	return panelFrom[SalesTrends](s.gw.Read(ctx, "/analytics/trends", q))
}

// ProductPerformance fetches top sellers and category breakdown.
func (s *Service) ProductPerformance(ctx context.Context) Panel[ProductPerformance] {
	return panelFrom[ProductPerformance](s.gw.Read(ctx, "/analytics/product-performance", nil))
}

// ProfitLoss fetches the revenue-by-product block for the given period
// ("week", "month", "all").
func (s *Service) ProfitLoss(ctx context.Context, period string) Panel[ProfitLoss] {
	q := url.Values{"period": {period}}
	return panelFrom[ProfitLoss](s.gw.Read(ctx, "/analytics/profit-loss", q))
}

// Forecast fetches the 7-day demand forecast.
func (s *Service) Forecast(ctx context.Context) Panel[Forecast] {
	return panelFrom[Forecast](s.gw.Read(ctx, "/analytics/forecast", nil))
}
