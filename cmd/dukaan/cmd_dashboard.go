package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dukaanlabs/dukaan/config"
	"github.com/dukaanlabs/dukaan/internal/terminal"
	"github.com/dukaanlabs/dukaan/pkg/analytics"
	"github.com/dukaanlabs/dukaan/pkg/catalog"
	"github.com/dukaanlabs/dukaan/pkg/currency"
	"github.com/dukaanlabs/dukaan/pkg/gateway"
	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/opid"
	"github.com/dukaanlabs/dukaan/pkg/schedule"
	"github.com/dukaanlabs/dukaan/pkg/workerpool"
)

var watchEvery int

// dukaan dashboard
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the shop dashboard",
	Long:  "Show stock, revenue, and analytics panels. Panels whose backend routes are missing render a notice instead of failing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gw := newGateway()
		out := cmd.OutOrStdout()

		if watchEvery <= 0 {
			renderDashboard(opid.NewCtx(ctx), out, gw)
			return nil
		}

		renderDashboard(opid.NewCtx(ctx), out, gw)
		schedule.Every(watchEvery).Seconds().Name("dashboard-refresh").WithoutOverlapping().Run(func() {
			fmt.Fprintln(out)
			renderDashboard(opid.NewCtx(ctx), out, gw)
		})
		schedule.Start(ctx)
		<-ctx.Done()
		return nil
	},
}

func init() {
	dashboardCmd.Flags().IntVar(&watchEvery, "watch", 0, "refresh every N seconds (0 renders once)")
}

// renderDashboard fetches every panel concurrently and prints whatever came
// back. Individual panel failures degrade to notices.
func renderDashboard(ctx context.Context, out io.Writer, gw *gateway.Client) {
	svc := analytics.New(gw)

	var (
		products    []catalog.Product
		productsErr error
		revenue     analytics.Panel[analytics.RevenueStats]
		trends      analytics.Panel[analytics.SalesTrends]
		performance analytics.Panel[analytics.ProductPerformance]
		forecast    analytics.Panel[analytics.Forecast]
	)

	pool := workerpool.New(5)
	defer pool.Shutdown()
	err := pool.Parallel(
		func() { products, productsErr = catalog.New(gw).List(ctx, "", "") },
		func() { revenue = svc.RevenueStats(ctx) },
		func() { trends = svc.SalesTrends(ctx, 7) },
		func() { performance = svc.ProductPerformance(ctx) },
		func() { forecast = svc.Forecast(ctx) },
	)
	if err != nil {
		logger.Warn("dashboard fetch incomplete", "error", err)
	}

	if productsErr != nil {
		fmt.Fprintf(out, "products: %s\n", gateway.Message(productsErr))
	}
	summary := analytics.ComputeSummary(products, revenue.Data.DailyRevenue, config.LowStockThreshold())
	terminal.RenderSummary(out, summary)
	fmt.Fprintln(out)

	if low := analytics.LowStock(products, config.LowStockThreshold()); len(low) > 0 {
		fmt.Fprintln(out, "LOW STOCK")
		terminal.RenderProducts(out, low)
		fmt.Fprintln(out)
	}

	if !revenue.OK {
		terminal.RenderPanelError(out, "Revenue", revenue.Message, revenue.NotDeployed)
	} else {
		fmt.Fprintf(out, "Revenue  today %s   week %s   month %s   all-time %s\n",
			currency.Format(revenue.Data.DailyRevenue),
			currency.Format(revenue.Data.WeeklyRevenue),
			currency.Format(revenue.Data.MonthlyRevenue),
			currency.Format(revenue.Data.TotalRevenue))
	}

	if !trends.OK {
		terminal.RenderPanelError(out, "Trends", trends.Message, trends.NotDeployed)
	} else {
		for _, p := range trends.Data.Daily {
			fmt.Fprintf(out, "  %s  %s (%d sales)\n", p.Date, currency.Format(p.Revenue), p.Transactions)
		}
	}

	if !performance.OK {
		terminal.RenderPanelError(out, "Top products", performance.Message, performance.NotDeployed)
	} else {
		for _, p := range performance.Data.TopProducts {
			fmt.Fprintf(out, "  %s  %d sold  %s\n", p.Name, p.Quantity, currency.Format(p.Revenue))
		}
	}

	if !forecast.OK {
		terminal.RenderPanelError(out, "Forecast", forecast.Message, forecast.NotDeployed)
	} else {
		for _, f := range forecast.Data.Forecasts {
			fmt.Fprintf(out, "  %s  ~%.1f/day, %.0f over 7 days\n", f.Name, f.AverageDailySales, f.TotalForecasted)
		}
	}
}
