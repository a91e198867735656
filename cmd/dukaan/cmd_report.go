package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukaanlabs/dukaan/internal/terminal"
	"github.com/dukaanlabs/dukaan/pkg/analytics"
	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/report"
)

var (
	reportOut  string
	reportDays int
)

// dukaan report
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export sales data to an .xlsx workbook",
	Long:  "Export sales trends, product performance, and locally archived receipts to a workbook. Panels whose routes are missing are skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()
		ctx, cancel := commandCtx()
		defer cancel()

		out := cmd.OutOrStdout()
		svc := analytics.New(newGateway())
		wb := report.NewWorkbook()

		trends := svc.SalesTrends(ctx, reportDays)
		if trends.OK {
			if err := wb.AddSalesTrends(trends.Data); err != nil {
				return err
			}
		} else {
			terminal.RenderPanelError(out, "Trends", trends.Message, trends.NotDeployed)
		}

		perf := svc.ProductPerformance(ctx)
		if perf.OK {
			if err := wb.AddProductPerformance(perf.Data); err != nil {
				return err
			}
		} else {
			terminal.RenderPanelError(out, "Top products", perf.Message, perf.NotDeployed)
		}

		if store := openArchive(); store != nil {
			to := time.Now()
			from := to.AddDate(0, 0, -reportDays)
			receipts, err := store.Between(from, to)
			switch {
			case err != nil:
				logger.Warn("receipts sheet skipped", "error", err)
			case len(receipts) > 0:
				if err := wb.AddReceipts(receipts); err != nil {
					return err
				}
			}
		}

		if err := wb.Save(reportOut); err != nil {
			return err
		}
		fmt.Fprintln(out, "wrote", reportOut)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "sales-report.xlsx", "output file")
	reportCmd.Flags().IntVar(&reportDays, "days", 30, "how many days back to cover")
}
