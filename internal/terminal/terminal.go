// Package terminal renders the counter-facing text UI: the cart, receipts,
// product tables, dashboard chips.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dukaanlabs/dukaan/pkg/analytics"
	"github.com/dukaanlabs/dukaan/pkg/billing"
	"github.com/dukaanlabs/dukaan/pkg/catalog"
	"github.com/dukaanlabs/dukaan/pkg/currency"
)

// RenderCart prints the active bill as a table with the server total.
func RenderCart(w io.Writer, snap billing.Snapshot) {
	if len(snap.Items) == 0 {
		fmt.Fprintln(w, "  (cart empty - scan an item)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tITEM\tPRICE\tQTY\tSUBTOTAL")
	for i, item := range snap.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			i+1, item.Name, currency.Format(item.Price), item.Quantity, currency.Format(item.Subtotal))
	}
	fmt.Fprintf(tw, "\t\t\tTOTAL\t%s\n", currency.Format(snap.GrandTotal))
	tw.Flush()
}

// RenderReceipt prints a completed receipt the way the thermal printer
// lays it out.
func RenderReceipt(w io.Writer, r *billing.Receipt) {
	line := strings.Repeat("-", 40)

	fmt.Fprintln(w, line)
	if r.Store.ShopName != "" {
		fmt.Fprintf(w, "  %s\n", r.Store.ShopName)
	}
	if r.Store.FullAddress != "" {
		fmt.Fprintf(w, "  %s", r.Store.FullAddress)
		if r.Store.Pincode != "" {
			fmt.Fprintf(w, " - %s", r.Store.Pincode)
		}
		fmt.Fprintln(w)
	}
	if r.Store.ContactNumber != "" {
		fmt.Fprintf(w, "  Ph: %s\n", r.Store.ContactNumber)
	}
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "  Bill: %s\n", r.BillID)
	fmt.Fprintf(w, "  Date: %s\n", r.CompletedAt.Format("02 Jan 2006 15:04"))
	if r.Customer.Name != "" {
		fmt.Fprintf(w, "  Customer: %s", r.Customer.Name)
		if r.Customer.ContactNumber != "" {
			fmt.Fprintf(w, " (%s)", r.Customer.ContactNumber)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, line)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range r.Items {
		fmt.Fprintf(tw, "  %s\t%d x %s\t%s\n",
			item.Name, item.Quantity, currency.Format(item.Price), currency.Format(item.Subtotal))
	}
	tw.Flush()

	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "  TOTAL  %s   (%s)\n", currency.Format(r.GrandTotal), strings.ToUpper(r.PaymentMode))
	fmt.Fprintln(w, line)
}

// RenderProducts prints the catalog table.
func RenderProducts(w io.Writer, products []catalog.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "no products")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tBARCODE\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			p.ID, p.Name, p.Category, p.Barcode, currency.Format(p.Price), p.Stock)
	}
	tw.Flush()
}

// RenderSummary prints the dashboard header chips.
func RenderSummary(w io.Writer, s analytics.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Products\t%d\n", s.TotalProducts)
	fmt.Fprintf(tw, "Total Stock\t%d\n", s.TotalStock)
	fmt.Fprintf(tw, "Today's Sales\t%s\n", currency.Format(s.TodaySales))
	if s.LowStockItems == 0 {
		fmt.Fprintf(tw, "Low Stock\t0 items\n")
	} else {
		fmt.Fprintf(tw, "Low Stock\t%d items\n", s.LowStockItems)
	}
	tw.Flush()
}

// RenderPanelError prints the degraded-panel message the BI views show.
func RenderPanelError(w io.Writer, title, message string, notDeployed bool) {
	if notDeployed {
		fmt.Fprintf(w, "%s: unavailable (backend analytics routes not deployed)\n", title)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", title, message)
}
