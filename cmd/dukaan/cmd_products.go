package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dukaanlabs/dukaan/internal/terminal"
	"github.com/dukaanlabs/dukaan/pkg/catalog"
	"github.com/dukaanlabs/dukaan/pkg/gateway"
	"github.com/dukaanlabs/dukaan/pkg/opid"
)

var (
	productSearch   string
	productCategory string
	productBarcode  string
	productPrice    string
	productStock    int
)

// dukaan products
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()
		ctx, cancel := commandCtx()
		defer cancel()

		products, err := catalog.New(newGateway()).List(ctx, productSearch, productCategory)
		if err != nil {
			return fmt.Errorf("list products: %s", gateway.Message(err))
		}
		terminal.RenderProducts(cmd.OutOrStdout(), products)
		if cats := catalog.Categories(products); len(cats) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\ncategories: %v\n", cats)
		}
		return nil
	},
}

var productsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()
		ctx, cancel := commandCtx()
		defer cancel()

		price, err := strconv.ParseFloat(productPrice, 64)
		if err != nil {
			return fmt.Errorf("invalid --price %q", productPrice)
		}
		in := catalog.Input{
			Name:     args[0],
			Barcode:  productBarcode,
			Category: productCategory,
			Price:    price,
			Stock:    productStock,
		}
		p, err := catalog.New(newGateway()).Create(ctx, in)
		if err != nil {
			return fmt.Errorf("add product: %s", gateway.Message(err))
		}
		terminal.RenderProducts(cmd.OutOrStdout(), []catalog.Product{*p})
		return nil
	},
}

var productsUpdateCmd = &cobra.Command{
	Use:   "update ID NAME",
	Short: "Replace a product's details",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()
		ctx, cancel := commandCtx()
		defer cancel()

		price, err := strconv.ParseFloat(productPrice, 64)
		if err != nil {
			return fmt.Errorf("invalid --price %q", productPrice)
		}
		in := catalog.Input{
			Name:     args[1],
			Barcode:  productBarcode,
			Category: productCategory,
			Price:    price,
			Stock:    productStock,
		}
		p, err := catalog.New(newGateway()).Update(ctx, args[0], in)
		if err != nil {
			return fmt.Errorf("update product: %s", gateway.Message(err))
		}
		terminal.RenderProducts(cmd.OutOrStdout(), []catalog.Product{*p})
		return nil
	},
}

var productsRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()
		ctx, cancel := commandCtx()
		defer cancel()

		if err := catalog.New(newGateway()).Delete(ctx, args[0]); err != nil {
			return fmt.Errorf("remove product: %s", gateway.Message(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "removed", args[0])
		return nil
	},
}

func init() {
	productsListCmd.Flags().StringVar(&productSearch, "search", "", "filter by name or barcode")
	productsListCmd.Flags().StringVar(&productCategory, "category", "", "filter by category")

	for _, c := range []*cobra.Command{productsAddCmd, productsUpdateCmd} {
		c.Flags().StringVar(&productBarcode, "barcode", "", "product barcode")
		c.Flags().StringVar(&productCategory, "category", "", "product category")
		c.Flags().StringVar(&productPrice, "price", "0", "unit price")
		c.Flags().IntVar(&productStock, "stock", 0, "initial stock level")
	}

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsAddCmd)
	productsCmd.AddCommand(productsUpdateCmd)
	productsCmd.AddCommand(productsRemoveCmd)
}

// commandCtx is the context for one-shot commands: op id attached,
// cancelled on Ctrl-C.
func commandCtx() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return opid.NewCtx(ctx), stop
}
