package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dukaanlabs/dukaan/internal/terminal"
	"github.com/dukaanlabs/dukaan/pkg/catalog"
	"github.com/dukaanlabs/dukaan/pkg/gateway"
)

// dukaan stock ID DELTA
var stockCmd = &cobra.Command{
	Use:   "stock ID DELTA",
	Short: "Adjust a product's stock level",
	Long:  "Apply a delta to a product's stock. Positive restocks, negative writes off. The server floors stock at zero.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()
		ctx, cancel := commandCtx()
		defer cancel()

		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid delta %q", args[1])
		}
		p, err := catalog.New(newGateway()).AdjustStock(ctx, args[0], delta)
		if err != nil {
			return fmt.Errorf("adjust stock: %s", gateway.Message(err))
		}
		terminal.RenderProducts(cmd.OutOrStdout(), []catalog.Product{*p})
		return nil
	},
}
