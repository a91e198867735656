package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukaanlabs/dukaan/config"
	"github.com/dukaanlabs/dukaan/internal/diag"
	"github.com/dukaanlabs/dukaan/pkg/cache"
	"github.com/dukaanlabs/dukaan/pkg/gateway"
	"github.com/dukaanlabs/dukaan/pkg/identity"
	"github.com/dukaanlabs/dukaan/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dukaan",
	Short: "dukaan point-of-sale terminal",
	Long:  "dukaan is a shop-counter POS terminal: scan, bill, checkout, and keep an eye on stock.",
}

func init() {
	rootCmd.AddCommand(sellCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(stockCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(identityCmd)
}

// boot wires the shared infrastructure every command needs: the identity
// cache, optional Mongo log shipping, and the diagnostics listener. The
// returned func flushes on shutdown.
func boot() func() {
	if err := cache.Connect(); err != nil {
		logger.Warn("identity cache unavailable", "error", err)
	}

	var mongoHandler *logger.MongoHandler
	if uri := config.MongoLogURI(); uri != "" {
		h, err := logger.NewMongoHandler(uri, config.MongoLogDB(), config.MongoLogCollection())
		if err != nil {
			logger.Warn("log shipping disabled", "error", err)
		} else {
			mongoHandler = h
			logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), h))
		}
	}

	if addr := config.DiagAddr(); addr != "" {
		diag.New(addr).Start()
	}

	return func() {
		if mongoHandler != nil {
			mongoHandler.Close()
		}
	}
}

// newGateway builds the backend client with the cached operator identity.
func newGateway() *gateway.Client {
	return gateway.New(config.APIBaseURL(), identity.Cached{})
}
