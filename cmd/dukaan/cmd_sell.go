package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dukaanlabs/dukaan/internal/terminal"
	"github.com/dukaanlabs/dukaan/pkg/archive"
	"github.com/dukaanlabs/dukaan/pkg/billing"
	"github.com/dukaanlabs/dukaan/pkg/database"
	"github.com/dukaanlabs/dukaan/pkg/event"
	"github.com/dukaanlabs/dukaan/pkg/gateway"
	"github.com/dukaanlabs/dukaan/pkg/identity"
	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/opid"
	"github.com/dukaanlabs/dukaan/pkg/scanner"
)

// dukaan sell
var sellCmd = &cobra.Command{
	Use:   "sell",
	Short: "Run the point-of-sale counter",
	Long: `Run the interactive counter. Scanned (or typed) barcodes add items to the
bill; slash commands edit it:

  /qty N DELTA    change line N by DELTA (to zero removes it)
  /rm N           remove line N
  /clear          empty the cart
  /checkout [pay] [name] [phone]   finalize (pay: cash|card|upi, default cash)
  /new            abandon the view and start a fresh bill
  /last           reprint the last archived receipt
  /quit           leave the counter`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()

		session := billing.NewSession(billing.NewGatewayBackend(newGateway()), identity.Cached{})
		defer session.Close()

		store := openArchive()
		event.Listen(event.BillCompleted, func(payload interface{}) {
			receipt, ok := payload.(*billing.Receipt)
			if !ok || store == nil {
				return
			}
			if err := store.Save(receipt); err != nil {
				logger.Warn("receipt not archived", "bill_id", receipt.BillID, "error", err)
			}
		})

		if err := session.InitializeBill(opid.NewCtx(ctx), false); err != nil {
			return fmt.Errorf("start bill: %s", gateway.Message(err))
		}
		fmt.Fprintf(out, "Bill %s ready. Scan items, /checkout to finish.\n\n", session.Snapshot().BillID)

		// Typed barcodes flow through the same engine a hardware wedge
		// would use; slash commands are intercepted before the pipe.
		pr, pw := io.Pipe()
		engine := scanner.New(&scanner.WedgeProvider{Reader: pr, Name: "console wedge"})
		defer engine.Stop()

		decoded := make(chan string, 1)
		scanErrs := make(chan error, 1)
		startScan := func() {
			err := engine.Start(ctx,
				func(code string, _ scanner.Symbology) { decoded <- code },
				func(err error) { scanErrs <- err })
			if err != nil && !errors.Is(err, scanner.ErrNoDevice) {
				logger.Warn("scan engine not started", "error", err)
			}
		}
		startScan()

		lines := make(chan string)
		go func() {
			defer close(lines)
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				lines <- sc.Text()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return nil

			case err := <-scanErrs:
				logger.Warn("scan failed", "error", err)
				startScan()

			case code := <-decoded:
				if err := session.ScanBarcode(opid.NewCtx(ctx), code); err != nil {
					fmt.Fprintf(out, "  ! %s\n", gateway.Message(err))
				}
				terminal.RenderCart(out, session.Snapshot())
				startScan()

			case line, ok := <-lines:
				if !ok {
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if !strings.HasPrefix(line, "/") {
					fmt.Fprintln(pw, line)
					continue
				}
				if quit := runSellCommand(ctx, out, line, session, store); quit {
					return nil
				}
			}
		}
	},
}

// runSellCommand handles one slash command. Returns true to leave the loop.
func runSellCommand(ctx context.Context, out io.Writer, line string, session *billing.Session, store *archive.Store) bool {
	fields := strings.Fields(line)
	opctx := opid.NewCtx(ctx)

	switch fields[0] {
	case "/quit", "/q":
		return true

	case "/bill":
		terminal.RenderCart(out, session.Snapshot())

	case "/new":
		if err := session.InitializeBill(opctx, true); err != nil {
			fmt.Fprintf(out, "  ! %s\n", gateway.Message(err))
			break
		}
		fmt.Fprintf(out, "Bill %s ready.\n", session.Snapshot().BillID)

	case "/qty":
		if len(fields) != 3 {
			fmt.Fprintln(out, "usage: /qty N DELTA")
			break
		}
		itemID, ok := lineItemID(out, session, fields[1])
		if !ok {
			break
		}
		delta, err := strconv.Atoi(fields[2])
		if err != nil {
			fmt.Fprintln(out, "usage: /qty N DELTA")
			break
		}
		if err := session.ChangeQuantity(opctx, itemID, delta); err != nil {
			fmt.Fprintf(out, "  ! %s\n", gateway.Message(err))
		}
		terminal.RenderCart(out, session.Snapshot())

	case "/rm":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: /rm N")
			break
		}
		itemID, ok := lineItemID(out, session, fields[1])
		if !ok {
			break
		}
		if err := session.RemoveItem(opctx, itemID); err != nil {
			fmt.Fprintf(out, "  ! %s\n", gateway.Message(err))
		}
		terminal.RenderCart(out, session.Snapshot())

	case "/clear":
		if err := session.ClearCart(opctx); err != nil {
			fmt.Fprintf(out, "  ! %s\n", gateway.Message(err))
		}
		terminal.RenderCart(out, session.Snapshot())

	case "/checkout":
		pay := "cash"
		var customer billing.Customer
		if len(fields) > 1 {
			pay = fields[1]
		}
		if len(fields) > 2 {
			customer.Name = fields[2]
		}
		if len(fields) > 3 {
			customer.ContactNumber = fields[3]
		}
		receipt, err := session.Checkout(opctx, customer, pay)
		if err != nil {
			fmt.Fprintf(out, "  ! %s\n", gateway.Message(err))
			break
		}
		terminal.RenderReceipt(out, receipt)
		fmt.Fprintln(out, "Next bill opens shortly.")

	case "/last":
		if store == nil {
			fmt.Fprintln(out, "archive unavailable")
			break
		}
		receipt, err := store.Last()
		if err != nil {
			fmt.Fprintf(out, "  ! %v\n", err)
			break
		}
		terminal.RenderReceipt(out, receipt)

	default:
		fmt.Fprintf(out, "unknown command %s\n", fields[0])
	}
	return false
}

// lineItemID maps a 1-based line number to the item id on the current view.
func lineItemID(out io.Writer, session *billing.Session, arg string) (string, bool) {
	n, err := strconv.Atoi(arg)
	snap := session.Snapshot()
	if err != nil || n < 1 || n > len(snap.Items) {
		fmt.Fprintf(out, "no line %s on the bill\n", arg)
		return "", false
	}
	return snap.Items[n-1].ID, true
}

// openArchive connects the local receipt store; failures degrade to no
// archive rather than blocking sales.
func openArchive() *archive.Store {
	if err := database.Connect(); err != nil {
		logger.Warn("receipt archive disabled", "error", err)
		return nil
	}
	store, err := archive.New(database.DB)
	if err != nil {
		logger.Warn("receipt archive disabled", "error", err)
		return nil
	}
	return store
}
