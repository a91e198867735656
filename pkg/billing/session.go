// Package billing owns the live sale: one open bill, driven by scans and
// quantity edits, finalized by checkout.
//
// The session never trusts its own arithmetic. Every mutation is
// write-then-reload: the server applies the change, the session re-fetches
// the bill, and only that confirmed snapshot replaces the local view. Totals
// shown to the operator are therefore always server totals.
//
// All operations serialize on the session mutex. A second mutation arriving
// while one is in flight gets ErrBusy instead of queueing, because the
// operator should see the first result before acting again.
package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dukaanlabs/dukaan/config"
	"github.com/dukaanlabs/dukaan/pkg/event"
	"github.com/dukaanlabs/dukaan/pkg/gateway"
	"github.com/dukaanlabs/dukaan/pkg/identity"
	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/metrics"
)

// State is the session lifecycle position.
type State int

const (
	Uninitialized State = iota
	Initializing
	Active
	Completing
	Completed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Active:
		return "active"
	case Completing:
		return "completing"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptyBarcode rejects a scan whose code is empty after trimming.
	ErrEmptyBarcode = errors.New("billing: empty barcode")

	// ErrNoBill rejects mutations while no bill is active.
	ErrNoBill = errors.New("billing: no active bill")

	// ErrNotFound marks a barcode or item the server does not know.
	ErrNotFound = errors.New("billing: not found")

	// ErrOutOfStock rejects a scan for a product with zero stock. Nothing
	// was added to the bill.
	ErrOutOfStock = errors.New("billing: product out of stock")

	// ErrEmptyBill rejects checkout of a bill with no items.
	ErrEmptyBill = errors.New("billing: bill has no items")

	// ErrBusy means another operation holds the session.
	ErrBusy = errors.New("billing: operation already in flight")
)

// Snapshot is a copy of the session view, safe to hand to renderers.
type Snapshot struct {
	State      State
	BillID     string
	Items      []BillItem
	GrandTotal float64
}

// ItemCount sums the quantities across all lines.
func (s Snapshot) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// Session is the billing state machine.
type Session struct {
	backend Backend
	ident   identity.Source
	delay   time.Duration

	mu         sync.Mutex
	state      State
	billID     string
	items      []BillItem
	grandTotal float64
	timer      *time.Timer
}

// SessionOption tweaks a Session.
type SessionOption func(*Session)

// WithCheckoutDelay overrides the pause between checkout and the automatic
// next bill.
func WithCheckoutDelay(d time.Duration) SessionOption {
	return func(s *Session) { s.delay = d }
}

// NewSession builds a session over backend. The identity source feeds the
// receipt's store header.
func NewSession(backend Backend, ident identity.Source, opts ...SessionOption) *Session {
	s := &Session{
		backend: backend,
		ident:   ident,
		delay:   config.CheckoutNewBillDelay(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	items := make([]BillItem, len(s.items))
	copy(items, s.items)
	return Snapshot{State: s.state, BillID: s.billID, Items: items, GrandTotal: s.grandTotal}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InitializeBill attaches the session to a bill. With forceNew false and a
// bill already known it reattaches to that bill; otherwise it creates a
// fresh one. Calling it again on an active session is a cheap resync, not a
// duplicate bill.
func (s *Session) InitializeBill(ctx context.Context, forceNew bool) error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()
	return s.initializeLocked(ctx, forceNew)
}

func (s *Session) initializeLocked(ctx context.Context, forceNew bool) error {
	prev := s.state
	s.state = Initializing

	if s.billID != "" && !forceNew {
		bill, err := s.backend.GetBill(ctx, s.billID)
		switch {
		case err == nil:
			s.adoptLocked(bill)
			return nil
		case gateway.IsNotFound(err):
			// The bill evaporated server-side; fall through and start over.
			logger.WithBill(ctx, s.billID).Warn("bill gone, creating a new one")
		default:
			s.state = prev
			return err
		}
	}

	bill, err := s.backend.CreateBill(ctx)
	if err != nil {
		s.state = prev
		return err
	}
	logger.WithBill(ctx, bill.ID).Info("bill created")
	event.Fire(event.BillCreated, bill.ID)
	s.adoptLocked(bill)
	return nil
}

// adoptLocked replaces the view with a confirmed server snapshot and goes
// Active.
func (s *Session) adoptLocked(bill *Bill) {
	s.billID = bill.ID
	s.items = bill.Items
	s.grandTotal = bill.GrandTotal
	s.state = Active
	event.Fire(event.BillUpdated, s.snapshotLocked())
}

// reloadLocked re-fetches the bill and adopts it. The old view stays in
// place when the reload fails.
func (s *Session) reloadLocked(ctx context.Context) error {
	bill, err := s.backend.GetBill(ctx, s.billID)
	if err != nil {
		return err
	}
	s.adoptLocked(bill)
	return nil
}

// ScanBarcode resolves code to a product, adds one unit to the bill, and
// reloads. Unknown barcodes and zero-stock products reject without touching
// the bill.
func (s *Session) ScanBarcode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyBarcode
	}
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()

	if s.state != Active || s.billID == "" {
		return ErrNoBill
	}

	product, err := s.backend.ProductByBarcode(ctx, code)
	if err != nil {
		if gateway.IsNotFound(err) {
			metrics.BillMutations.WithLabelValues("add", "not_found").Inc()
			return fmt.Errorf("%w: barcode %s: %w", ErrNotFound, code, err)
		}
		metrics.BillMutations.WithLabelValues("add", "error").Inc()
		return err
	}
	if product.Stock <= 0 {
		metrics.BillMutations.WithLabelValues("add", "out_of_stock").Inc()
		return fmt.Errorf("%w: %s", ErrOutOfStock, product.Name)
	}

	if err := s.backend.AddItem(ctx, s.billID, product.ID, 1); err != nil {
		metrics.BillMutations.WithLabelValues("add", "error").Inc()
		return err
	}
	metrics.BillMutations.WithLabelValues("add", "ok").Inc()
	logger.WithBill(ctx, s.billID).Info("item added", "barcode", code, "product", product.Name)
	return s.reloadLocked(ctx)
}

// ChangeQuantity adjusts an item's quantity by delta. A result of zero or
// less removes the line entirely.
func (s *Session) ChangeQuantity(ctx context.Context, itemID string, delta int) error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()

	if s.state != Active || s.billID == "" {
		return ErrNoBill
	}

	item, ok := s.findLocked(itemID)
	if !ok {
		return fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}

	newQuantity := item.Quantity + delta
	if newQuantity <= 0 {
		return s.removeLocked(ctx, itemID)
	}

	if err := s.backend.UpdateItemQuantity(ctx, s.billID, itemID, newQuantity); err != nil {
		metrics.BillMutations.WithLabelValues("quantity", "error").Inc()
		return err
	}
	metrics.BillMutations.WithLabelValues("quantity", "ok").Inc()
	return s.reloadLocked(ctx)
}

// RemoveItem deletes one line from the bill. An item the server no longer
// has counts as removed; the session just resyncs.
func (s *Session) RemoveItem(ctx context.Context, itemID string) error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()

	if s.state != Active || s.billID == "" {
		return ErrNoBill
	}
	return s.removeLocked(ctx, itemID)
}

func (s *Session) removeLocked(ctx context.Context, itemID string) error {
	err := s.backend.RemoveItem(ctx, s.billID, itemID)
	switch {
	case err == nil:
		metrics.BillMutations.WithLabelValues("remove", "ok").Inc()
	case gateway.IsNotFound(err):
		// Already gone; the reload below brings us back in line.
		metrics.BillMutations.WithLabelValues("remove", "already_gone").Inc()
	default:
		metrics.BillMutations.WithLabelValues("remove", "error").Inc()
		// Resync so the stale line does not linger on screen.
		if rerr := s.reloadLocked(ctx); rerr != nil {
			logger.WithBill(ctx, s.billID).Warn("resync after failed removal failed", "error", rerr)
		}
		return err
	}
	return s.reloadLocked(ctx)
}

// ClearCart removes every line, one at a time, stopping at the first
// failure. Either way the view is resynced to server truth afterwards.
func (s *Session) ClearCart(ctx context.Context) error {
	if !s.mu.TryLock() {
		return ErrBusy
	}
	defer s.mu.Unlock()

	if s.state != Active || s.billID == "" {
		return ErrNoBill
	}

	pending := make([]BillItem, len(s.items))
	copy(pending, s.items)

	for _, item := range pending {
		if err := s.backend.RemoveItem(ctx, s.billID, item.ID); err != nil && !gateway.IsNotFound(err) {
			metrics.BillMutations.WithLabelValues("clear", "error").Inc()
			if rerr := s.reloadLocked(ctx); rerr != nil {
				logger.WithBill(ctx, s.billID).Warn("resync after aborted clear failed", "error", rerr)
			}
			return fmt.Errorf("billing: clear cart at %s: %w", item.Name, err)
		}
	}
	metrics.BillMutations.WithLabelValues("clear", "ok").Inc()
	return s.reloadLocked(ctx)
}

// Checkout finalizes the bill. It returns the frozen receipt, clears the
// view, and schedules a fresh bill after the configured delay so the counter
// is ready for the next customer.
func (s *Session) Checkout(ctx context.Context, customer Customer, paymentMode string) (*Receipt, error) {
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()

	if s.state != Active || s.billID == "" {
		return nil, ErrNoBill
	}
	if len(s.items) == 0 {
		return nil, ErrEmptyBill
	}

	s.state = Completing
	completed, err := s.backend.Checkout(ctx, s.billID, CheckoutRequest{
		Customer:    customer,
		PaymentMode: paymentMode,
	})
	if err != nil {
		s.state = Active
		metrics.CheckoutsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	items := completed.Items
	if len(items) == 0 {
		// Some backends return the bill stripped of items once completed;
		// the receipt keeps what was sold either way.
		items = make([]BillItem, len(s.items))
		copy(items, s.items)
	}
	receipt := &Receipt{
		BillID:      s.billID,
		Store:       storeInfoFrom(s.ident),
		Customer:    customer,
		Items:       items,
		GrandTotal:  completed.GrandTotal,
		PaymentMode: paymentMode,
		CompletedAt: time.Now(),
	}

	s.state = Completed
	s.billID = ""
	s.items = nil
	s.grandTotal = 0
	metrics.CheckoutsTotal.WithLabelValues("completed").Inc()
	logger.WithCtx(ctx).Info("bill completed",
		"bill_id", receipt.BillID, "grand_total", receipt.GrandTotal, "items", len(receipt.Items))
	event.Fire(event.BillCompleted, receipt)
	event.Fire(event.BillUpdated, s.snapshotLocked())

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.startNextBill)

	return receipt, nil
}

// startNextBill is the post-checkout hop back to a fresh bill. It blocks on
// the mutex rather than returning ErrBusy; the operator never sees it.
func (s *Session) startNextBill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Completed {
		return
	}
	if err := s.initializeLocked(context.Background(), true); err != nil {
		s.state = Completed
		logger.Error("auto bill creation failed", "error", err)
	}
}

// Close stops the pending next-bill timer, if any.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) findLocked(itemID string) (BillItem, bool) {
	for _, it := range s.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return BillItem{}, false
}
