package billing_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaanlabs/dukaan/pkg/billing"
	"github.com/dukaanlabs/dukaan/pkg/gateway"
	"github.com/dukaanlabs/dukaan/pkg/identity"
)

// fakeBackend plays the server: it owns bill truth, computes subtotals and
// grand totals itself, and can be told to fail specific calls.
type fakeBackend struct {
	mu       sync.Mutex
	seq      int
	bills    map[string]*billing.Bill
	products map[string]billing.Product // by barcode

	createCalls int
	getCalls    int
	addCalls    int
	updateCalls int
	removeCalls int

	removeErr   map[string]error // itemID → forced error
	checkoutErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		bills:     map[string]*billing.Bill{},
		products:  map[string]billing.Product{},
		removeErr: map[string]error{},
	}
}

func (f *fakeBackend) stock(barcode, name string, price float64, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.products[barcode] = billing.Product{
		ID: fmt.Sprintf("prod-%d", f.seq), Name: name, Barcode: barcode, Price: price, Stock: stock,
	}
}

func notFound(msg string) error {
	return &gateway.Error{Kind: gateway.KindNotFound, StatusCode: 404, Message: msg}
}

func (f *fakeBackend) CreateBill(ctx context.Context) (*billing.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.seq++
	bill := &billing.Bill{ID: fmt.Sprintf("bill-%d", f.seq), Status: "active"}
	f.bills[bill.ID] = bill
	return copyBill(bill), nil
}

func (f *fakeBackend) GetBill(ctx context.Context, billID string) (*billing.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	bill, ok := f.bills[billID]
	if !ok {
		return nil, notFound("Bill not found")
	}
	return copyBill(bill), nil
}

func (f *fakeBackend) ProductByBarcode(ctx context.Context, barcode string) (*billing.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[barcode]
	if !ok {
		return nil, notFound("Product not found")
	}
	return &p, nil
}

func (f *fakeBackend) AddItem(ctx context.Context, billID, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	bill, ok := f.bills[billID]
	if !ok {
		return notFound("Bill not found")
	}
	for _, p := range f.products {
		if p.ID != productID {
			continue
		}
		f.seq++
		bill.Items = append(bill.Items, billing.BillItem{
			ID:        fmt.Sprintf("item-%d", f.seq),
			ProductID: productID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  quantity,
			Subtotal:  p.Price * float64(quantity),
		})
		f.recalc(bill)
		return nil
	}
	return notFound("Product not found")
}

func (f *fakeBackend) UpdateItemQuantity(ctx context.Context, billID, itemID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	bill, ok := f.bills[billID]
	if !ok {
		return notFound("Bill not found")
	}
	for i := range bill.Items {
		if bill.Items[i].ID == itemID {
			bill.Items[i].Quantity = quantity
			bill.Items[i].Subtotal = bill.Items[i].Price * float64(quantity)
			f.recalc(bill)
			return nil
		}
	}
	return notFound("Item not found")
}

func (f *fakeBackend) RemoveItem(ctx context.Context, billID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	if err, ok := f.removeErr[itemID]; ok {
		return err
	}
	bill, ok := f.bills[billID]
	if !ok {
		return notFound("Bill not found")
	}
	for i := range bill.Items {
		if bill.Items[i].ID == itemID {
			bill.Items = append(bill.Items[:i], bill.Items[i+1:]...)
			f.recalc(bill)
			return nil
		}
	}
	return notFound("Item not found")
}

func (f *fakeBackend) Checkout(ctx context.Context, billID string, req billing.CheckoutRequest) (*billing.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	bill, ok := f.bills[billID]
	if !ok {
		return nil, notFound("Bill not found")
	}
	bill.Status = "completed"
	return copyBill(bill), nil
}

func (f *fakeBackend) recalc(bill *billing.Bill) {
	total := 0.0
	for _, it := range bill.Items {
		total += it.Subtotal
	}
	bill.GrandTotal = total
}

func copyBill(b *billing.Bill) *billing.Bill {
	out := *b
	out.Items = make([]billing.BillItem, len(b.Items))
	copy(out.Items, b.Items)
	return &out
}

func newSession(f *fakeBackend, opts ...billing.SessionOption) *billing.Session {
	return billing.NewSession(f, identity.None, opts...)
}

func TestInitializeBill_IdempotentReattach(t *testing.T) {
	f := newFakeBackend()
	s := newSession(f)
	ctx := context.Background()

	require.NoError(t, s.InitializeBill(ctx, false))
	first := s.Snapshot().BillID
	require.NotEmpty(t, first)

	require.NoError(t, s.InitializeBill(ctx, false))
	assert.Equal(t, first, s.Snapshot().BillID, "reattach must not mint a new bill")
	assert.Equal(t, 1, f.createCalls)
}

func TestInitializeBill_ForceNew(t *testing.T) {
	f := newFakeBackend()
	s := newSession(f)
	ctx := context.Background()

	require.NoError(t, s.InitializeBill(ctx, false))
	first := s.Snapshot().BillID

	require.NoError(t, s.InitializeBill(ctx, true))
	assert.NotEqual(t, first, s.Snapshot().BillID)
	assert.Equal(t, 2, f.createCalls)
}

func TestInitializeBill_RecreatesWhenBillEvaporated(t *testing.T) {
	f := newFakeBackend()
	s := newSession(f)
	ctx := context.Background()

	require.NoError(t, s.InitializeBill(ctx, false))
	first := s.Snapshot().BillID
	delete(f.bills, first) // server lost it

	require.NoError(t, s.InitializeBill(ctx, false))
	assert.NotEqual(t, first, s.Snapshot().BillID)
}

func TestScanBarcode_AddsAndReloadsServerTruth(t *testing.T) {
	f := newFakeBackend()
	f.stock("8901030865275", "Parle-G", 10.50, 5)
	s := newSession(f)
	ctx := context.Background()
	require.NoError(t, s.InitializeBill(ctx, false))

	require.NoError(t, s.ScanBarcode(ctx, "  8901030865275  "))
	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Parle-G", snap.Items[0].Name)
	assert.Equal(t, 1, snap.Items[0].Quantity)
	assert.Equal(t, 10.50, snap.GrandTotal, "total must come from the server snapshot")
	assert.Equal(t, 1, f.addCalls)
}

func TestScanBarcode_Rejections(t *testing.T) {
	f := newFakeBackend()
	f.stock("73513537", "Soap", 25, 0) // out of stock
	s := newSession(f)
	ctx := context.Background()

	assert.ErrorIs(t, s.ScanBarcode(ctx, "   "), billing.ErrEmptyBarcode)
	assert.ErrorIs(t, s.ScanBarcode(ctx, "73513537"), billing.ErrNoBill)

	require.NoError(t, s.InitializeBill(ctx, false))

	err := s.ScanBarcode(ctx, "0000000000000")
	assert.ErrorIs(t, err, billing.ErrNotFound)
	assert.ErrorIs(t, s.ScanBarcode(ctx, "73513537"), billing.ErrOutOfStock)

	assert.Empty(t, s.Snapshot().Items, "rejected scans must not touch the bill")
	assert.Equal(t, 0, f.addCalls)
}

func TestChangeQuantity_ZeroCollapsesToRemoval(t *testing.T) {
	f := newFakeBackend()
	f.stock("8901030865275", "Parle-G", 10, 5)
	s := newSession(f)
	ctx := context.Background()
	require.NoError(t, s.InitializeBill(ctx, false))
	require.NoError(t, s.ScanBarcode(ctx, "8901030865275"))

	itemID := s.Snapshot().Items[0].ID

	require.NoError(t, s.ChangeQuantity(ctx, itemID, 2))
	snap := s.Snapshot()
	assert.Equal(t, 3, snap.Items[0].Quantity)
	assert.Equal(t, 30.0, snap.GrandTotal)

	require.NoError(t, s.ChangeQuantity(ctx, itemID, -3))
	assert.Empty(t, s.Snapshot().Items, "quantity at zero must remove the line")
	assert.Equal(t, 1, f.updateCalls, "the collapse must go through removal, not a zero update")
}

func TestRemoveItem_FailSoftWhenAlreadyGone(t *testing.T) {
	f := newFakeBackend()
	f.stock("8901030865275", "Parle-G", 10, 5)
	s := newSession(f)
	ctx := context.Background()
	require.NoError(t, s.InitializeBill(ctx, false))
	require.NoError(t, s.ScanBarcode(ctx, "8901030865275"))

	itemID := s.Snapshot().Items[0].ID
	f.removeErr[itemID] = notFound("Item not found")
	f.bills[s.Snapshot().BillID].Items = nil // server already dropped it

	require.NoError(t, s.RemoveItem(ctx, itemID))
	assert.Empty(t, s.Snapshot().Items)
}

func TestRemoveItem_FailureResyncs(t *testing.T) {
	f := newFakeBackend()
	f.stock("8901030865275", "Parle-G", 10, 5)
	s := newSession(f)
	ctx := context.Background()
	require.NoError(t, s.InitializeBill(ctx, false))
	require.NoError(t, s.ScanBarcode(ctx, "8901030865275"))

	itemID := s.Snapshot().Items[0].ID
	f.removeErr[itemID] = &gateway.Error{Kind: gateway.KindRejected, StatusCode: 400, Message: "nope"}

	err := s.RemoveItem(ctx, itemID)
	require.Error(t, err)
	// Server still has the line, and so must the view after resync.
	assert.Len(t, s.Snapshot().Items, 1)
}

func TestClearCart_AbortsOnFirstFailureAndResyncs(t *testing.T) {
	f := newFakeBackend()
	f.stock("8901030865275", "Parle-G", 10, 5)
	f.stock("73513537", "Soap", 25, 5)
	f.stock("036000291452", "Pen", 5, 5)
	s := newSession(f)
	ctx := context.Background()
	require.NoError(t, s.InitializeBill(ctx, false))
	require.NoError(t, s.ScanBarcode(ctx, "8901030865275"))
	require.NoError(t, s.ScanBarcode(ctx, "73513537"))
	require.NoError(t, s.ScanBarcode(ctx, "036000291452"))

	secondID := s.Snapshot().Items[1].ID
	f.removeErr[secondID] = &gateway.Error{Kind: gateway.KindRejected, StatusCode: 500, Message: "boom"}

	err := s.ClearCart(ctx)
	require.Error(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 2, "first line removed, then abort; third must survive")
	assert.Equal(t, secondID, snap.Items[0].ID)
}

func TestCheckout_EmptyBill(t *testing.T) {
	f := newFakeBackend()
	s := newSession(f)
	ctx := context.Background()
	require.NoError(t, s.InitializeBill(ctx, false))

	_, err := s.Checkout(ctx, billing.Customer{}, "cash")
	assert.ErrorIs(t, err, billing.ErrEmptyBill)
	assert.Equal(t, billing.Active, s.State())
}

func TestCheckout_CapturesReceiptAndStartsNextBill(t *testing.T) {
	f := newFakeBackend()
	f.stock("8901030865275", "Parle-G", 10.50, 5)
	ident := identity.Static{P: identity.Profile{
		Username: "ramesh", ShopName: "Sharma Kirana", FullAddress: "12 MG Road",
		ContactNumber: "9876543210", Pincode: "560001",
	}, Ok: true}
	s := billing.NewSession(f, ident, billing.WithCheckoutDelay(20*time.Millisecond))
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.InitializeBill(ctx, false))
	require.NoError(t, s.ScanBarcode(ctx, "8901030865275"))
	firstBill := s.Snapshot().BillID

	receipt, err := s.Checkout(ctx, billing.Customer{Name: "Anita", ContactNumber: "9000000000"}, "upi")
	require.NoError(t, err)

	assert.Equal(t, firstBill, receipt.BillID)
	assert.Equal(t, 10.50, receipt.GrandTotal)
	assert.Equal(t, "Sharma Kirana", receipt.Store.ShopName)
	assert.Equal(t, "560001", receipt.Store.Pincode)
	assert.Equal(t, "Anita", receipt.Customer.Name)
	assert.Equal(t, "upi", receipt.PaymentMode)
	require.Len(t, receipt.Items, 1)

	// View cleared immediately.
	snap := s.Snapshot()
	assert.Equal(t, billing.Completed, snap.State)
	assert.Empty(t, snap.Items)
	assert.Zero(t, snap.GrandTotal)

	// A fresh bill appears after the delay without any operator action.
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.State == billing.Active && snap.BillID != "" && snap.BillID != firstBill
	}, time.Second, 5*time.Millisecond)
}

func TestCheckout_FailureReturnsToActive(t *testing.T) {
	f := newFakeBackend()
	f.stock("8901030865275", "Parle-G", 10, 5)
	s := newSession(f)
	ctx := context.Background()
	require.NoError(t, s.InitializeBill(ctx, false))
	require.NoError(t, s.ScanBarcode(ctx, "8901030865275"))

	f.checkoutErr = &gateway.Error{Kind: gateway.KindUnreachable, Message: "cannot connect to server"}
	_, err := s.Checkout(ctx, billing.Customer{}, "cash")
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, billing.Active, snap.State)
	assert.Len(t, snap.Items, 1, "a failed checkout must not lose the cart")
}

func TestSnapshot_ItemCount(t *testing.T) {
	snap := billing.Snapshot{Items: []billing.BillItem{{Quantity: 2}, {Quantity: 3}}}
	assert.Equal(t, 5, snap.ItemCount())
}
