package billing

import (
	"context"
	"time"

	"github.com/dukaanlabs/dukaan/pkg/identity"
)

// Product is the catalog entry resolved from a scanned barcode.
type Product struct {
	ID      string  `json:"_id"`
	Name    string  `json:"name"`
	Barcode string  `json:"barcode"`
	Price   float64 `json:"price"`
	Stock   int     `json:"stock"`
}

// BillItem is one line of the active bill, as the server reports it.
type BillItem struct {
	ID        string  `json:"_id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// Bill is the server-side bill snapshot. Items and GrandTotal always come
// from here, never from client arithmetic.
type Bill struct {
	ID         string     `json:"_id"`
	Items      []BillItem `json:"items"`
	GrandTotal float64    `json:"grandTotal"`
	Status     string     `json:"status"`
}

// Customer is the walk-in customer block captured at checkout. Both fields
// are optional.
type Customer struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
}

// CheckoutRequest is what the server needs to finalize a bill.
type CheckoutRequest struct {
	Customer    Customer `json:"customer"`
	PaymentMode string   `json:"paymentMode"`
}

// StoreInfo is the shop header printed on receipts, sourced from the cached
// operator profile.
type StoreInfo struct {
	ShopName      string `json:"shopName"`
	FullAddress   string `json:"fullAddress"`
	ContactNumber string `json:"contactNumber"`
	Pincode       string `json:"pincode"`
}

// Receipt is the frozen record of a completed sale, captured before the
// session clears its view. GrandTotal is the completed bill's total, not a
// recomputation.
type Receipt struct {
	BillID      string     `json:"billId"`
	Store       StoreInfo  `json:"store"`
	Customer    Customer   `json:"customer"`
	Items       []BillItem `json:"items"`
	GrandTotal  float64    `json:"grandTotal"`
	PaymentMode string     `json:"paymentMode"`
	CompletedAt time.Time  `json:"completedAt"`
}

// Backend is the server surface the session drives. The production
// implementation sits on pkg/gateway; tests supply a scripted fake.
type Backend interface {
	CreateBill(ctx context.Context) (*Bill, error)
	GetBill(ctx context.Context, billID string) (*Bill, error)
	ProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	AddItem(ctx context.Context, billID, productID string, quantity int) error
	UpdateItemQuantity(ctx context.Context, billID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, billID, itemID string) error
	Checkout(ctx context.Context, billID string, req CheckoutRequest) (*Bill, error)
}

// storeInfoFrom builds the receipt header from the cached profile; an absent
// profile yields an empty block, never an error.
func storeInfoFrom(src identity.Source) StoreInfo {
	p, ok := src.Profile()
	if !ok {
		return StoreInfo{}
	}
	return StoreInfo{
		ShopName:      p.ShopName,
		FullAddress:   p.FullAddress,
		ContactNumber: p.ContactNumber,
		Pincode:       p.Pincode,
	}
}
