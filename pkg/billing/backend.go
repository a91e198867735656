package billing

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dukaanlabs/dukaan/pkg/gateway"
)

// GatewayBackend implements Backend over the API gateway client.
type GatewayBackend struct {
	GW *gateway.Client
}

// NewGatewayBackend wraps gw as the production Backend.
func NewGatewayBackend(gw *gateway.Client) *GatewayBackend {
	return &GatewayBackend{GW: gw}
}

func (b *GatewayBackend) CreateBill(ctx context.Context) (*Bill, error) {
	var bill Bill
	if err := b.GW.Call(ctx, http.MethodPost, "/bills", map[string]string{}, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (b *GatewayBackend) GetBill(ctx context.Context, billID string) (*Bill, error) {
	var bill Bill
	if err := b.GW.Call(ctx, http.MethodGet, "/bills/"+url.PathEscape(billID), nil, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (b *GatewayBackend) ProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	var p Product
	if err := b.GW.Call(ctx, http.MethodGet, "/products/barcode/"+url.PathEscape(barcode), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (b *GatewayBackend) AddItem(ctx context.Context, billID, productID string, quantity int) error {
	body := map[string]interface{}{"productId": productID, "quantity": quantity}
	return b.GW.Call(ctx, http.MethodPost, "/bills/"+url.PathEscape(billID)+"/items", body, nil)
}

func (b *GatewayBackend) UpdateItemQuantity(ctx context.Context, billID, itemID string, quantity int) error {
	body := map[string]interface{}{"quantity": quantity}
	return b.GW.Call(ctx, http.MethodPut,
		"/bills/"+url.PathEscape(billID)+"/items/"+url.PathEscape(itemID), body, nil)
}

func (b *GatewayBackend) RemoveItem(ctx context.Context, billID, itemID string) error {
	return b.GW.Call(ctx, http.MethodDelete,
		"/bills/"+url.PathEscape(billID)+"/items/"+url.PathEscape(itemID), nil, nil)
}

func (b *GatewayBackend) Checkout(ctx context.Context, billID string, req CheckoutRequest) (*Bill, error) {
	var bill Bill
	if err := b.GW.Call(ctx, http.MethodPut,
		"/bills/"+url.PathEscape(billID)+"/checkout", req, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}
