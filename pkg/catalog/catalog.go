// Package catalog manages the product list behind the counter: the CRUD
// surface for `dukaan products` and the stock adjustments behind
// `dukaan stock`.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dukaanlabs/dukaan/pkg/collection"
	"github.com/dukaanlabs/dukaan/pkg/gateway"
	"github.com/dukaanlabs/dukaan/pkg/validate"
)

// Product is a catalog entry.
type Product struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Barcode  string  `json:"barcode"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
}

// Input is the create/update payload.
type Input struct {
	Name     string  `json:"name" validate:"required"`
	Barcode  string  `json:"barcode"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price" validate:"min=0"`
	Stock    int     `json:"stock" validate:"min=0"`
}

// Service talks to the catalog routes.
type Service struct {
	gw *gateway.Client
}

// New builds a Service over gw.
func New(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

// List fetches all products, optionally filtered server-side by a search
// term and category.
func (s *Service) List(ctx context.Context, search, category string) ([]Product, error) {
	path := "/products"
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if category != "" {
		q.Set("category", category)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var products []Product
	if err := s.gw.Call(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get fetches one product by id.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := s.gw.Call(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ByBarcode resolves a scanned code to a product.
func (s *Service) ByBarcode(ctx context.Context, barcode string) (*Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("catalog: empty barcode")
	}
	var p Product
	if err := s.gw.Call(ctx, http.MethodGet, "/products/barcode/"+url.PathEscape(barcode), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create adds a product.
func (s *Service) Create(ctx context.Context, in Input) (*Product, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	var p Product
	if err := s.gw.Call(ctx, http.MethodPost, "/products", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces a product's details.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Product, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	var p Product
	if err := s.gw.Call(ctx, http.MethodPut, "/products/"+url.PathEscape(id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.gw.Call(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

// AdjustStock applies a delta to a product's stock level and returns the
// updated product. The server enforces the floor at zero.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*Product, error) {
	body := map[string]int{"delta": delta}
	var p Product
	if err := s.gw.Call(ctx, http.MethodPut, "/products/"+url.PathEscape(id)+"/stock", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Categories derives the distinct category list from products, skipping
// blanks.
func Categories(products []Product) []string {
	names := collection.Map(products, func(p Product) string { return p.Category })
	return collection.Filter(collection.Unique(names), func(c string) bool { return c != "" })
}
