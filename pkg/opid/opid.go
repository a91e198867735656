// Package opid provides operation ID generation and context propagation.
//
// One id is minted per user-visible POS operation (a scan, a quantity change,
// a checkout) and travels through the whole chain it triggers: product
// lookup, bill mutation, snapshot reload. Every log line and outbound
// request header of that chain can be correlated.
//
// Minting at the surface:
//
//	ctx := opid.NewCtx(context.Background())
//
// Reading inside the controller or gateway:
//
//	id := opid.FromCtx(ctx)
//
// Logging with the id automatically attached:
//
//	log := logger.WithCtx(ctx)
//	log.Info("bill reloaded", "items", len(items))
package opid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// ctxKey is the unexported key used to store the operation ID in context.
type ctxKey struct{}

// Header is the HTTP header used to propagate the id to the backend.
const Header = "X-Op-ID"

// New generates a random 8-byte (16 hex char) operation ID.
func New() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithValue stores id in ctx and returns the new context.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// NewCtx mints a fresh id and stores it in ctx.
func NewCtx(ctx context.Context) context.Context {
	return WithValue(ctx, New())
}

// FromCtx extracts the operation ID from ctx.
// Returns an empty string if none is present.
func FromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}
