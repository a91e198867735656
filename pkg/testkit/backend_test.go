package testkit_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaanlabs/dukaan/pkg/gateway"
	"github.com/dukaanlabs/dukaan/pkg/identity"
	"github.com/dukaanlabs/dukaan/pkg/testkit"
)

func TestBackend_ScriptedEnvelopes(t *testing.T) {
	backend := testkit.NewBackend(
		testkit.Route{Method: http.MethodPost, Path: "/bills",
			Data: map[string]interface{}{"_id": "bill-1"}},
		testkit.Route{Method: http.MethodGet, Path: "/products/barcode/",
			Status: 404, Fail: true, Message: "Product not found"},
	)
	defer backend.Install()()

	gw := gateway.New("http://pos.test/api", identity.None)
	ctx := context.Background()

	var bill struct {
		ID string `json:"_id"`
	}
	require.NoError(t, gw.Call(ctx, http.MethodPost, "/bills", map[string]string{}, &bill))
	assert.Equal(t, "bill-1", bill.ID)

	err := gw.Call(ctx, http.MethodGet, "/products/barcode/000", nil, nil)
	assert.Equal(t, gateway.KindNotFound, gateway.KindOf(err))

	assert.Equal(t, 1, backend.Calls(0))
	backend.AssertAllCalled(t)
}

func TestBackend_UnmatchedIsRouteMissing(t *testing.T) {
	backend := testkit.NewBackend()
	defer backend.Install()()

	gw := gateway.New("http://pos.test/api", identity.None)
	err := gw.Call(context.Background(), http.MethodGet, "/analytics/forecast", nil, nil)
	assert.Equal(t, gateway.KindRouteMissing, gateway.KindOf(err))
}

func TestUnreachable(t *testing.T) {
	gateway.DefaultClient.Transport = testkit.Unreachable{}
	defer gateway.ResetTransport()

	gw := gateway.New("http://pos.test/api", identity.None)
	err := gw.Call(context.Background(), http.MethodGet, "/bills", nil, nil)
	assert.True(t, gateway.IsUnreachable(err))
	assert.Equal(t, "cannot connect to server", gateway.Message(err))
}
