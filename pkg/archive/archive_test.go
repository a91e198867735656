package archive_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dukaanlabs/dukaan/pkg/archive"
	"github.com/dukaanlabs/dukaan/pkg/billing"
)

func newStore(t *testing.T) *archive.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store, err := archive.New(db)
	require.NoError(t, err)
	return store
}

func receipt(billID string, total float64, at time.Time) *billing.Receipt {
	return &billing.Receipt{
		BillID:     billID,
		Store:      billing.StoreInfo{ShopName: "Sharma Kirana", Pincode: "560001"},
		Customer:   billing.Customer{Name: "Anita"},
		Items:      []billing.BillItem{{ID: "item-1", Name: "Parle-G", Price: 10.5, Quantity: 2, Subtotal: 21}},
		GrandTotal: total, PaymentMode: "upi", CompletedAt: at,
	}
}

func TestSaveAndLast(t *testing.T) {
	store := newStore(t)
	now := time.Now().Truncate(time.Second)

	require.NoError(t, store.Save(receipt("bill-1", 21, now.Add(-time.Hour))))
	require.NoError(t, store.Save(receipt("bill-2", 42, now)))

	last, err := store.Last()
	require.NoError(t, err)
	assert.Equal(t, "bill-2", last.BillID)
	assert.Equal(t, 42.0, last.GrandTotal)
	assert.Equal(t, "Sharma Kirana", last.Store.ShopName)
	require.Len(t, last.Items, 1)
	assert.Equal(t, 2, last.Items[0].Quantity)
}

func TestSave_DuplicateBillKeepsFirst(t *testing.T) {
	store := newStore(t)
	now := time.Now()

	require.NoError(t, store.Save(receipt("bill-1", 21, now)))
	require.NoError(t, store.Save(receipt("bill-1", 99, now)))

	recent, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 21.0, recent[0].GrandTotal)
}

func TestBetween(t *testing.T) {
	store := newStore(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(receipt("bill-1", 10, base)))
	require.NoError(t, store.Save(receipt("bill-2", 20, base.AddDate(0, 0, 1))))
	require.NoError(t, store.Save(receipt("bill-3", 30, base.AddDate(0, 0, 5))))

	got, err := store.Between(base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bill-1", got[0].BillID)
	assert.Equal(t, "bill-2", got[1].BillID)
}

func TestLast_Empty(t *testing.T) {
	store := newStore(t)
	_, err := store.Last()
	assert.Error(t, err)
}
