package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedCatalog(t *testing.T, entries ...CatalogEntry) *Catalog {
	t.Helper()
	cat := NewCatalog()
	src := StockSourceFunc(func(ctx context.Context, userID uint) ([]CatalogEntry, error) {
		return entries, nil
	})
	require.NoError(t, cat.Load(context.Background(), src, 1))
	return cat
}

func TestCatalogReserveDecrementsAndReturnsSnapshot(t *testing.T) {
	cat := loadedCatalog(t, CatalogEntry{ID: 1, Name: "Tile-A", UnitRate: 100, Available: 5})

	before, err := cat.Reserve(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, before.Available, "reserve returns the pre-decrement snapshot")

	after, ok := cat.Entry(1)
	require.True(t, ok)
	assert.Equal(t, 2, after.Available)
}

func TestCatalogReserveInsufficientStock(t *testing.T) {
	// Scenario: 5 available, reserve 3 succeeds, reserving 3 again must fail
	// because only 2 remain.
	cat := loadedCatalog(t, CatalogEntry{ID: 1, Name: "Tile-A", UnitRate: 100, Available: 5})

	_, err := cat.Reserve(1, 3)
	require.NoError(t, err)

	_, err = cat.Reserve(1, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var resErr *ReservationError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, 3, resErr.Requested)
	assert.Equal(t, 2, resErr.Available)

	// Failed reservation mutates nothing.
	e, _ := cat.Entry(1)
	assert.Equal(t, 2, e.Available)
}

func TestCatalogReserveNeverGoesNegative(t *testing.T) {
	cat := loadedCatalog(t, CatalogEntry{ID: 7, Name: "Tile-B", UnitRate: 40, Available: 4})

	reserved := 0
	for _, q := range []int{1, 2, 2, 1, 3} {
		if _, err := cat.Reserve(7, q); err == nil {
			reserved += q
		}
		e, _ := cat.Entry(7)
		assert.GreaterOrEqual(t, e.Available, 0)
	}
	e, _ := cat.Entry(7)
	assert.Equal(t, 4-reserved, e.Available)
}

func TestCatalogReserveNonPositive(t *testing.T) {
	cat := loadedCatalog(t, CatalogEntry{ID: 1, Name: "Tile-A", UnitRate: 100, Available: 5})

	for _, q := range []int{0, -2} {
		_, err := cat.Reserve(1, q)
		assert.ErrorIs(t, err, ErrNonPositiveQuantity)
	}
	e, _ := cat.Entry(1)
	assert.Equal(t, 5, e.Available)
}

func TestCatalogReserveUnknownItem(t *testing.T) {
	cat := loadedCatalog(t, CatalogEntry{ID: 1, Name: "Tile-A", UnitRate: 100, Available: 5})
	_, err := cat.Reserve(99, 1)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestCatalogLoadFailureLeavesEmptyCatalog(t *testing.T) {
	cat := NewCatalog()
	src := StockSourceFunc(func(ctx context.Context, userID uint) ([]CatalogEntry, error) {
		return nil, errors.New("collaborator unreachable")
	})
	err := cat.Load(context.Background(), src, 1)
	require.Error(t, err)
	assert.Equal(t, 0, cat.Len())
}

func TestCatalogSnapshotReflectsReservations(t *testing.T) {
	cat := loadedCatalog(t,
		CatalogEntry{ID: 1, Name: "Tile-A", UnitRate: 100, Available: 5},
		CatalogEntry{ID: 2, Name: "Tile-B", UnitRate: 60, Available: 8},
	)
	_, err := cat.Reserve(2, 3)
	require.NoError(t, err)

	snap := cat.Snapshot()
	require.Len(t, snap, 2)
	// Load order preserved, decrements applied.
	assert.Equal(t, int64(1), snap[0].ID)
	assert.Equal(t, 5, snap[0].Available)
	assert.Equal(t, int64(2), snap[1].ID)
	assert.Equal(t, 5, snap[1].Available)
}
