package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerAddComputesAmount(t *testing.T) {
	var l Ledger
	item := l.Add(CatalogEntry{ID: 1, Name: "Tile-A", UnitRate: 100, Available: 5}, 3)
	assert.Equal(t, 300.0, item.Amount)
	assert.Equal(t, int64(1), item.CatalogID)
	assert.Equal(t, 3, item.Quantity)
}

func TestLedgerInsertionOrderPreserved(t *testing.T) {
	var l Ledger
	l.Add(CatalogEntry{ID: 3, Name: "C", UnitRate: 1}, 1)
	l.Add(CatalogEntry{ID: 1, Name: "A", UnitRate: 1}, 1)
	l.Add(CatalogEntry{ID: 2, Name: "B", UnitRate: 1}, 1)

	items := l.Items()
	ids := []int64{items[0].CatalogID, items[1].CatalogID, items[2].CatalogID}
	assert.Equal(t, []int64{3, 1, 2}, ids, "display order is addition order, no re-sort")
}

func TestLedgerAmountNeverDivergesFromQuantityTimesRate(t *testing.T) {
	var l Ledger
	cases := []struct {
		qty  int
		rate float64
	}{{2, 50}, {1, 30}, {7, 19.99}, {100, 0.01}}
	for _, c := range cases {
		l.Add(CatalogEntry{ID: 1, Name: "x", UnitRate: c.rate}, c.qty)
	}
	for _, it := range l.Items() {
		assert.Equal(t, round2(float64(it.Quantity)*it.UnitRate), it.Amount)
	}
}

func TestLedgerTotalsAndEmptiness(t *testing.T) {
	var l Ledger
	assert.True(t, l.IsEmpty())
	assert.Zero(t, l.TotalQuantity())

	l.Add(CatalogEntry{ID: 1, UnitRate: 10}, 2)
	l.Add(CatalogEntry{ID: 2, UnitRate: 10}, 5)
	assert.False(t, l.IsEmpty())
	assert.Equal(t, 7, l.TotalQuantity())
	assert.Equal(t, 2, l.Len())
}

func TestLedgerItemsReturnsCopy(t *testing.T) {
	var l Ledger
	l.Add(CatalogEntry{ID: 1, UnitRate: 10}, 1)
	items := l.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, l.Items()[0].Quantity)
}
