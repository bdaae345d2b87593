package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotalsSharedScenario(t *testing.T) {
	// Items [{qty:2,rate:50},{qty:1,rate:30}], freight "10", tax on:
	// subtotal 130.00, cgst 11.70, sgst 11.70, grand 163.40.
	items := []LineItem{
		{Quantity: 2, UnitRate: 50, Amount: 100},
		{Quantity: 1, UnitRate: 30, Amount: 30},
	}
	got := CalculateTotals(items, "10", true)
	assert.Equal(t, 130.00, got.Subtotal)
	assert.Equal(t, 11.70, got.CGST)
	assert.Equal(t, 11.70, got.SGST)
	assert.Equal(t, 10.00, got.Freight)
	assert.Equal(t, 163.40, got.GrandTotal)
	assert.Equal(t, int64(163), got.RoundedTotal)
}

func TestCalculateTotalsTaxDisabled(t *testing.T) {
	items := []LineItem{{Quantity: 2, UnitRate: 50, Amount: 100}}
	got := CalculateTotals(items, "", false)
	assert.Equal(t, 100.00, got.Subtotal)
	assert.Zero(t, got.CGST)
	assert.Zero(t, got.SGST)
	assert.Equal(t, 100.00, got.GrandTotal)
}

func TestCalculateTotalsFreightCoercion(t *testing.T) {
	items := []LineItem{{Quantity: 1, UnitRate: 100, Amount: 100}}
	for _, raw := range []string{"", "abc", "NaN", "Inf", "  "} {
		got := CalculateTotals(items, raw, false)
		assert.Equal(t, 0.0, got.Freight, "freight %q must coerce to 0", raw)
		assert.Equal(t, 100.00, got.GrandTotal)
	}
}

func TestCalculateTotalsIdempotent(t *testing.T) {
	items := []LineItem{
		{Quantity: 3, UnitRate: 33.33, Amount: 99.99},
		{Quantity: 2, UnitRate: 0.05, Amount: 0.10},
	}
	first := CalculateTotals(items, "12.5", true)
	second := CalculateTotals(items, "12.5", true)
	assert.Equal(t, first, second)
}

func TestCalculateTotalsGrandTotalIsSumOfParts(t *testing.T) {
	items := []LineItem{
		{Quantity: 7, UnitRate: 19.99, Amount: 139.93},
		{Quantity: 1, UnitRate: 250, Amount: 250},
	}
	got := CalculateTotals(items, "5.5", true)
	assert.InDelta(t, got.Subtotal+got.CGST+got.SGST+got.Freight, got.GrandTotal, 0.005)
	// The two GST components stay equal under the current model.
	assert.Equal(t, got.CGST, got.SGST)
}

func TestCalculateTotalsEmptyLedger(t *testing.T) {
	got := CalculateTotals(nil, "4", true)
	assert.Equal(t, 0.0, got.Subtotal)
	assert.Equal(t, 4.0, got.GrandTotal)
}

func TestParseFreight(t *testing.T) {
	assert.Equal(t, 10.5, ParseFreight(" 10.5 "))
	assert.Equal(t, 0.0, ParseFreight("abc"))
	assert.Equal(t, 0.0, ParseFreight(""))
	assert.Equal(t, 0.0, ParseFreight("NaN"))
	assert.Equal(t, -3.0, ParseFreight("-3"))
}
