package billing

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// GST is split evenly between the central and state components. Both are
// computed from the subtotal at this rate, independently of each other.
const gstComponentRate = 0.09

// TotalsSnapshot is a pure derivation from a set of line items plus the
// freight input and tax flag. It is never stored independently of the items
// it was computed from.
type TotalsSnapshot struct {
	Subtotal   float64 `json:"taxableAmount"`
	CGST       float64 `json:"cgst"`
	SGST       float64 `json:"sgst"`
	Freight    float64 `json:"freight"`
	GrandTotal float64 `json:"totalAmount"`
	// RoundedTotal is the integer display variant used by the invoice flow.
	// The stored record always keeps the 2-decimal GrandTotal.
	RoundedTotal int64 `json:"roundedTotal"`
}

// ParseFreight coerces the freight form input to a number. Blank, garbage and
// NaN all become 0; freight must never leak into the totals as NaN.
func ParseFreight(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// CalculateTotals derives the totals snapshot for the given items. Both
// document flows share this one implementation: the invoice passes
// taxEnabled per its toggle, the challan always passes false.
func CalculateTotals(items []LineItem, freight string, taxEnabled bool) TotalsSnapshot {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(decimal.NewFromFloat(it.Amount))
	}
	subtotal = subtotal.Round(2)

	// CGST and SGST are numerically equal under the current tax model but
	// kept as two separate computations from the subtotal.
	cgst := gstComponent(subtotal, taxEnabled)
	sgst := gstComponent(subtotal, taxEnabled)

	fr := decimal.NewFromFloat(ParseFreight(freight)).Round(2)
	grand := subtotal.Add(cgst).Add(sgst).Add(fr).Round(2)

	return TotalsSnapshot{
		Subtotal:     subtotal.InexactFloat64(),
		CGST:         cgst.InexactFloat64(),
		SGST:         sgst.InexactFloat64(),
		Freight:      fr.InexactFloat64(),
		GrandTotal:   grand.InexactFloat64(),
		RoundedTotal: grand.Round(0).IntPart(),
	}
}

func gstComponent(subtotal decimal.Decimal, enabled bool) decimal.Decimal {
	if !enabled {
		return decimal.Zero
	}
	return subtotal.Mul(decimal.NewFromFloat(gstComponentRate)).Round(2)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
