package billing

// LineItem is one confirmed row of a document draft. Immutable once added;
// the only way to change a drafted document's items is a full reset.
type LineItem struct {
	CatalogID int64
	Name      string
	Quantity  int
	UnitRate  float64
	Amount    float64
}

// Ledger is the ordered, append-only collection of line items for one draft.
// Display order is addition order; there is no re-sort and no in-place edit.
type Ledger struct {
	items []LineItem
}

// Add appends a line item for a previously reserved catalog entry.
// Amount is always quantity × unit rate; callers never supply it.
func (l *Ledger) Add(entry CatalogEntry, quantity int) LineItem {
	item := LineItem{
		CatalogID: entry.ID,
		Name:      entry.Name,
		Quantity:  quantity,
		UnitRate:  entry.UnitRate,
		Amount:    round2(float64(quantity) * entry.UnitRate),
	}
	l.items = append(l.items, item)
	return item
}

// Items returns the ledger contents in insertion order. The slice is a copy;
// mutating it does not touch the ledger.
func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// TotalQuantity sums item quantities for the footer row.
func (l *Ledger) TotalQuantity() int {
	var n int
	for _, it := range l.items {
		n += it.Quantity
	}
	return n
}

func (l *Ledger) Len() int { return len(l.items) }

// IsEmpty reports whether the ledger has no items. Submission is a hard no
// while this is true.
func (l *Ledger) IsEmpty() bool { return len(l.items) == 0 }
