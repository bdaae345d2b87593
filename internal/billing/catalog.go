package billing

import (
	"context"
	"fmt"
)

// CatalogEntry is one purchasable/shippable stock line as seen by a draft.
// Available is mutated locally by Reserve; nothing is written back to the
// source until the document is submitted.
type CatalogEntry struct {
	ID        int64
	Name      string
	UnitRate  float64
	Available int
}

// StockSource supplies the stock rows backing a catalog. The gorm store
// implements it in production; tests use a literal func.
type StockSource interface {
	StockFor(ctx context.Context, userID uint) ([]CatalogEntry, error)
}

// StockSourceFunc adapts a plain function to StockSource.
type StockSourceFunc func(ctx context.Context, userID uint) ([]CatalogEntry, error)

func (f StockSourceFunc) StockFor(ctx context.Context, userID uint) ([]CatalogEntry, error) {
	return f(ctx, userID)
}

// Catalog holds the in-memory stock mirror for one document draft session.
// All mutation happens through Reserve; a reload resets every decrement.
type Catalog struct {
	entries []*CatalogEntry
	byID    map[int64]*CatalogEntry
}

// NewCatalog returns an empty catalog. A draft built over an empty catalog
// simply has nothing to select; it never blocks the page.
func NewCatalog() *Catalog {
	return &Catalog{byID: map[int64]*CatalogEntry{}}
}

// Load replaces the catalog contents from src. On source failure the catalog
// is left empty and the error is returned for logging; callers degrade to an
// empty selection rather than failing the draft.
func (c *Catalog) Load(ctx context.Context, src StockSource, userID uint) error {
	c.entries = nil
	c.byID = map[int64]*CatalogEntry{}
	rows, err := src.StockFor(ctx, userID)
	if err != nil {
		return fmt.Errorf("load catalog for user %d: %w", userID, err)
	}
	for _, row := range rows {
		e := row
		c.entries = append(c.entries, &e)
		c.byID[e.ID] = &e
	}
	return nil
}

// Len reports how many entries are loaded.
func (c *Catalog) Len() int { return len(c.entries) }

// Entry returns the current state of one entry.
func (c *Catalog) Entry(id int64) (CatalogEntry, bool) {
	e, ok := c.byID[id]
	if !ok {
		return CatalogEntry{}, false
	}
	return *e, true
}

// Reserve checks quantity against the entry's remaining availability and, on
// success, decrements it in place. The returned entry is the pre-decrement
// snapshot the ledger records. Availability never goes negative: the check
// and the decrement operate on the same in-memory entry.
func (c *Catalog) Reserve(id int64, quantity int) (CatalogEntry, error) {
	e, ok := c.byID[id]
	if !ok {
		return CatalogEntry{}, &ReservationError{CatalogID: id, Requested: quantity, Err: ErrUnknownItem}
	}
	if quantity < 1 {
		return CatalogEntry{}, &ReservationError{CatalogID: id, Requested: quantity, Available: e.Available, Err: ErrNonPositiveQuantity}
	}
	if quantity > e.Available {
		return CatalogEntry{}, &ReservationError{CatalogID: id, Requested: quantity, Available: e.Available, Err: ErrInsufficientStock}
	}
	before := *e
	e.Available -= quantity
	return before, nil
}

// Snapshot returns the post-reservation state of every entry in load order.
// Used for name matching on challan rows and for diffing a client-claimed
// stock snapshot against what the server actually reserved.
func (c *Catalog) Snapshot() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, *e)
	}
	return out
}
