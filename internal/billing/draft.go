package billing

import (
	"context"
	"strings"
)

// DraftState is the submission lifecycle of one document draft.
type DraftState string

const (
	StateDrafting         DraftState = "drafting"
	StateSubmitting       DraftState = "submitting"
	StateSubmitted        DraftState = "submitted" // terminal, read-only
	StateValidationFailed DraftState = "validation_failed"
	StateSubmitFailed     DraftState = "submit_failed"
)

// DocumentKind selects the per-flow behavior the two builders diverge on.
type DocumentKind string

const (
	KindInvoice DocumentKind = "invoice"
	KindChallan DocumentKind = "dchallan"
)

// TaxEnabled reports whether this document kind carries GST lines at all.
// The challan has no tax line; the invoice has a user toggle on top of this.
func (k DocumentKind) TaxEnabled() bool { return k == KindInvoice }

// Persister writes the finalized document and the reconciled stock levels in
// one transaction. Returning an error leaves the draft fully intact.
type Persister interface {
	Persist(ctx context.Context, d *Draft) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, d *Draft) error

func (f PersisterFunc) Persist(ctx context.Context, d *Draft) error { return f(ctx, d) }

// Draft is a single in-flight document: header fields, the item ledger, the
// catalog it reserves from, and the submission state machine. Created empty,
// mutated by header edits and item additions, frozen on successful submit.
type Draft struct {
	Kind    DocumentKind
	Catalog *Catalog
	Ledger  *Ledger

	header   map[string]string
	required []string
	freight  string
	tax      bool

	state  DraftState
	totals TotalsSnapshot
	frozen bool
}

// NewDraft creates an empty draft over the given catalog. required lists the
// header fields that must be non-blank before submission.
func NewDraft(kind DocumentKind, cat *Catalog, required ...string) *Draft {
	return &Draft{
		Kind:     kind,
		Catalog:  cat,
		Ledger:   &Ledger{},
		header:   map[string]string{},
		required: required,
		tax:      kind.TaxEnabled(),
		state:    StateDrafting,
	}
}

func (d *Draft) State() DraftState { return d.state }

// resume clears a transient failure state; any edit or retry puts the draft
// back into Drafting.
func (d *Draft) resume() {
	if d.state == StateValidationFailed || d.state == StateSubmitFailed {
		d.state = StateDrafting
	}
}

// SetHeader records one header field edit.
func (d *Draft) SetHeader(field, value string) error {
	if d.frozen {
		return ErrDraftFrozen
	}
	d.resume()
	d.header[field] = value
	return nil
}

func (d *Draft) Header(field string) string { return d.header[field] }

// SetFreight stores the raw freight input; coercion happens at calculation.
func (d *Draft) SetFreight(raw string) error {
	if d.frozen {
		return ErrDraftFrozen
	}
	d.resume()
	d.freight = raw
	return nil
}

// SetTaxEnabled flips the invoice tax toggle. A challan draft ignores it.
func (d *Draft) SetTaxEnabled(on bool) error {
	if d.frozen {
		return ErrDraftFrozen
	}
	d.resume()
	d.tax = on && d.Kind.TaxEnabled()
	return nil
}

func (d *Draft) TaxEnabled() bool { return d.tax }

// Freight returns the raw freight input as entered.
func (d *Draft) Freight() string { return d.freight }

// AddItem reserves quantity on the catalog entry and appends the line item.
// A failed reservation mutates nothing.
func (d *Draft) AddItem(catalogID int64, quantity int) (LineItem, error) {
	if d.frozen {
		return LineItem{}, ErrDraftFrozen
	}
	d.resume()
	entry, err := d.Catalog.Reserve(catalogID, quantity)
	if err != nil {
		return LineItem{}, err
	}
	return d.Ledger.Add(entry, quantity), nil
}

// AddCustomItem appends a free-typed line that is not backed by any catalog
// entry (the challan flow allows hand-written rows). No reservation happens
// and the line carries no rate, so it never contributes to totals.
func (d *Draft) AddCustomItem(name string, quantity int) (LineItem, error) {
	if d.frozen {
		return LineItem{}, ErrDraftFrozen
	}
	d.resume()
	if quantity < 1 {
		return LineItem{}, &ReservationError{Requested: quantity, Err: ErrNonPositiveQuantity}
	}
	return d.Ledger.Add(CatalogEntry{Name: name}, quantity), nil
}

// Totals recomputes the totals snapshot from current ledger state. After a
// successful submit it returns the frozen snapshot instead.
func (d *Draft) Totals() TotalsSnapshot {
	if d.frozen {
		return d.totals
	}
	return CalculateTotals(d.Ledger.Items(), d.freight, d.tax)
}

// validate enforces the submission preconditions: every required header
// field non-blank and at least one line item.
func (d *Draft) validate() error {
	for _, f := range d.required {
		if strings.TrimSpace(d.header[f]) == "" {
			return &FieldError{Field: f}
		}
	}
	if d.Ledger.IsEmpty() {
		return ErrNoItems
	}
	return nil
}

// Submit drives the draft through the state machine. On validation failure
// or persister error the draft keeps every header field and item intact, so
// the caller can correct and resubmit; nothing retries automatically. On
// success the draft is frozen with its totals snapshot.
func (d *Draft) Submit(ctx context.Context, p Persister) error {
	if d.frozen {
		return ErrDraftFrozen
	}
	d.resume()
	if err := d.validate(); err != nil {
		d.state = StateValidationFailed
		return err
	}
	d.state = StateSubmitting
	if err := p.Persist(ctx, d); err != nil {
		d.state = StateSubmitFailed
		return err
	}
	d.totals = CalculateTotals(d.Ledger.Items(), d.freight, d.tax)
	d.frozen = true
	d.state = StateSubmitted
	return nil
}
