package billing

import (
	"errors"
	"fmt"
)

// Sentinel errors for the document engine. Handlers map these onto HTTP
// error codes with errors.Is.
var (
	// ErrInsufficientStock is returned by Reserve when the requested
	// quantity exceeds what is currently available on the entry.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNonPositiveQuantity is returned by Reserve for quantities < 1.
	ErrNonPositiveQuantity = errors.New("quantity must be at least 1")

	// ErrUnknownItem is returned when a catalog id does not exist in the
	// loaded catalog (stale client selection or another user's stock).
	ErrUnknownItem = errors.New("unknown catalog item")

	// ErrNoItems blocks submission of a draft with an empty ledger.
	ErrNoItems = errors.New("document has no items")

	// ErrMissingField blocks submission when a required header field is blank.
	ErrMissingField = errors.New("missing required field")

	// ErrDraftFrozen is returned for mutations after a draft was submitted.
	ErrDraftFrozen = errors.New("draft already submitted")
)

// ReservationError carries the entry context of a failed Reserve call.
type ReservationError struct {
	CatalogID int64
	Requested int
	Available int
	Err       error
}

func (e *ReservationError) Error() string {
	return fmt.Sprintf("reserve item %d: %v (requested %d, available %d)",
		e.CatalogID, e.Err, e.Requested, e.Available)
}

func (e *ReservationError) Unwrap() error { return e.Err }

// FieldError identifies which header field failed required validation.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return "required field is empty: " + e.Field }

func (e *FieldError) Unwrap() error { return ErrMissingField }
