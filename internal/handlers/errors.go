package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/hptiles/tilebill/internal/billing"
	"github.com/hptiles/tilebill/internal/httpx"
	"github.com/hptiles/tilebill/internal/services"
)

// writeDocumentError maps engine and persistence errors from a submission
// onto the wire. Validation and reservation failures are the client's to fix
// (400), a stock conflict is retryable (409), anything else is a 500.
func writeDocumentError(w http.ResponseWriter, err error) {
	var fieldErr *billing.FieldError
	if errors.As(err, &fieldErr) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{fieldErr.Field: "required"})
		return
	}
	var resErr *billing.ReservationError
	if errors.As(err, &resErr) {
		httpx.JSONError(w, http.StatusBadRequest, reservationCode(resErr.Err), map[string]any{
			"stockId":   resErr.CatalogID,
			"requested": resErr.Requested,
			"available": resErr.Available,
		})
		return
	}
	switch {
	case errors.Is(err, billing.ErrNoItems):
		httpx.JSONError(w, http.StatusBadRequest, "no_items", nil)
	case errors.Is(err, billing.ErrMissingField):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", nil)
	case errors.Is(err, services.ErrStockConflict):
		httpx.JSONError(w, http.StatusConflict, "stock_conflict", nil)
	default:
		log.Printf("document submit: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "submit_failed", nil)
	}
}

func reservationCode(err error) string {
	switch {
	case errors.Is(err, billing.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, billing.ErrNonPositiveQuantity):
		return "invalid_quantity"
	default:
		return "unknown_item"
	}
}
