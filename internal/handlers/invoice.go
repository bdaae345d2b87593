package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/hptiles/tilebill/internal/auth"
	"github.com/hptiles/tilebill/internal/httpx"
	"github.com/hptiles/tilebill/internal/models"
	"github.com/hptiles/tilebill/internal/pdf"
	"github.com/hptiles/tilebill/internal/services"
)

type InvoiceHandler struct {
	DB        *gorm.DB
	Documents *services.DocumentService
}

func NewInvoiceHandler(db *gorm.DB, docs *services.DocumentService) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Documents: docs}
}

// Create: POST /api/invoice
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var sub services.InvoiceSubmission
	if err := httpx.DecodeJSON(r, &sub); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	inv, err := h.Documents.SubmitInvoice(r.Context(), uid, sub)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// List: GET /api/invoice/{userId} — newest first, items preloaded.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var invoices []models.Invoice
	err := h.DB.Preload("Items").Where("user_id = ?", uid).Order("id desc").Find(&invoices).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

// PDF: GET /api/invoice/{id}/pdf — renders the printable document for one of
// the caller's own invoices.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var inv models.Invoice
	err = h.DB.Preload("Items").Where("id = ? AND user_id = ?", id, uid).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render", nil)
		return
	}
	doc := pdf.InvoiceDoc{
		Company:       companyFor(h.DB, uid),
		InvoiceNo:     inv.InvoiceNo,
		InvoiceDate:   inv.InvoiceDate,
		ClientName:    inv.ClientName,
		ClientAddress: inv.ClientAddress,
		ClientGSTIN:   inv.ClientGSTIN,
		ClientState:   inv.ClientState,
		TaxEnabled:    inv.TaxEnabled,
		TaxableAmount: inv.TaxableAmount,
		CGST:          inv.CGST,
		SGST:          inv.SGST,
		Freight:       inv.Freight,
		TotalAmount:   inv.TotalAmount,
		AmountInWords: inv.AmountInWords,
	}
	for i, it := range inv.Items {
		doc.Lines = append(doc.Lines, pdf.Line{
			No:     i + 1,
			Name:   it.ItemName,
			Qty:    it.Quantity,
			Rate:   it.Rate,
			Amount: it.Amount,
		})
	}
	out, err := pdf.RenderInvoice(doc)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+inv.InvoiceNo+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// companyFor loads the user's letterhead block; a missing profile renders an
// empty letterhead rather than failing the download.
func companyFor(db *gorm.DB, userID uint) pdf.Company {
	var c models.CompanyProfile
	if err := db.Where("user_id = ?", userID).First(&c).Error; err != nil {
		return pdf.Company{}
	}
	return pdf.Company{
		Name:      c.CompanyName,
		Address1:  c.Address1,
		Address2:  c.Address2,
		GSTIN:     c.GSTIN,
		PAN:       c.PAN,
		Mobile:    c.Mobile,
		BankName:  c.BankName,
		IFSC:      c.IFSC,
		AccountNo: c.AccountNo,
		Branch:    c.Branch,
		UPIID:     c.UPIID,
	}
}
