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

type ChallanHandler struct {
	DB        *gorm.DB
	Documents *services.DocumentService
}

func NewChallanHandler(db *gorm.DB, docs *services.DocumentService) *ChallanHandler {
	return &ChallanHandler{DB: db, Documents: docs}
}

// Create: POST /api/dchallan
func (h *ChallanHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var sub services.ChallanSubmission
	if err := httpx.DecodeJSON(r, &sub); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	ch, err := h.Documents.SubmitChallan(r.Context(), uid, sub)
	if err != nil {
		writeDocumentError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ch)
}

// List: GET /api/dchallan/{userId}
func (h *ChallanHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var challans []models.DeliveryChallan
	err := h.DB.Preload("Items").Where("user_id = ?", uid).Order("id desc").Find(&challans).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, challans)
}

// PDF: GET /api/dchallan/{id}/pdf
func (h *ChallanHandler) PDF(w http.ResponseWriter, r *http.Request) {
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
	var ch models.DeliveryChallan
	err = h.DB.Preload("Items").Where("id = ? AND user_id = ?", id, uid).First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render", nil)
		return
	}
	company := companyFor(h.DB, uid)
	// Bank details typed on the challan itself win over the stored profile.
	if ch.BankName != "" {
		company.BankName = ch.BankName
		company.IFSC = ch.IFSC
		company.AccountNo = ch.AccountNo
	}
	if ch.UPIID != "" {
		company.UPIID = ch.UPIID
	}
	doc := pdf.ChallanDoc{
		Company:       company,
		ChallanNo:     ch.ChallanNo,
		Date:          ch.Date,
		ClientName:    ch.ClientName,
		ClientMobile:  ch.ClientMobile,
		ClientAddress: ch.ClientAddress,
		ClientGSTIN:   ch.ClientGSTIN,
		ClientState:   ch.ClientState,
		TotalQuantity: ch.TotalQuantity,
	}
	for i, it := range ch.Items {
		doc.Lines = append(doc.Lines, pdf.Line{No: i + 1, Name: it.ItemName, Qty: it.Quantity})
	}
	out, err := pdf.RenderChallan(doc)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "challan-"+ch.ChallanNo+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
