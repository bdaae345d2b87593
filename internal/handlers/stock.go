package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/hptiles/tilebill/internal/httpx"
	"github.com/hptiles/tilebill/internal/models"
	"github.com/hptiles/tilebill/internal/validation"
)

type StockHandler struct {
	DB *gorm.DB
}

func NewStockHandler(db *gorm.DB) *StockHandler { return &StockHandler{DB: db} }

type stockRequest struct {
	ItemName string  `json:"itemName"`
	Brand    string  `json:"brand"`
	BatchNo  string  `json:"batchNo"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func (req *stockRequest) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("itemName", req.ItemName, v)
	validation.MinInt("quantity", req.Quantity, 0, v)
	validation.NonNegativeFloat("price", req.Price, v)
	return v
}

// List: GET /api/stocks/{userId}
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var rows []models.StockItem
	if err := h.DB.Where("user_id = ?", uid).Order("id asc").Find(&rows).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

// Create: POST /api/stocks/{userId}
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var req stockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	item := models.StockItem{
		UserID:   uid,
		ItemName: req.ItemName,
		Brand:    req.Brand,
		BatchNo:  req.BatchNo,
		Quantity: req.Quantity,
		Price:    req.Price,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

// Update: PUT /api/stocks/{userId}/{id}
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathUserID(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req stockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var item models.StockItem
	err = h.DB.Where("id = ? AND user_id = ?", id, uid).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update", nil)
		return
	}
	updates := map[string]any{
		"item_name": req.ItemName,
		"brand":     req.Brand,
		"batch_no":  req.BatchNo,
		"quantity":  req.Quantity,
		"price":     req.Price,
	}
	if err := h.DB.Model(&item).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update", nil)
		return
	}
	if err := h.DB.First(&item, id).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// Delete: DELETE /api/stocks/{userId}/{id}
func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathUserID(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Where("id = ? AND user_id = ?", id, uid).Delete(&models.StockItem{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export: GET /api/stocks/{userId}/export — the full stock list as an XLSX
// workbook for offline stock-taking.
func (h *StockHandler) Export(w http.ResponseWriter, r *http.Request) {
	uid, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var rows []models.StockItem
	if err := h.DB.Where("user_id = ?", uid).Order("item_name asc").Find(&rows).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_export", nil)
		return
	}
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Stock"
	f.SetSheetName(f.GetSheetName(0), sheet)
	headers := []string{"Item Name", "Brand", "Batch No", "Quantity", "Price"}
	for i, hname := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, hname)
	}
	for i, row := range rows {
		values := []any{row.ItemName, row.Brand, row.BatchNo, row.Quantity, row.Price}
		for j, val := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, val)
		}
	}
	_ = f.SetColWidth(sheet, "A", "C", 24)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q",
		fmt.Sprintf("stock-%s.xlsx", time.Now().Format("2006-01-02"))))
	if err := f.Write(w); err != nil {
		// Headers are already out; nothing sane left to send.
		return
	}
}
