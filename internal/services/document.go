package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hptiles/tilebill/internal/billing"
	"github.com/hptiles/tilebill/internal/models"
	"github.com/hptiles/tilebill/internal/words"
)

// ErrStockConflict is returned when the conditional stock decrement matches
// no row: either the item vanished or another submission took the remaining
// quantity first. The document transaction is rolled back whole.
var ErrStockConflict = errors.New("stock level changed during submission")

// DocumentService builds document drafts over the user's live stock and
// persists them. The stock decrement is applied as a conditional UPDATE in
// the same transaction as the document write, so two overlapping
// submissions can never drive a quantity negative — the later one fails and
// the client retries against fresh stock.
type DocumentService struct {
	DB *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService { return &DocumentService{DB: db} }

// StockFor implements billing.StockSource from the stock_items table.
func (s *DocumentService) StockFor(ctx context.Context, userID uint) ([]billing.CatalogEntry, error) {
	var rows []models.StockItem
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]billing.CatalogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, billing.CatalogEntry{
			ID:        r.ID,
			Name:      r.ItemName,
			UnitRate:  r.Price,
			Available: r.Quantity,
		})
	}
	return entries, nil
}

// ItemSelection is one picked catalog row in a submission.
type ItemSelection struct {
	StockID  int64 `json:"stockId"`
	Quantity int   `json:"quantity"`
}

// InvoiceSubmission is the parsed POST /api/invoice payload.
type InvoiceSubmission struct {
	InvoiceNo     string          `json:"invoiceNo"`
	InvoiceDate   string          `json:"invoiceDate"`
	ClientName    string          `json:"clientName"`
	ClientAddress string          `json:"clientAddress"`
	ClientGSTIN   string          `json:"clientGstin"`
	ClientState   string          `json:"clientState"`
	Items         []ItemSelection `json:"items"`
	Freight       string          `json:"freight"`
	TaxEnabled    *bool           `json:"taxEnabled"` // nil means on, the invoice default
	AmountInWords string          `json:"amountInWords"`
	Signature     string          `json:"signature"`
}

var invoiceRequired = []string{"invoiceNo", "invoiceDate", "clientName", "clientAddress", "clientGstin", "clientState"}

// SubmitInvoice rebuilds the draft server-side, reserves every item against
// the current catalog, recomputes totals authoritatively and persists
// invoice plus stock levels in one transaction. Client-sent totals are never
// trusted.
func (s *DocumentService) SubmitInvoice(ctx context.Context, userID uint, sub InvoiceSubmission) (*models.Invoice, error) {
	cat := billing.NewCatalog()
	if err := cat.Load(ctx, s, userID); err != nil {
		// Degrade to an empty catalog: the draft fails on its own terms
		// (unknown items / no items) rather than a blanket 500.
		log.Printf("invoice submit: %v", err)
	}
	d := billing.NewDraft(billing.KindInvoice, cat, invoiceRequired...)
	for field, value := range map[string]string{
		"invoiceNo":     sub.InvoiceNo,
		"invoiceDate":   sub.InvoiceDate,
		"clientName":    sub.ClientName,
		"clientAddress": sub.ClientAddress,
		"clientGstin":   sub.ClientGSTIN,
		"clientState":   sub.ClientState,
	} {
		if err := d.SetHeader(field, value); err != nil {
			return nil, err
		}
	}
	if err := d.SetFreight(sub.Freight); err != nil {
		return nil, err
	}
	if sub.TaxEnabled != nil {
		if err := d.SetTaxEnabled(*sub.TaxEnabled); err != nil {
			return nil, err
		}
	}
	for _, sel := range sub.Items {
		if _, err := d.AddItem(sel.StockID, sel.Quantity); err != nil {
			return nil, err
		}
	}

	var created *models.Invoice
	err := d.Submit(ctx, billing.PersisterFunc(func(ctx context.Context, dr *billing.Draft) error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			totals := dr.Totals()
			inWords := strings.TrimSpace(sub.AmountInWords)
			if inWords == "" {
				inWords = words.Rupees(totals.GrandTotal)
			}
			inv := models.Invoice{
				UserID:        userID,
				InvoiceNo:     sub.InvoiceNo,
				InvoiceDate:   sub.InvoiceDate,
				ClientName:    sub.ClientName,
				ClientAddress: sub.ClientAddress,
				ClientGSTIN:   sub.ClientGSTIN,
				ClientState:   sub.ClientState,
				TaxEnabled:    dr.TaxEnabled(),
				TaxableAmount: totals.Subtotal,
				CGST:          totals.CGST,
				SGST:          totals.SGST,
				Freight:       totals.Freight,
				TotalAmount:   totals.GrandTotal,
				RoundedTotal:  totals.RoundedTotal,
				AmountInWords: inWords,
				SignatureURL:  sub.Signature,
				Reference:     uuid.NewString(),
			}
			for _, it := range dr.Ledger.Items() {
				inv.Items = append(inv.Items, models.InvoiceItem{
					StockID:  it.CatalogID,
					ItemName: it.Name,
					Quantity: it.Quantity,
					Rate:     it.UnitRate,
					Amount:   it.Amount,
				})
			}
			if err := tx.Create(&inv).Error; err != nil {
				return fmt.Errorf("create invoice: %w", err)
			}
			if err := applyDeductions(tx, userID, dr.Ledger.Items()); err != nil {
				return err
			}
			created = &inv
			return nil
		})
	}))
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ChallanHeader is the dchallan object of the POST /api/dchallan payload.
// Items arrive as the legacy parallel arrays.
type ChallanHeader struct {
	ChallanNo     string   `json:"challanNo"`
	Date          string   `json:"date"`
	ClientName    string   `json:"clientName"`
	ClientMobile  string   `json:"clientMobile"`
	ClientAddress string   `json:"clientAddress"`
	ClientGSTIN   string   `json:"clientGstin"`
	ClientState   string   `json:"clientState"`
	BankName      string   `json:"bankName"`
	IFSC          string   `json:"ifsc"`
	AccountNo     string   `json:"accountNo"`
	UPIID         string   `json:"upiId"`
	Signature     string   `json:"signature"`
	ItemName      []string `json:"itemName"`
	ItemQuantity  []int    `json:"itemQuantity"`
}

// ChallanSubmission is the full POST /api/dchallan body. StockUpdates is the
// client's post-reservation catalog snapshot; it is accepted for wire
// compatibility but the deduction persisted is always the server-computed
// one (a snapshot from a second open tab could otherwise undo this tab's
// reservations).
type ChallanSubmission struct {
	Challan      ChallanHeader      `json:"dchallan"`
	StockUpdates []models.StockItem `json:"stockUpdates"`
}

var challanRequired = []string{"challanNo", "date", "clientName", "clientMobile", "clientAddress"}

// SubmitChallan matches the submitted item names against the user's catalog:
// matched rows are reserved and deducted, free-typed rows ship as-is with no
// stock effect.
func (s *DocumentService) SubmitChallan(ctx context.Context, userID uint, sub ChallanSubmission) (*models.DeliveryChallan, error) {
	hdr := sub.Challan
	if len(hdr.ItemName) != len(hdr.ItemQuantity) {
		return nil, fmt.Errorf("%w: itemName and itemQuantity lengths differ", billing.ErrNoItems)
	}
	cat := billing.NewCatalog()
	if err := cat.Load(ctx, s, userID); err != nil {
		log.Printf("challan submit: %v", err)
	}
	d := billing.NewDraft(billing.KindChallan, cat, challanRequired...)
	for field, value := range map[string]string{
		"challanNo":     hdr.ChallanNo,
		"date":          hdr.Date,
		"clientName":    hdr.ClientName,
		"clientMobile":  hdr.ClientMobile,
		"clientAddress": hdr.ClientAddress,
	} {
		if err := d.SetHeader(field, value); err != nil {
			return nil, err
		}
	}
	byName := catalogByName(cat)
	for i, name := range hdr.ItemName {
		qty := hdr.ItemQuantity[i]
		if id, ok := byName[strings.ToLower(strings.TrimSpace(name))]; ok {
			if _, err := d.AddItem(id, qty); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := d.AddCustomItem(name, qty); err != nil {
			return nil, err
		}
	}
	if warn := snapshotMismatch(cat, sub.StockUpdates); warn != "" {
		log.Printf("challan submit user=%d: client snapshot ignored: %s", userID, warn)
	}

	var created *models.DeliveryChallan
	err := d.Submit(ctx, billing.PersisterFunc(func(ctx context.Context, dr *billing.Draft) error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			ch := models.DeliveryChallan{
				UserID:        userID,
				ChallanNo:     hdr.ChallanNo,
				Date:          hdr.Date,
				ClientName:    hdr.ClientName,
				ClientMobile:  hdr.ClientMobile,
				ClientAddress: hdr.ClientAddress,
				ClientGSTIN:   hdr.ClientGSTIN,
				ClientState:   hdr.ClientState,
				BankName:      hdr.BankName,
				IFSC:          hdr.IFSC,
				AccountNo:     hdr.AccountNo,
				UPIID:         hdr.UPIID,
				SignatureURL:  hdr.Signature,
				TotalQuantity: dr.Ledger.TotalQuantity(),
				Reference:     uuid.NewString(),
			}
			for _, it := range dr.Ledger.Items() {
				ch.Items = append(ch.Items, models.ChallanItem{
					StockID:  it.CatalogID,
					ItemName: it.Name,
					Quantity: it.Quantity,
				})
			}
			if err := tx.Create(&ch).Error; err != nil {
				return fmt.Errorf("create challan: %w", err)
			}
			if err := applyDeductions(tx, userID, dr.Ledger.Items()); err != nil {
				return err
			}
			created = &ch
			return nil
		})
	}))
	if err != nil {
		return nil, err
	}
	return created, nil
}

// applyDeductions decrements stock with a guarded UPDATE per catalog-backed
// line. RowsAffected == 0 means the quantity guard failed; the whole
// transaction aborts and no partial deduction survives.
func applyDeductions(tx *gorm.DB, userID uint, items []billing.LineItem) error {
	for _, it := range items {
		if it.CatalogID == 0 {
			continue // free-typed challan row
		}
		res := tx.Model(&models.StockItem{}).
			Where("id = ? AND user_id = ? AND quantity >= ?", it.CatalogID, userID, it.Quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", it.Quantity))
		if res.Error != nil {
			return fmt.Errorf("deduct stock %d: %w", it.CatalogID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("deduct stock %d (%s): %w", it.CatalogID, it.Name, ErrStockConflict)
		}
	}
	return nil
}

func catalogByName(cat *billing.Catalog) map[string]int64 {
	out := map[string]int64{}
	for _, e := range cat.Snapshot() {
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if _, dup := out[key]; !dup {
			out[key] = e.ID
		}
	}
	return out
}

// snapshotMismatch compares the client's claimed stock levels with the
// server-computed reservation result. Divergence is expected whenever a
// second tab reserved in between; it is logged, never trusted.
func snapshotMismatch(cat *billing.Catalog, updates []models.StockItem) string {
	if len(updates) == 0 {
		return ""
	}
	for _, u := range updates {
		e, ok := cat.Entry(u.ID)
		if !ok {
			return fmt.Sprintf("unknown stock id %d in snapshot", u.ID)
		}
		if e.Available != u.Quantity {
			return fmt.Sprintf("stock %d: client says %d, server computed %d", u.ID, u.Quantity, e.Available)
		}
	}
	return ""
}
