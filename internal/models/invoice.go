package models

import "time"

// Invoicing models
type Invoice struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uint          `gorm:"not null;index" json:"userId"`
	InvoiceNo     string        `gorm:"not null;index" json:"invoiceNo"`
	InvoiceDate   string        `gorm:"not null" json:"invoiceDate"`
	ClientName    string        `gorm:"not null" json:"clientName"`
	ClientAddress string        `json:"clientAddress"`
	ClientGSTIN   string        `json:"clientGstin"`
	ClientState   string        `json:"clientState"`
	TaxEnabled    bool          `gorm:"not null;default:true" json:"taxEnabled"`
	TaxableAmount float64       `gorm:"not null" json:"taxableAmount"`
	CGST          float64       `gorm:"not null" json:"cgst"`
	SGST          float64       `gorm:"not null" json:"sgst"`
	Freight       float64       `gorm:"not null" json:"freight"`
	TotalAmount   float64       `gorm:"not null" json:"totalAmount"`
	RoundedTotal  int64         `gorm:"not null" json:"roundedTotal"`
	AmountInWords string        `json:"amountInWords"`
	SignatureURL  string        `json:"signature"`
	Reference     string        `gorm:"size:36;index" json:"reference"`
	Items         []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"-"`
}

// InvoiceItem snapshots one ledger row at submission time. Rate and amount
// are copied from the stock record, not joined at read time, so a later
// price change never rewrites an issued document.
type InvoiceItem struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	InvoiceID uint    `gorm:"not null;index" json:"-"`
	StockID   int64   `gorm:"not null" json:"stockId"`
	ItemName  string  `gorm:"not null" json:"itemName"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Rate      float64 `gorm:"not null" json:"rate"`
	Amount    float64 `gorm:"not null" json:"amount"`
}
