package models

import "time"

// DeliveryChallan mirrors the invoice header minus the tax block; a challan
// never carries GST lines.
type DeliveryChallan struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uint          `gorm:"not null;index" json:"userId"`
	ChallanNo     string        `gorm:"not null;index" json:"challanNo"`
	Date          string        `gorm:"not null" json:"date"`
	ClientName    string        `gorm:"not null" json:"clientName"`
	ClientMobile  string        `json:"clientMobile"`
	ClientAddress string        `json:"clientAddress"`
	ClientGSTIN   string        `json:"clientGstin"`
	ClientState   string        `json:"clientState"`
	BankName      string        `json:"bankName"`
	IFSC          string        `json:"ifsc"`
	AccountNo     string        `json:"accountNo"`
	UPIID         string        `json:"upiId"`
	SignatureURL  string        `json:"signature"`
	TotalQuantity int           `gorm:"not null" json:"totalQuantity"`
	Reference     string        `gorm:"size:36;index" json:"reference"`
	Items         []ChallanItem `gorm:"foreignKey:ChallanID" json:"items"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"-"`
}

// ChallanItem is one dispatched line. StockID is zero when the row was
// free-typed rather than picked from the catalog; only catalog-backed rows
// participate in the stock deduction.
type ChallanItem struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	ChallanID uint   `gorm:"not null;index" json:"-"`
	StockID   int64  `gorm:"index" json:"stockId"`
	ItemName  string `gorm:"not null" json:"itemName"`
	Quantity  int    `gorm:"not null" json:"quantity"`
}
