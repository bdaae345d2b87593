package models

import "time"

// CompanyProfile carries the letterhead and payment details rendered on
// every invoice and challan: identity block, GSTIN/PAN, bank account, UPI.
// One profile per user.
type CompanyProfile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex" json:"userId"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	CompanyName string    `gorm:"not null;index" json:"companyName"`
	Address1    string    `json:"address1"`
	Address2    string    `json:"address2"`
	GSTIN       string    `gorm:"size:15;index" json:"gstin"`
	PAN         string    `gorm:"size:10" json:"pan"`
	Mobile      string    `json:"mobile"`
	BankName    string    `json:"bankName"`
	IFSC        string    `gorm:"size:11" json:"ifsc"`
	AccountNo   string    `json:"accountNo"`
	Branch      string    `json:"branch"`
	UPIID       string    `json:"upiId"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
