package models

import "time"

// StockItem is one inventory row owned by a user. Quantity is decremented
// inside the same transaction that writes a document referencing it and is
// never allowed below zero.
type StockItem struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	ItemName  string    `gorm:"not null" json:"itemName"`
	Brand     string    `json:"brand"`
	BatchNo   string    `json:"batchNo"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	Price     float64   `gorm:"not null;default:0" json:"price"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
