package models

import "time"

// User & auth related models
type User struct {
	ID         uint      `gorm:"primaryKey" json:"userid"`
	Email      string    `gorm:"unique;not null;index" json:"email"`
	Password   string    `gorm:"not null" json:"-"` // bcrypt hash
	Username   string    `gorm:"index" json:"username"`
	Name       string    `json:"name"` // first name shown in the navbar
	Phone      string    `json:"phonenum"`
	State      string    `json:"state"`
	ProfileURL string    `json:"profileurl"`
	Verified   bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// OtpCode is a one-time registration code. Codes expire after ten minutes
// and are consumed on first successful verification.
type OtpCode struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Code      string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Consumed  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}
