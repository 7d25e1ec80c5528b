package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a platform account. Balance is the single mutable money
// scalar; every change to it goes through the ledger service and is mirrored
// by a Transaction row.
type User struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Email        string          `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"not null" json:"-"`
	Balance      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	ReferralCode string          `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	ReferrerID   *uint           `gorm:"index" json:"referrer_id,omitempty"`
	Referrer     *User           `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	IsVerified   bool            `gorm:"default:false" json:"is_verified"`
	IsAdmin      bool            `gorm:"default:false" json:"-"`
	PinHash      *string         `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
