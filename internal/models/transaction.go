package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction directions
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// Transaction types
const (
	TxDeposit            = "deposit"
	TxWithdrawal         = "withdrawal"
	TxWelcomeBonus       = "welcome_bonus"
	TxReferralBonus      = "referral_bonus"
	TxInvestmentPurchase = "investment_purchase"
	TxEarning            = "earning"
)

// Transaction statuses
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Transaction is an append-only journal entry for a balance-affecting event.
// Amount is always positive; Direction says which way the money moved.
// Reference is the idempotency key correlating the entry with external
// payment callbacks. Only Status may change after creation.
type Transaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	User      *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Direction string          `gorm:"size:10;not null" json:"direction"`
	Type      string          `gorm:"size:30;not null;index" json:"type"`
	Status    string          `gorm:"size:20;not null;index" json:"status"`
	Reference string          `gorm:"uniqueIndex;size:64;not null" json:"reference"`
	Remark    string          `gorm:"size:255" json:"remark,omitempty"`

	// Destination bank details, set only on withdrawal entries.
	BankName      string `gorm:"size:100" json:"bank_name,omitempty"`
	AccountNumber string `gorm:"size:50" json:"account_number,omitempty"`
	AccountName   string `gorm:"size:100" json:"account_name,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// SignedAmount returns the amount with debit entries negated.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
