package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment statuses
const (
	InvestmentActive    = "active"
	InvestmentCompleted = "completed"
)

// Investment records a plan purchase. DailyEarning and DurationDays are copies
// of the plan values at purchase time. TotalEarning only ever grows, and
// LastAccruedOn guards against crediting the same investment twice in one
// calendar day.
type Investment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PlanID        uint            `gorm:"not null;index" json:"plan_id"`
	Plan          *Plan           `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	DailyEarning  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"daily_earning"`
	TotalEarning  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_earning"`
	DurationDays  int             `gorm:"not null" json:"duration_days"`
	Status        string          `gorm:"size:20;default:active;index" json:"status"`
	LastAccruedOn *time.Time      `json:"last_accrued_on,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Investment model
func (Investment) TableName() string {
	return "investments"
}

// ExpiresAt returns the moment the investment stops earning.
func (i *Investment) ExpiresAt() time.Time {
	return i.CreatedAt.Add(time.Duration(i.DurationDays) * 24 * time.Hour)
}
