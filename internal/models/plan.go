package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a purchasable investment product. Price and DailyEarning are
// snapshotted onto the Investment at purchase time, so editing a plan never
// changes what existing investments pay out.
type Plan struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	DailyEarning decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"daily_earning"`
	DurationDays int             `gorm:"not null" json:"duration_days"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Plan model
func (Plan) TableName() string {
	return "plans"
}
