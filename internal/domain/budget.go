package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps spending in one category over a time window
type Budget struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"-"`
	Category    string          `gorm:"size:50;not null" json:"category"`
	Limit       decimal.Decimal `gorm:"column:limit_amount;type:decimal(12,2);not null" json:"limit"`
	StartDate   time.Time       `gorm:"not null" json:"start_date"`
	EndDate     time.Time       `gorm:"not null" json:"end_date"`
	IsRecurring bool            `gorm:"not null;default:false" json:"is_recurring"`
}

// NewBudget is the input for creating a budget. Zero dates mean "one month from now".
type NewBudget struct {
	Category    string
	Limit       decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
	IsRecurring bool
}

// BudgetProgress is a budget together with what has been spent against it
type BudgetProgress struct {
	Budget
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Progress  decimal.Decimal `json:"progress"` // Spent / Limit, 0..n
}
