package domain

import "github.com/shopspring/decimal"

// Summary is computed on demand from a user's ledger
type Summary struct {
	Income   decimal.Decimal  `json:"income"`
	Expenses decimal.Decimal  `json:"expenses"`
	Balance  decimal.Decimal  `json:"balance"`
	Premium  *PremiumFeatures `json:"premium_features,omitempty"`
}

// PremiumFeatures are only computed for premium users
type PremiumFeatures struct {
	CategoryBreakdown map[string]decimal.Decimal `json:"category_breakdown"`
	SavingsRate       decimal.Decimal            `json:"savings_rate"`
}
