package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of a ledger entry
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction Model. Rows are immutable once written.
type Transaction struct {
	ID          uint            `gorm:"primaryKey"`                                                                // Primary key
	UserID      uint            `gorm:"not null;index:idx_transactions_user_date,priority:1"`                      // Owning user
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`                                               // Always positive, sign comes from Type
	Category    string          `gorm:"size:50;not null"`                                                          // Free-form category
	Description string          `gorm:"size:200"`                                                                  // Optional description
	Date        time.Time       `gorm:"not null;index:idx_transactions_user_date,priority:2"`                      // Creation time, UTC
	Type        TransactionType `gorm:"size:10;not null;check:chk_transactions_type,type IN ('income','expense')"` // income or expense
}

// NewTransaction is the input for appending to a ledger
type NewTransaction struct {
	Amount      decimal.Decimal
	Category    string
	Type        TransactionType
	Description string
}
