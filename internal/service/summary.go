package service

import (
	"budget_tracker/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// moneyScale is the number of decimal places every stored amount has
const moneyScale = 2

// sumOf turns a scanned SUM into an exact amount. SQLite returns sums of
// decimal columns as REAL, so the float noise is cut back to the stored scale.
func sumOf(total decimal.NullDecimal) decimal.Decimal {
	if !total.Valid {
		return decimal.Zero
	}
	return total.Decimal.Round(moneyScale)
}

type typeTotal struct {
	Type  domain.TransactionType
	Total decimal.NullDecimal
}

type categoryTotal struct {
	Category string
	Total    decimal.NullDecimal
}

// Summarize aggregates the user's ledger. Premium users also get a category
// breakdown of expenses and their savings rate.
func Summarize(tx *gorm.DB, user domain.User) (domain.Summary, error) {
	var totals []typeTotal
	err := tx.Model(&domain.Transaction{}).
		Select("type, SUM(amount) AS total").
		Where("user_id = ?", user.ID).
		Group("type").
		Scan(&totals).Error
	if err != nil {
		return domain.Summary{}, err
	}

	s := domain.Summary{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, t := range totals {
		if !t.Total.Valid {
			continue
		}
		switch t.Type {
		case domain.TransactionTypeIncome:
			s.Income = sumOf(t.Total)
		case domain.TransactionTypeExpense:
			s.Expenses = sumOf(t.Total)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)

	if !user.IsPremium {
		return s, nil
	}
	breakdown, err := CategoryBreakdown(tx, user.ID)
	if err != nil {
		return domain.Summary{}, err
	}
	s.Premium = &domain.PremiumFeatures{
		CategoryBreakdown: breakdown,
		SavingsRate:       SavingsRate(s.Income, s.Balance),
	}
	return s, nil
}

// CategoryBreakdown sums the user's expenses per category
func CategoryBreakdown(tx *gorm.DB, userID uint) (map[string]decimal.Decimal, error) {
	var rows []categoryTotal
	err := tx.Model(&domain.Transaction{}).
		Select("category, SUM(amount) AS total").
		Where("user_id = ? AND type = ?", userID, domain.TransactionTypeExpense).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		if r.Total.Valid {
			out[r.Category] = sumOf(r.Total)
		}
	}
	return out, nil
}

// SavingsRate is balance as a percentage of income, or zero without income
func SavingsRate(income, balance decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return balance.Div(income).Mul(hundred).Round(2)
}
