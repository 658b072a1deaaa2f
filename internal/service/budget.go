package service

import (
	"fmt"
	"strings"

	"budget_tracker/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FreeBudgetLimit is how many budgets a non-premium user may keep
const FreeBudgetLimit = 2

// CreateBudget adds a spending limit for one category
func CreateBudget(tx *gorm.DB, user domain.User, in domain.NewBudget) (domain.Budget, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" || len(category) > maxCategoryLen {
		return domain.Budget{}, fmt.Errorf("%w: category is required (max %d characters)", domain.ErrInvalidInput, maxCategoryLen)
	}
	if !in.Limit.IsPositive() {
		return domain.Budget{}, fmt.Errorf("%w: limit must be greater than zero", domain.ErrInvalidInput)
	}
	start := in.StartDate.UTC()
	if in.StartDate.IsZero() {
		start = Now()
	}
	end := in.EndDate.UTC()
	if in.EndDate.IsZero() {
		end = start.AddDate(0, 1, 0) // Monthly by default
	}
	if !end.After(start) {
		return domain.Budget{}, fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidInput)
	}

	if !user.IsPremium {
		var count int64
		if err := tx.Model(&domain.Budget{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			return domain.Budget{}, err
		}
		if count >= FreeBudgetLimit {
			return domain.Budget{}, domain.ErrBudgetLimit
		}
	}

	b := domain.Budget{
		UserID:      user.ID,
		Category:    category,
		Limit:       in.Limit.Round(2),
		StartDate:   start,
		EndDate:     end,
		IsRecurring: in.IsRecurring,
	}
	if err := tx.Create(&b).Error; err != nil {
		return domain.Budget{}, err
	}
	return b, nil
}

// ListBudgets returns the user's budgets with what was actually spent in each window
func ListBudgets(tx *gorm.DB, userID uint) ([]domain.BudgetProgress, error) {
	var budgets []domain.Budget
	if err := tx.Where("user_id = ?", userID).Order("id").Find(&budgets).Error; err != nil {
		return nil, err
	}
	out := make([]domain.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		var spent decimal.NullDecimal
		err := tx.Model(&domain.Transaction{}).
			Select("SUM(amount)").
			Where("user_id = ? AND type = ? AND category = ? AND date >= ? AND date < ?",
				userID, domain.TransactionTypeExpense, b.Category, b.StartDate, b.EndDate).
			Row().Scan(&spent)
		if err != nil {
			return nil, err
		}
		p := domain.BudgetProgress{Budget: b, Spent: sumOf(spent), Progress: decimal.Zero}
		p.Remaining = b.Limit.Sub(p.Spent)
		if b.Limit.IsPositive() {
			p.Progress = p.Spent.Div(b.Limit).Round(4)
		}
		out = append(out, p)
	}
	return out, nil
}

// DeleteBudget removes one of the user's budgets
func DeleteBudget(tx *gorm.DB, userID, budgetID uint) error {
	res := tx.Where("user_id = ? AND id = ?", userID, budgetID).Delete(&domain.Budget{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
