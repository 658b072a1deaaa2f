package service

import (
	"fmt"
	"strings"
	"time"

	"budget_tracker/internal/domain"

	"gorm.io/gorm"
)

const (
	maxCategoryLen    = 50
	maxDescriptionLen = 200
)

// Now is the ledger clock
var Now = func() time.Time { return time.Now().UTC() }

// AddTransaction appends one immutable entry to the user's ledger
func AddTransaction(tx *gorm.DB, userID uint, in domain.NewTransaction) (domain.Transaction, error) {
	if !in.Type.Valid() {
		return domain.Transaction{}, domain.ErrInvalidTransactionType
	}
	category := strings.TrimSpace(in.Category)
	if category == "" || len(category) > maxCategoryLen {
		return domain.Transaction{}, fmt.Errorf("%w: category is required (max %d characters)", domain.ErrInvalidInput, maxCategoryLen)
	}
	if !in.Amount.IsPositive() {
		return domain.Transaction{}, fmt.Errorf("%w: amount must be greater than zero", domain.ErrInvalidInput)
	}
	if len(in.Description) > maxDescriptionLen {
		return domain.Transaction{}, fmt.Errorf("%w: description is limited to %d characters", domain.ErrInvalidInput, maxDescriptionLen)
	}
	t := domain.Transaction{
		UserID:      userID,
		Amount:      in.Amount.Round(2),
		Category:    category,
		Description: in.Description,
		Date:        Now(),
		Type:        in.Type,
	}
	if err := tx.Create(&t).Error; err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}

// ListTransactions returns every entry owned by the user, most recent first
func ListTransactions(tx *gorm.DB, userID uint) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := tx.Where("user_id = ?", userID).
		Order("date desc").
		Order("id desc").
		Find(&txs).Error
	return txs, err
}
