package domain

import "time"

// User Model
type User struct {
	ID               uint          `gorm:"primaryKey" json:"id"`                                   // Primary key
	Email            string        `gorm:"uniqueIndex;size:120;not null" json:"email"`             // Unique, case-sensitive email
	PasswordHash     string        `gorm:"size:255;not null" json:"-"`                             // bcrypt hash, never serialized
	IsPremium        bool          `gorm:"not null;default:false" json:"is_premium"`               // Premium flag
	PremiumSince     *time.Time    `json:"premium_since,omitempty"`                                // Set when premium is confirmed
	StripeCustomerID *string       `gorm:"uniqueIndex;size:64" json:"-"`                           // Payment provider customer reference
	CreatedAt        time.Time     `json:"-"`                                                      // Registration time
	Transactions     []Transaction `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Ledger entries
	Budgets          []Budget      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Budgets
}
