// Package service implements the account, ledger, summary, budget and
// subscription operations. Every function takes the request's transaction
// handle and the caller's identity explicitly.
package service

import (
	"errors"
	"fmt"
	"strings"

	"budget_tracker/internal/domain"

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"
)

const (
	maxEmailLen  = 120
	minSecretLen = 8
	maxSecretLen = 72 // bcrypt ignores anything past 72 bytes
)

// HashCost is the bcrypt work factor for new password hashes
var HashCost = bcrypt.DefaultCost

// dummyHash is compared against when the email is unknown so both failure paths cost the same
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

func validateCredentials(email, secret string) error {
	if email == "" || len(email) > maxEmailLen || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", domain.ErrInvalidInput)
	}
	if len(secret) < minSecretLen || len(secret) > maxSecretLen {
		return fmt.Errorf("%w: password must be %d-%d characters", domain.ErrInvalidInput, minSecretLen, maxSecretLen)
	}
	return nil
}

// Register creates a user with a bcrypt-hashed secret
func Register(tx *gorm.DB, email, secret string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, secret); err != nil {
		return domain.User{}, err
	}
	var existing int64
	if err := tx.Model(&domain.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return domain.User{}, err
	}
	if existing > 0 {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), HashCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{Email: email, PasswordHash: string(hash)}
	if err := tx.Create(&user).Error; err != nil {
		// A concurrent registration can still win the race to the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ErrDuplicateEmail
		}
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate checks an email and secret against the stored hash
func Authenticate(tx *gorm.DB, email, secret string) (domain.User, error) {
	var user domain.User
	err := tx.Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(secret))
		return domain.User{}, domain.ErrInvalidCredentials
	} else if err != nil {
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// GetUser loads a user by id
func GetUser(tx *gorm.DB, id uint) (domain.User, error) {
	var user domain.User
	err := tx.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.ErrNotFound
	}
	return user, err
}
