package db

import (
	"budget_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/gorm" // GORM ORM library
)

// Migrate creates or updates tables, foreign keys, constraints and indexes
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.Transaction{}, &domain.Budget{}); err != nil {
		return err
	}
	logrus.Info("Migration completed.")
	return nil
}
