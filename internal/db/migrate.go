package db

import (
	"yieldly/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/postgres" // Postgres driver for GORM
	"gorm.io/gorm"            // GORM ORM library
)

// Open connects to Postgres with the given DSN
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	return db.AutoMigrate(
		&domain.User{},
		&domain.Deposit{},
		&domain.Investment{},
		&domain.Withdrawal{},
		&domain.ReferralCommission{},
		&domain.AuditLog{},
	)
}

// MustMigrate migrates or exits
func MustMigrate(db *gorm.DB) {
	if err := Migrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Migration completed.")
}
