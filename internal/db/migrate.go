package db

import (
	"accounts_portal/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Models lists every table owned by the application
var Models = []any{&domain.User{}, &domain.UserProfileInfo{}, &domain.Author{}, &domain.Book{}}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	return db.AutoMigrate(Models...)
}
