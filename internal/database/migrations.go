package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/models"
)

// AutoMigrate applies the schema for every persistent model.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordReset{},
		&models.AdminLog{},
		&models.Movie{},
		&models.Rating{},
		&models.Comment{},
		&models.WatchlistItem{},
		&models.WatchHistory{},
		&models.Report{},
	)
}

// Migrate is the start-up convenience wrapper.
func Migrate(db *gorm.DB) error {
	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
