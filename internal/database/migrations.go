package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dineqr/dineqr/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Dish{}, "Categories", &models.DishCategory{}); err != nil {
		return fmt.Errorf("setup dish_categories join table: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.VerificationCode{},
		&models.Restaurant{},
		&models.Category{},
		&models.Dish{},
		&models.DishCategory{},
	)
}

// Migrate is the convenience helper used during application start-up.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
