package database

import (
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema. On SQLite it also turns on foreign key
// enforcement, which the delete-or-deactivate policy depends on.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return err
		}
	}

	err := db.AutoMigrate(
		&models.Category{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Invoice{},
	)
	if err != nil {
		return err
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
