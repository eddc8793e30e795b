package initializers

import (
	"fmt"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"

	"gorm.io/gorm"
)

func SyncDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.OTPRecord{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
