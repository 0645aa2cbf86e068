package migrations

import (
	"fmt"

	"gorm.io/gorm"
)

// Run auto-migrates the given gorm models in order. Adapters own their record types.
func Run(db *gorm.DB, models ...any) error {
	if db == nil || len(models) == 0 {
		return nil
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
