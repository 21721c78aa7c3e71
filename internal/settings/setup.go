package settings

import (
	"fmt"

	"github.com/solix-energy/solix/internal/db"
	"gorm.io/gorm"
)

// Migrate creates the settings schema and preference table.
func Migrate(gdb *gorm.DB) error {
	if err := db.EnsureSchema(gdb, "settings"); err != nil {
		return fmt.Errorf("create settings schema: %w", err)
	}
	if err := gdb.AutoMigrate(&Preference{}); err != nil {
		return fmt.Errorf("migrate preferences: %w", err)
	}
	return nil
}
