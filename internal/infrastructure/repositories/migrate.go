package repositories

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the repositories use
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&DBUser{},
		&DBSignupOTP{},
		&DBEmailChangeRequest{},
		&DBEvent{},
		&DBRegistration{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", m, err)
		}
	}
	return nil
}
