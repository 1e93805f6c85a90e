package db

import (
	"gorm.io/gorm"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.ConsoleSnapshot{},
	)
}
