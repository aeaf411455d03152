package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ksred/tradecron-api/internal/accounts"
	"github.com/ksred/tradecron-api/internal/execlog"
	"github.com/ksred/tradecron-api/internal/orders"
)

// NewDatabase opens the sqlite database at the given path and migrates
// the schema.
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&accounts.Account{},
		&orders.Order{},
		&execlog.ExecutionLog{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
