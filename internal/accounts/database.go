package accounts

import (
	"errors"

	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateAccount(account *Account) error {
	return d.db.Create(account).Error
}

// GetAccount retrieves an account by its external identifier.
// Returns nil without error when the account does not exist.
func (d *Database) GetAccount(accountID string) (*Account, error) {
	var account Account
	if err := d.db.Where("account_id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (d *Database) GetAccountByAPIKey(apiKey string) (*Account, error) {
	var account Account
	if err := d.db.Where("api_key = ?", apiKey).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (d *Database) ListAccounts() ([]Account, error) {
	var accounts []Account
	if err := d.db.Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
