package accounts

import (
	"time"

	"gorm.io/gorm"
)

// Account is a brokerage connection owned by one user of the system.
// The credential pair identifies the connection with the broker; the
// access token is obtained out of band and expires daily.
type Account struct {
	gorm.Model     `json:"-"`
	AccountID      string     `gorm:"uniqueIndex" json:"account_id"`
	APIKey         string     `gorm:"uniqueIndex" json:"api_key"`
	APISecret      string     `json:"-"`
	AccessToken    string     `json:"-"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CanTrade reports whether the account holds a usable access token.
func (a *Account) CanTrade() bool {
	if a.AccessToken == "" {
		return false
	}
	if a.TokenExpiresAt != nil && !a.TokenExpiresAt.After(time.Now().UTC()) {
		return false
	}
	return true
}
