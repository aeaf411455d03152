package accounts

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&Account{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return NewService(db)
}

func TestCanTrade(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	cases := []struct {
		name    string
		account Account
		want    bool
	}{
		{"no token", Account{}, false},
		{"token without expiry", Account{AccessToken: "tok"}, true},
		{"token with future expiry", Account{AccessToken: "tok", TokenExpiresAt: &future}, true},
		{"expired token", Account{AccessToken: "tok", TokenExpiresAt: &past}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.account.CanTrade(); got != tc.want {
				t.Errorf("CanTrade() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCreateAccount_RequiresCredentials(t *testing.T) {
	s := setupTestService(t)

	err := s.CreateAccount(&Account{APIKey: "key"})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestEnsureAccount_Idempotent(t *testing.T) {
	s := setupTestService(t)

	first, err := s.EnsureAccount("boot-key", "boot-secret")
	if err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	second, err := s.EnsureAccount("boot-key", "boot-secret")
	if err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}

	if first.AccountID != second.AccountID {
		t.Errorf("ensure created a duplicate account: %s vs %s", first.AccountID, second.AccountID)
	}

	all, err := s.ListAccounts()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 account, got %d", len(all))
	}
}

func TestGetAccount_Missing(t *testing.T) {
	s := setupTestService(t)

	account, err := s.GetAccount("nope")
	if err != nil {
		t.Fatalf("expected no error for missing account, got %v", err)
	}
	if account != nil {
		t.Errorf("expected nil account, got %+v", account)
	}
}
