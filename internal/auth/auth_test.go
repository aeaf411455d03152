package auth

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ksred/tradecron-api/internal/accounts"
)

func setupTestService(t *testing.T) (*Service, *accounts.Account) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&accounts.Account{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	accountsDB := accounts.NewDatabase(db)
	account := &accounts.Account{
		AccountID: "acct-1",
		APIKey:    "test-key",
		APISecret: "test-secret",
	}
	if err := accountsDB.CreateAccount(account); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	return NewService("unit-test-secret", accountsDB), account
}

func TestGenerateToken_ValidCredentials(t *testing.T) {
	service, account := setupTestService(t)

	token, err := service.GenerateToken(Credentials{APIKey: "test-key", APISecret: "test-secret"})
	if err != nil {
		t.Fatalf("expected token, got error: %v", err)
	}
	if token.Token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := service.ValidateToken(token.Token)
	if err != nil {
		t.Fatalf("token failed validation: %v", err)
	}
	if claims.ClientID != account.AccountID {
		t.Errorf("client id = %s, want %s", claims.ClientID, account.AccountID)
	}
}

func TestGenerateToken_InvalidCredentials(t *testing.T) {
	service, _ := setupTestService(t)

	cases := []Credentials{
		{APIKey: "test-key", APISecret: "wrong"},
		{APIKey: "unknown", APISecret: "test-secret"},
		{},
	}
	for _, creds := range cases {
		if _, err := service.GenerateToken(creds); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("GenerateToken(%+v) = %v, want ErrInvalidCredentials", creds, err)
		}
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	service, _ := setupTestService(t)

	if _, err := service.ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
