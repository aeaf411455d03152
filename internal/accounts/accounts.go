package accounts

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ksred/tradecron-api/pkg/response"
)

var ErrMissingCredentials = errors.New("api_key and api_secret are required")

// Service handles brokerage account management
type Service struct {
	db *Database
}

// NewService creates a new accounts service with the given database connection
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// CreateAccount registers a new brokerage connection. The access token is
// optional at creation time; without one the account can only trade in
// simulation mode.
func (s *Service) CreateAccount(account *Account) error {
	if account.APIKey == "" || account.APISecret == "" {
		return ErrMissingCredentials
	}

	account.AccountID = uuid.New().String()
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = time.Now().UTC()

	return s.db.CreateAccount(account)
}

// GetAccount retrieves an account by its ID
func (s *Service) GetAccount(accountID string) (*Account, error) {
	return s.db.GetAccount(accountID)
}

// ListAccounts returns all registered accounts
func (s *Service) ListAccounts() ([]Account, error) {
	return s.db.ListAccounts()
}

// EnsureAccount registers an account for the given credentials if one does
// not already exist. Used to seed the bootstrap credentials at startup.
func (s *Service) EnsureAccount(apiKey, apiSecret string) (*Account, error) {
	existing, err := s.db.GetAccountByAPIKey(apiKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	account := &Account{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if err := s.CreateAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetDB exposes the database wrapper for collaborating services
func (s *Service) GetDB() *Database {
	return s.db
}

// accountView is the API shape of an account: secrets are never echoed,
// only whether the account is currently eligible to place live orders.
type accountView struct {
	*Account
	Eligible bool `json:"eligible"`
}

func newAccountView(a *Account) accountView {
	return accountView{Account: a, Eligible: a.CanTrade()}
}

// CreateAccountRequest is the request body for account registration
type CreateAccountRequest struct {
	APIKey         string     `json:"api_key" binding:"required"`
	APISecret      string     `json:"api_secret" binding:"required"`
	AccessToken    string     `json:"access_token"`
	TokenExpiresAt *time.Time `json:"token_expires_at"`
}

// GinHandlers contains HTTP handlers for account endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// CreateAccountHandler handles POST requests to register accounts
func (h *GinHandlers) CreateAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		account := &Account{
			APIKey:         req.APIKey,
			APISecret:      req.APISecret,
			AccessToken:    req.AccessToken,
			TokenExpiresAt: req.TokenExpiresAt,
		}

		if err := h.service.CreateAccount(account); err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, newAccountView(account))
	}
}

// ListAccountsHandler handles GET requests to list registered accounts
func (h *GinHandlers) ListAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := h.service.ListAccounts()
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		views := make([]accountView, len(accounts))
		for i := range accounts {
			views[i] = newAccountView(&accounts[i])
		}
		response.Success(c, views)
	}
}
