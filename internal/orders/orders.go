package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ksred/tradecron-api/pkg/response"
)

var (
	ErrInvalidSide     = errors.New("side must be buy or sell")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidDueTime  = errors.New("due_at must be in the future")
	ErrMissingSymbol   = errors.New("symbol is required")
	ErrNotPending      = errors.New("order is not pending")
)

// Executor places a claimed order with the broker. Implemented by the
// scheduler's executor; declared here so the place-now endpoint does not
// depend on the scheduler package.
type Executor interface {
	ExecuteOrder(ctx context.Context, orderID string) error
}

// Service handles scheduled order management
type Service struct {
	db *Database
}

// NewService creates a new orders service with the given database connection
func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// CreateOrder validates and persists a new scheduled order. The side is
// normalized lowercase, quantity must be positive, and the due time must
// still be in the future. All timestamps are stored in UTC.
func (s *Service) CreateOrder(order *Order) error {
	if strings.TrimSpace(order.Symbol) == "" {
		return ErrMissingSymbol
	}
	if order.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	side := strings.ToLower(strings.TrimSpace(order.Side))
	if side != SideBuy && side != SideSell {
		return ErrInvalidSide
	}
	order.Side = side

	now := time.Now().UTC()
	order.DueAt = order.DueAt.UTC()
	if !order.DueAt.After(now) {
		return ErrInvalidDueTime
	}

	order.OrderID = uuid.New().String()
	order.Status = StatusPending
	order.CreatedAt = now
	order.UpdatedAt = now

	return s.db.CreateOrder(order)
}

// GetOrder retrieves an order by its ID
func (s *Service) GetOrder(orderID string) (*Order, error) {
	return s.db.GetOrder(orderID)
}

// ListOrders returns all orders, earliest due first
func (s *Service) ListOrders() ([]Order, error) {
	return s.db.ListOrders()
}

// PlaceNow claims a pending order and executes it immediately, bypassing
// its due time. The claim keeps the single-owner guarantee: if the
// scheduler already picked the order up, the manual placement is refused.
func (s *Service) PlaceNow(ctx context.Context, orderID string, executor Executor) (*Order, error) {
	order, err := s.db.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	claimed, err := s.db.ClaimOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrNotPending
	}

	// The execution outcome is recorded on the order itself and in the
	// execution log; a failed placement still returns the order so the
	// caller sees its terminal status.
	execErr := executor.ExecuteOrder(ctx, orderID)

	refreshed, err := s.db.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if refreshed == nil {
		return nil, execErr
	}
	return refreshed, nil
}

// GetDB exposes the database wrapper for the scheduler
func (s *Service) GetDB() *Database {
	return s.db
}

// CreateOrderRequest is the request body for scheduling an order
type CreateOrderRequest struct {
	AccountID string    `json:"account_id" binding:"required"`
	Symbol    string    `json:"symbol" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required"`
	Side      string    `json:"side" binding:"required"`
	DueAt     time.Time `json:"due_at" binding:"required"`
}

// GinHandlers contains HTTP handlers for order endpoints
type GinHandlers struct {
	service  *Service
	executor Executor
}

func NewGinHandlers(service *Service, executor Executor) *GinHandlers {
	return &GinHandlers{
		service:  service,
		executor: executor,
	}
}

// CreateOrderHandler handles POST requests to schedule new orders
func (h *GinHandlers) CreateOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		order := &Order{
			AccountID: req.AccountID,
			Symbol:    req.Symbol,
			Quantity:  req.Quantity,
			Side:      req.Side,
			DueAt:     req.DueAt,
		}

		if err := h.service.CreateOrder(order); err != nil {
			switch {
			case errors.Is(err, ErrInvalidSide),
				errors.Is(err, ErrInvalidQuantity),
				errors.Is(err, ErrInvalidDueTime),
				errors.Is(err, ErrMissingSymbol):
				response.BadRequest(c, err.Error())
			default:
				response.InternalError(c, err.Error())
			}
			return
		}

		response.Success(c, order)
	}
}

// ListOrdersHandler handles GET requests to list scheduled orders
func (h *GinHandlers) ListOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := h.service.ListOrders()
		response.Handle(c, orders, err)
	}
}

// GetOrderHandler handles GET requests to retrieve a single order
func (h *GinHandlers) GetOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")

		order, err := h.service.GetOrder(orderID)
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if order == nil {
			response.NotFound(c, "Order not found")
			return
		}

		response.Success(c, order)
	}
}

// PlaceOrderNowHandler handles POST requests to execute an order
// immediately instead of waiting for its due time
func (h *GinHandlers) PlaceOrderNowHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")

		order, err := h.service.PlaceNow(c.Request.Context(), orderID, h.executor)
		if errors.Is(err, ErrNotPending) {
			response.Conflict(c, err.Error())
			return
		}
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}
		if order == nil {
			response.NotFound(c, "Order not found")
			return
		}

		response.Success(c, order)
	}
}
