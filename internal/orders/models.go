package orders

import (
	"time"

	"gorm.io/gorm"
)

// Order lifecycle statuses. Pending is the only initial state; completed
// and failed are terminal and never left.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Recognized transaction sides, stored normalized lowercase.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Order is one scheduled market-order intent. It is created pending with
// a future due time, claimed by the scheduler when due, and driven to a
// terminal status by the executor.
type Order struct {
	gorm.Model    `json:"-"`
	OrderID       string    `gorm:"uniqueIndex" json:"order_id"`
	AccountID     string    `gorm:"index" json:"account_id"`
	Symbol        string    `json:"symbol"`
	Quantity      int64     `json:"quantity"`
	Side          string    `json:"side"`
	DueAt         time.Time `json:"due_at"`
	Status        string    `gorm:"index" json:"status"`
	BrokerOrderID string    `json:"broker_order_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Terminal reports whether the order has reached a final status.
func (o *Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusFailed
}
