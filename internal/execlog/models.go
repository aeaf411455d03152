package execlog

import (
	"time"

	"gorm.io/gorm"
)

// ExecutionLog is one immutable record of a placement attempt: which order,
// which account, the terminal status, and the serialized gateway result.
// Rows are only ever inserted.
type ExecutionLog struct {
	gorm.Model `json:"-"`
	LogID      string    `gorm:"uniqueIndex" json:"log_id"`
	OrderID    string    `gorm:"index" json:"order_id"`
	AccountID  string    `gorm:"index" json:"account_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
