package execlog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultPageSize = 50

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// Record appends one execution log entry. This is the only write the log
// supports; entries are never updated or deleted.
func (d *Database) Record(orderID, accountID, status, message string) error {
	entry := ExecutionLog{
		LogID:     uuid.New().String(),
		OrderID:   orderID,
		AccountID: accountID,
		Status:    status,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	return d.db.Create(&entry).Error
}

// ListFilter narrows and pages a log listing. Zero values are ignored.
type ListFilter struct {
	AccountID string
	OrderID   string
	Status    string
	Message   string
	Limit     int
	Offset    int
}

// ListLogs returns log entries newest first. Status and Message match as
// substrings; the id tiebreak keeps paging deterministic for entries
// created in the same instant.
func (d *Database) ListLogs(filter ListFilter) ([]ExecutionLog, error) {
	query := d.db.Model(&ExecutionLog{})

	if filter.AccountID != "" {
		query = query.Where("account_id = ?", filter.AccountID)
	}
	if filter.OrderID != "" {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status LIKE ?", "%"+filter.Status+"%")
	}
	if filter.Message != "" {
		query = query.Where("message LIKE ?", "%"+filter.Message+"%")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	var logs []ExecutionLog
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// CountByOrder returns the number of log entries recorded for one order.
func (d *Database) CountByOrder(orderID string) (int64, error) {
	var count int64
	err := d.db.Model(&ExecutionLog{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}
