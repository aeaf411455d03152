package orders

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateOrder(order *Order) error {
	return d.db.Create(order).Error
}

// GetOrder retrieves an order by its external identifier.
// Returns nil without error when the order does not exist.
func (d *Database) GetOrder(orderID string) (*Order, error) {
	var order Order
	if err := d.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (d *Database) ListOrders() ([]Order, error) {
	var orders []Order
	if err := d.db.Order("due_at ASC, id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// SelectDuePending returns up to limit pending orders whose due time has
// passed, earliest-due first. Ties on due time fall back to insertion
// order so the selection is deterministic.
func (d *Database) SelectDuePending(now time.Time, limit int) ([]Order, error) {
	var orders []Order
	err := d.db.
		Where("status = ? AND due_at <= ?", StatusPending, now).
		Order("due_at ASC, id ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ClaimOrder atomically transitions an order from pending to in_progress.
// The update is conditional on the row still being pending, so concurrent
// claims on the same order yield at most one winner. Returns false when
// the order was already claimed or processed elsewhere.
func (d *Database) ClaimOrder(orderID string) (bool, error) {
	result := d.db.Model(&Order{}).
		Where("order_id = ? AND status = ?", orderID, StatusPending).
		Updates(map[string]interface{}{
			"status":     StatusInProgress,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CompleteOrder marks a claimed order completed and records the broker's
// confirmation identifier. Guarded on in_progress so a terminal status is
// never overwritten.
func (d *Database) CompleteOrder(orderID, brokerOrderID string) error {
	return d.finishOrder(orderID, map[string]interface{}{
		"status":          StatusCompleted,
		"broker_order_id": brokerOrderID,
		"updated_at":      time.Now().UTC(),
	})
}

// FailOrder marks a claimed order failed. Failed orders are never retried;
// a retry is an explicit new order.
func (d *Database) FailOrder(orderID string) error {
	return d.finishOrder(orderID, map[string]interface{}{
		"status":     StatusFailed,
		"updated_at": time.Now().UTC(),
	})
}

func (d *Database) finishOrder(orderID string, updates map[string]interface{}) error {
	result := d.db.Model(&Order{}).
		Where("order_id = ? AND status = ?", orderID, StatusInProgress).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %s is not in progress", orderID)
	}
	return nil
}

// ReclaimStale returns orders stuck in_progress past the staleness cutoff
// to pending so a later poll cycle can claim them again. This recovers
// orders orphaned by a crashed worker or a saturated pool.
func (d *Database) ReclaimStale(olderThan time.Time) (int64, error) {
	result := d.db.Model(&Order{}).
		Where("status = ? AND updated_at < ?", StatusInProgress, olderThan).
		Updates(map[string]interface{}{
			"status":     StatusPending,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
