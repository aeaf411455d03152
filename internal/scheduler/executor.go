package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ksred/tradecron-api/internal/accounts"
	"github.com/ksred/tradecron-api/internal/broker"
	"github.com/ksred/tradecron-api/internal/execlog"
	"github.com/ksred/tradecron-api/internal/orders"
)

// Executor drives one claimed order to a terminal status: it re-reads the
// order, resolves the owning account, places the order through the gateway,
// and records the attempt in the execution log.
type Executor struct {
	orders   *orders.Database
	accounts *accounts.Database
	logs     *execlog.Database
	gateway  broker.Gateway
}

func NewExecutor(ordersDB *orders.Database, accountsDB *accounts.Database, logsDB *execlog.Database, gateway broker.Gateway) *Executor {
	return &Executor{
		orders:   ordersDB,
		accounts: accountsDB,
		logs:     logsDB,
		gateway:  gateway,
	}
}

// ExecuteOrder processes one order previously claimed into in_progress.
// Exactly one order-status mutation and at most one log entry happen per
// invocation. A gateway rejection is a terminal failed outcome, not an
// executor error; errors are returned only for store-level faults.
func (e *Executor) ExecuteOrder(ctx context.Context, orderID string) error {
	logger := log.With().
		Str("component", "order_executor").
		Str("order_id", orderID).
		Logger()

	order, err := e.orders.GetOrder(orderID)
	if err != nil {
		return fmt.Errorf("loading order %s: %w", orderID, err)
	}
	if order == nil {
		logger.Warn().Msg("claimed order no longer exists")
		return nil
	}
	if order.Status != orders.StatusInProgress {
		// Another worker already finished it, or the claim was reclaimed.
		logger.Debug().Str("status", order.Status).Msg("order not in progress, skipping")
		return nil
	}

	account, err := e.accounts.GetAccount(order.AccountID)
	if err != nil {
		return fmt.Errorf("loading account %s: %w", order.AccountID, err)
	}
	if account == nil {
		logger.Warn().Str("account_id", order.AccountID).Msg("account not found, failing order")
		if err := e.orders.FailOrder(orderID); err != nil {
			return fmt.Errorf("failing order %s: %w", orderID, err)
		}
		e.record(order, orders.StatusFailed,
			fmt.Sprintf("account %s not found", order.AccountID))
		return fmt.Errorf("account %s not found", order.AccountID)
	}

	result := e.gateway.PlaceOrder(ctx, broker.Credentials{
		APIKey:      account.APIKey,
		APISecret:   account.APISecret,
		AccessToken: account.AccessToken,
	}, order.Symbol, order.Quantity, order.Side)

	payload, err := json.Marshal(result)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"status":%q}`, result.Status))
	}

	if result.Status == broker.StatusSuccess {
		if err := e.orders.CompleteOrder(orderID, result.BrokerOrderID); err != nil {
			return fmt.Errorf("completing order %s: %w", orderID, err)
		}
		e.record(order, orders.StatusCompleted, string(payload))
		logger.Info().
			Str("broker_order_id", result.BrokerOrderID).
			Msg("order executed successfully")
		return nil
	}

	if err := e.orders.FailOrder(orderID); err != nil {
		return fmt.Errorf("failing order %s: %w", orderID, err)
	}
	e.record(order, orders.StatusFailed, string(payload))
	logger.Warn().Str("error", result.Error).Msg("gateway rejected order")
	return nil
}

// record appends the execution log entry for an attempt. The order status
// transition is already committed by the time this runs, so a log-write
// failure is reported but never rolls the order back.
func (e *Executor) record(order *orders.Order, status, message string) {
	if err := e.logs.Record(order.OrderID, order.AccountID, status, message); err != nil {
		log.Error().
			Err(err).
			Str("component", "order_executor").
			Str("order_id", order.OrderID).
			Msg("failed to write execution log entry")
	}
}
