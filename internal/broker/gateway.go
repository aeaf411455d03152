package broker

import (
	"context"
	"fmt"
	"strings"
)

// Result statuses returned by every gateway implementation.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Broker-side transaction directions.
const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"
)

// Credentials carries one account's broker credentials into a placement call.
type Credentials struct {
	APIKey      string
	APISecret   string
	AccessToken string
}

// Result is the normalized outcome of a placement attempt. Both gateway
// modes return the identical shape: success with a broker order id, or an
// error with a diagnostic. A gateway never panics and never propagates a
// transport fault as anything other than an error Result.
type Result struct {
	Status        string `json:"status"`
	BrokerOrderID string `json:"broker_order_id,omitempty"`
	Error         string `json:"error,omitempty"`
	Raw           string `json:"raw,omitempty"`
}

// Gateway places market orders with the external brokerage.
type Gateway interface {
	PlaceOrder(ctx context.Context, creds Credentials, symbol string, quantity int64, side string) Result
}

func errorResult(format string, args ...interface{}) Result {
	return Result{
		Status: StatusError,
		Error:  fmt.Sprintf(format, args...),
	}
}

// normalizeSide maps a case-insensitive buy/sell side to the broker's
// transaction direction. Anything else is rejected before any external
// call is attempted.
func normalizeSide(side string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(side)) {
	case TransactionBuy:
		return TransactionBuy, nil
	case TransactionSell:
		return TransactionSell, nil
	}
	return "", fmt.Errorf("side must be buy or sell, got %q", side)
}
