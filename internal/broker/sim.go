package broker

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// SimGateway simulates order placement when no live brokerage connectivity
// is configured. Confirmation identifiers are derived from the order inputs
// so identical inputs always produce the same id.
type SimGateway struct{}

func NewSimGateway() *SimGateway {
	return &SimGateway{}
}

func (g *SimGateway) PlaceOrder(_ context.Context, _ Credentials, symbol string, quantity int64, side string) Result {
	tx, err := normalizeSide(side)
	if err != nil {
		return errorResult("%s", err.Error())
	}
	if quantity <= 0 {
		return errorResult("quantity must be positive, got %d", quantity)
	}

	log.Info().
		Str("component", "sim_gateway").
		Str("symbol", symbol).
		Str("transaction_type", tx).
		Int64("quantity", quantity).
		Msg("simulating market order")

	return Result{
		Status:        StatusSuccess,
		BrokerOrderID: fmt.Sprintf("SIM-%s-%s-%d", strings.ToUpper(symbol), tx, quantity),
		Raw:           `{"simulated":true}`,
	}
}
