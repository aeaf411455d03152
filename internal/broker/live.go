package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// placeOrderTimeout caps a single placement call so a hung broker
// connection cannot hold a scheduler worker indefinitely.
const placeOrderTimeout = 15 * time.Second

// LiveGateway places real market orders through the brokerage REST API.
type LiveGateway struct {
	baseURL string
	client  *http.Client
}

func NewLiveGateway(baseURL string) *LiveGateway {
	return &LiveGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: placeOrderTimeout,
		},
	}
}

// brokerOrderResponse is the broker's envelope for a placement call.
type brokerOrderResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		OrderID string `json:"order_id"`
	} `json:"data"`
}

// PlaceOrder submits a regular CNC market order. Every failure mode, from
// transport errors to broker rejections, is converted into an error Result.
func (g *LiveGateway) PlaceOrder(ctx context.Context, creds Credentials, symbol string, quantity int64, side string) Result {
	tx, err := normalizeSide(side)
	if err != nil {
		return errorResult("%s", err.Error())
	}
	if quantity <= 0 {
		return errorResult("quantity must be positive, got %d", quantity)
	}
	if creds.AccessToken == "" {
		return errorResult("account has no access token")
	}

	logger := log.With().
		Str("component", "live_gateway").
		Str("symbol", symbol).
		Str("transaction_type", tx).
		Int64("quantity", quantity).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, placeOrderTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("tradingsymbol", symbol)
	form.Set("exchange", "NSE")
	form.Set("transaction_type", tx)
	form.Set("quantity", strconv.FormatInt(quantity, 10))
	form.Set("order_type", "MARKET")
	form.Set("product", "CNC")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/orders/regular", strings.NewReader(form.Encode()))
	if err != nil {
		return errorResult("building order request: %s", err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Kite-Version", "3")
	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", creds.APIKey, creds.AccessToken))

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("broker request failed")
		return errorResult("broker request failed: %s", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResult("reading broker response: %s", err.Error())
	}

	var parsed brokerOrderResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errorResult("unexpected broker response: %s", err.Error())
	}

	if resp.StatusCode != http.StatusOK || parsed.Status != "success" {
		message := parsed.Message
		if message == "" {
			message = fmt.Sprintf("broker returned HTTP %d", resp.StatusCode)
		}
		logger.Warn().Int("http_status", resp.StatusCode).Str("message", message).Msg("broker rejected order")
		return Result{
			Status: StatusError,
			Error:  message,
			Raw:    string(body),
		}
	}

	logger.Info().Str("broker_order_id", parsed.Data.OrderID).Msg("order placed with broker")

	return Result{
		Status:        StatusSuccess,
		BrokerOrderID: parsed.Data.OrderID,
		Raw:           string(body),
	}
}

// NewGateway selects the gateway mode from configuration. Live mode is
// opt-in; the default is the deterministic simulation.
func NewGateway(enableLive bool, baseURL string) Gateway {
	if enableLive {
		return NewLiveGateway(baseURL)
	}
	return NewSimGateway()
}
