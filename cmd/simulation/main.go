package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ksred/tradecron-api/internal/orders"
)

const (
	minOrders     = 10
	maxOrders     = 50
	dueOffset     = 2 * time.Second
	pollTimeout   = 3 * time.Minute
	serverAddress = "http://localhost:8080"

	apiKey    = "test-api-key"
	apiSecret = "test-api-secret"
)

var (
	symbols = []string{"RELIANCE", "TCS", "INFY", "HDFCBANK", "SBIN"}
	sides   = []string{"buy", "sell"}
)

// init configures the logger for the simulation with pretty printing and timestamp
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// routeStats tracks performance statistics for an API endpoint
type routeStats struct {
	name       string
	durations  []time.Duration
	totalCalls int
	failures   int
}

// addDuration records a new duration measurement for the route
func (rs *routeStats) addDuration(d time.Duration) {
	rs.durations = append(rs.durations, d)
	rs.totalCalls++
}

// calculate computes performance statistics from recorded durations
func (rs *routeStats) calculate() (min, max, mean, p95 time.Duration) {
	if len(rs.durations) == 0 {
		return 0, 0, 0, 0
	}

	sort.Slice(rs.durations, func(i, j int) bool {
		return rs.durations[i] < rs.durations[j]
	})

	min = rs.durations[0]
	max = rs.durations[len(rs.durations)-1]

	var sum time.Duration
	for _, d := range rs.durations {
		sum += d
	}
	mean = sum / time.Duration(len(rs.durations))

	p95idx := int(math.Ceil(float64(len(rs.durations))*0.95)) - 1
	p95 = rs.durations[p95idx]

	return
}

// simulationClient handles HTTP communication with the scheduling API
type simulationClient struct {
	baseURL   string
	authToken string
	client    *http.Client
	stats     map[string]*routeStats
}

// newSimulationClient creates and authenticates a new simulation client
func newSimulationClient() (*simulationClient, error) {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	sc := &simulationClient{
		baseURL: serverAddress,
		client:  client,
		stats: map[string]*routeStats{
			"auth":     {name: "Authentication"},
			"accounts": {name: "List Accounts"},
			"create":   {name: "Schedule Order"},
			"get":      {name: "Get Order"},
			"logs":     {name: "List Executions"},
		},
	}

	token, err := sc.authenticate()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	sc.authToken = token

	return sc, nil
}

// authenticate performs API authentication and returns a JWT token
func (sc *simulationClient) authenticate() (string, error) {
	start := time.Now()
	defer func() {
		sc.stats["auth"].addDuration(time.Since(start))
	}()

	credentials := map[string]string{
		"api_key":    apiKey,
		"api_secret": apiSecret,
	}

	body, err := json.Marshal(credentials)
	if err != nil {
		return "", err
	}

	resp, err := sc.client.Post(
		fmt.Sprintf("%s/api/v1/auth/token", sc.baseURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("authentication failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Token string `json:"jwt_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	return result.Data.Token, nil
}

// do sends an authenticated request and decodes the response envelope into out
func (sc *simulationClient) do(method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, sc.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", sc.authToken))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := sc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	envelope := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// bootstrapAccountID finds the account id registered for the test credentials
func (sc *simulationClient) bootstrapAccountID() (string, error) {
	start := time.Now()
	defer func() {
		sc.stats["accounts"].addDuration(time.Since(start))
	}()

	var listed []struct {
		AccountID string `json:"account_id"`
		APIKey    string `json:"api_key"`
	}
	if err := sc.do("GET", "/api/v1/accounts", nil, &listed); err != nil {
		return "", err
	}

	for _, account := range listed {
		if account.APIKey == apiKey {
			return account.AccountID, nil
		}
	}
	return "", fmt.Errorf("bootstrap account not found")
}

// scheduleOrder submits a new scheduled order and returns its id
func (sc *simulationClient) scheduleOrder(accountID string, dueAt time.Time) (string, error) {
	start := time.Now()
	defer func() {
		sc.stats["create"].addDuration(time.Since(start))
	}()

	payload := map[string]interface{}{
		"account_id": accountID,
		"symbol":     symbols[rand.Intn(len(symbols))],
		"quantity":   int64(rand.Intn(100) + 1),
		"side":       sides[rand.Intn(len(sides))],
		"due_at":     dueAt.Format(time.RFC3339Nano),
	}

	var order orders.Order
	if err := sc.do("POST", "/api/v1/orders", payload, &order); err != nil {
		sc.stats["create"].failures++
		return "", err
	}
	return order.OrderID, nil
}

// getOrder retrieves the current state of an order
func (sc *simulationClient) getOrder(orderID string) (*orders.Order, error) {
	start := time.Now()
	defer func() {
		sc.stats["get"].addDuration(time.Since(start))
	}()

	var order orders.Order
	if err := sc.do("GET", "/api/v1/orders/"+orderID, nil, &order); err != nil {
		sc.stats["get"].failures++
		return nil, err
	}
	return &order, nil
}

// countExecutions fetches the execution log entries for one order
func (sc *simulationClient) countExecutions(orderID string) (int, error) {
	start := time.Now()
	defer func() {
		sc.stats["logs"].addDuration(time.Since(start))
	}()

	var logs []json.RawMessage
	if err := sc.do("GET", "/api/v1/executions?order_id="+orderID, nil, &logs); err != nil {
		sc.stats["logs"].failures++
		return 0, err
	}
	return len(logs), nil
}

// main drives an end-to-end run: schedule a batch of orders due shortly,
// wait for the background scheduler to place them, and report outcomes
func main() {
	sc, err := newSimulationClient()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create simulation client")
	}

	accountID, err := sc.bootstrapAccountID()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve bootstrap account")
	}

	numOrders := rand.Intn(maxOrders-minOrders+1) + minOrders
	dueAt := time.Now().UTC().Add(dueOffset)

	log.Info().
		Int("orders", numOrders).
		Time("due_at", dueAt).
		Msg("scheduling simulation batch")

	orderIDs := make([]string, 0, numOrders)
	for i := 0; i < numOrders; i++ {
		orderID, err := sc.scheduleOrder(accountID, dueAt)
		if err != nil {
			log.Error().Err(err).Msg("failed to schedule order")
			continue
		}
		orderIDs = append(orderIDs, orderID)
	}

	// Wait for the scheduler to claim and place every order
	completed := make(map[string]string)
	deadline := time.Now().Add(pollTimeout)
	for len(completed) < len(orderIDs) && time.Now().Before(deadline) {
		time.Sleep(2 * time.Second)

		for _, orderID := range orderIDs {
			if _, done := completed[orderID]; done {
				continue
			}
			order, err := sc.getOrder(orderID)
			if err != nil {
				log.Error().Err(err).Str("order_id", orderID).Msg("failed to fetch order")
				continue
			}
			if order.Terminal() {
				completed[orderID] = order.Status
			}
		}

		log.Info().
			Int("terminal", len(completed)).
			Int("total", len(orderIDs)).
			Msg("waiting for scheduler")
	}

	// Tally outcomes and verify the audit trail
	outcomes := make(map[string]int)
	missingLogs := 0
	for orderID, status := range completed {
		outcomes[status]++
		count, err := sc.countExecutions(orderID)
		if err != nil {
			continue
		}
		if count != 1 {
			missingLogs++
			log.Warn().Str("order_id", orderID).Int("log_entries", count).Msg("unexpected execution log count")
		}
	}

	log.Info().
		Int("scheduled", len(orderIDs)).
		Int("completed", outcomes[orders.StatusCompleted]).
		Int("failed", outcomes[orders.StatusFailed]).
		Int("unfinished", len(orderIDs)-len(completed)).
		Int("audit_mismatches", missingLogs).
		Msg("simulation finished")

	printStats(sc)
}

// printStats reports latency statistics for each route exercised
func printStats(sc *simulationClient) {
	for _, rs := range sc.stats {
		if rs.totalCalls == 0 {
			continue
		}
		min, max, mean, p95 := rs.calculate()
		log.Info().
			Str("route", rs.name).
			Int("calls", rs.totalCalls).
			Int("failures", rs.failures).
			Dur("min", min).
			Dur("max", max).
			Dur("mean", mean).
			Dur("p95", p95).
			Msg("route statistics")
	}
}
