package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSimGateway_Deterministic(t *testing.T) {
	g := NewSimGateway()
	ctx := context.Background()

	first := g.PlaceOrder(ctx, Credentials{}, "RELIANCE", 10, "buy")
	second := g.PlaceOrder(ctx, Credentials{}, "RELIANCE", 10, "buy")

	if first.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", first.Status, first.Error)
	}
	if first.BrokerOrderID != second.BrokerOrderID {
		t.Errorf("identical inputs produced different ids: %s vs %s", first.BrokerOrderID, second.BrokerOrderID)
	}
	if first.BrokerOrderID != "SIM-RELIANCE-BUY-10" {
		t.Errorf("unexpected confirmation id: %s", first.BrokerOrderID)
	}
}

func TestSimGateway_SideNormalization(t *testing.T) {
	g := NewSimGateway()
	ctx := context.Background()

	cases := []struct {
		side   string
		wantID string
	}{
		{"buy", "SIM-TCS-BUY-5"},
		{"BUY", "SIM-TCS-BUY-5"},
		{"Sell", "SIM-TCS-SELL-5"},
		{"sell", "SIM-TCS-SELL-5"},
	}

	for _, tc := range cases {
		result := g.PlaceOrder(ctx, Credentials{}, "TCS", 5, tc.side)
		if result.Status != StatusSuccess {
			t.Errorf("PlaceOrder side=%q: expected success, got %s", tc.side, result.Status)
			continue
		}
		if result.BrokerOrderID != tc.wantID {
			t.Errorf("PlaceOrder side=%q: id = %s, want %s", tc.side, result.BrokerOrderID, tc.wantID)
		}
	}
}

func TestSimGateway_RejectsInvalidInput(t *testing.T) {
	g := NewSimGateway()
	ctx := context.Background()

	if result := g.PlaceOrder(ctx, Credentials{}, "TCS", 5, "hold"); result.Status != StatusError {
		t.Errorf("expected error for invalid side, got %s", result.Status)
	}
	if result := g.PlaceOrder(ctx, Credentials{}, "TCS", 0, "buy"); result.Status != StatusError {
		t.Errorf("expected error for zero quantity, got %s", result.Status)
	}
}

func TestLiveGateway_Success(t *testing.T) {
	var gotAuth, gotSymbol, gotTx string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders/regular" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		gotAuth = r.Header.Get("Authorization")
		gotSymbol = r.FormValue("tradingsymbol")
		gotTx = r.FormValue("transaction_type")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"order_id":"240828000001"}}`))
	}))
	defer server.Close()

	g := NewLiveGateway(server.URL)
	creds := Credentials{APIKey: "key", APISecret: "secret", AccessToken: "token"}
	result := g.PlaceOrder(context.Background(), creds, "INFY", 3, "sell")

	if result.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.Error)
	}
	if result.BrokerOrderID != "240828000001" {
		t.Errorf("broker order id = %s, want 240828000001", result.BrokerOrderID)
	}
	if gotAuth != "token key:token" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotSymbol != "INFY" || gotTx != "SELL" {
		t.Errorf("order fields = %s/%s, want INFY/SELL", gotSymbol, gotTx)
	}
}

func TestLiveGateway_BrokerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"status":"error","message":"Insufficient funds"}`))
	}))
	defer server.Close()

	g := NewLiveGateway(server.URL)
	creds := Credentials{APIKey: "key", AccessToken: "token"}
	result := g.PlaceOrder(context.Background(), creds, "INFY", 3, "buy")

	if result.Status != StatusError {
		t.Fatalf("expected error result, got %s", result.Status)
	}
	if result.Error != "Insufficient funds" {
		t.Errorf("error = %q, want broker message", result.Error)
	}
}

func TestLiveGateway_MissingToken(t *testing.T) {
	g := NewLiveGateway("http://example.invalid")
	result := g.PlaceOrder(context.Background(), Credentials{APIKey: "key"}, "INFY", 3, "buy")

	if result.Status != StatusError {
		t.Fatalf("expected error result, got %s", result.Status)
	}
}

func TestLiveGateway_TransportError(t *testing.T) {
	// Closed server: the connection is refused
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	g := NewLiveGateway(server.URL)
	creds := Credentials{APIKey: "key", AccessToken: "token"}
	result := g.PlaceOrder(context.Background(), creds, "INFY", 3, "buy")

	if result.Status != StatusError {
		t.Fatalf("expected error result for transport failure, got %s", result.Status)
	}
}

func TestNewGateway_ModeSelection(t *testing.T) {
	if _, ok := NewGateway(false, "").(*SimGateway); !ok {
		t.Error("expected sim gateway when live mode disabled")
	}
	if _, ok := NewGateway(true, "http://example.invalid").(*LiveGateway); !ok {
		t.Error("expected live gateway when live mode enabled")
	}
}
