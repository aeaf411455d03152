package execlog

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&ExecutionLog{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return NewDatabase(db)
}

func seedLogs(t *testing.T, d *Database) {
	t.Helper()

	entries := []struct {
		orderID, accountID, status, message string
	}{
		{"order-1", "acct-1", "completed", `{"status":"success","broker_order_id":"SIM-TCS-BUY-5"}`},
		{"order-2", "acct-1", "failed", `{"status":"error","error":"Insufficient funds"}`},
		{"order-3", "acct-2", "completed", `{"status":"success","broker_order_id":"SIM-INFY-SELL-2"}`},
		{"order-4", "acct-2", "failed", "account acct-2 not found"},
	}
	for _, e := range entries {
		if err := d.Record(e.orderID, e.accountID, e.status, e.message); err != nil {
			t.Fatalf("failed to record log entry: %v", err)
		}
	}
}

func TestListLogs_NewestFirst(t *testing.T) {
	d := setupTestDB(t)
	seedLogs(t, d)

	logs, err := d.ListLogs(ListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(logs) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(logs))
	}
	if logs[0].OrderID != "order-4" || logs[3].OrderID != "order-1" {
		t.Errorf("expected reverse-chronological order, got first=%s last=%s", logs[0].OrderID, logs[3].OrderID)
	}
}

func TestListLogs_Filters(t *testing.T) {
	d := setupTestDB(t)
	seedLogs(t, d)

	cases := []struct {
		name   string
		filter ListFilter
		want   int
	}{
		{"by account", ListFilter{AccountID: "acct-1"}, 2},
		{"by order", ListFilter{OrderID: "order-3"}, 1},
		{"by status substring", ListFilter{Status: "fail"}, 2},
		{"by message substring", ListFilter{Message: "not found"}, 1},
		{"combined", ListFilter{AccountID: "acct-2", Status: "completed"}, 1},
		{"no match", ListFilter{AccountID: "acct-9"}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logs, err := d.ListLogs(tc.filter)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(logs) != tc.want {
				t.Errorf("got %d entries, want %d", len(logs), tc.want)
			}
		})
	}
}

func TestListLogs_Paging(t *testing.T) {
	d := setupTestDB(t)
	seedLogs(t, d)

	first, err := d.ListLogs(ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	second, err := d.ListLogs(ListFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected two pages of 2, got %d and %d", len(first), len(second))
	}

	seen := map[string]bool{}
	for _, entry := range append(first, second...) {
		if seen[entry.LogID] {
			t.Errorf("entry %s appeared on both pages", entry.LogID)
		}
		seen[entry.LogID] = true
	}
}

func TestCountByOrder(t *testing.T) {
	d := setupTestDB(t)
	seedLogs(t, d)

	count, err := d.CountByOrder("order-1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 entry for order-1, got %d", count)
	}
}
