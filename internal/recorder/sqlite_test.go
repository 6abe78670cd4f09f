package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"TickerScope/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RecordRefresh(t *testing.T) {
	r := openTestRecorder(t)

	evt := &RefreshEvent{
		RefreshID: "11111111-2222-3333-4444-555555555555",
		Trigger:   "manual",
		Ticker:    "AAPL",
		StartDate: "2023-01-01",
		EndDate:   "2023-06-30",
		Source:    "yahoo",
		Outcome:   "ok",
		Rows:      124,
		Duration:  420 * time.Millisecond,
	}
	if err := r.RecordRefresh(evt); err != nil {
		t.Fatalf("record refresh: %v", err)
	}

	var outcome string
	var rows, durationMs int
	err := r.db.QueryRow(`SELECT outcome, rows, duration_ms FROM refresh_events WHERE ticker = ?`, "AAPL").
		Scan(&outcome, &rows, &durationMs)
	if err != nil {
		t.Fatalf("query back: %v", err)
	}
	if outcome != "ok" || rows != 124 || durationMs != 420 {
		t.Errorf("unexpected row: outcome=%q rows=%d duration=%d", outcome, rows, durationMs)
	}
}

func TestSQLiteRecorder_RecordPricesUpsert(t *testing.T) {
	r := openTestRecorder(t)
	date := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)

	table := model.PriceTable{
		{TradeDate: date, Open: 130, High: 132, Low: 129, Close: 131, Volume: 1e6},
		{TradeDate: date.AddDate(0, 0, 1), Open: 131, High: 133, Low: 130, Close: 132, Volume: 9e5},
	}
	if err := r.RecordPrices("AAPL", table); err != nil {
		t.Fatalf("record prices: %v", err)
	}

	// Second write covering the same dates must not duplicate.
	table[0].Close = 131.5
	if err := r.RecordPrices("AAPL", table); err != nil {
		t.Fatalf("re-record prices: %v", err)
	}

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM price_rows WHERE ticker = ?`, "AAPL").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows after upsert, got %d", count)
	}

	var gotClose float64
	if err := r.db.QueryRow(`SELECT close FROM price_rows WHERE ticker = ? AND trade_date = ?`,
		"AAPL", "2023-01-03").Scan(&gotClose); err != nil {
		t.Fatal(err)
	}
	if gotClose != 131.5 {
		t.Errorf("expected updated close 131.5, got %.2f", gotClose)
	}
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoopRecorder()
	if err := n.RecordRefresh(&RefreshEvent{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := n.RecordPrices("AAPL", nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
