package recorder

import (
	"time"

	"TickerScope/internal/model"
)

// RefreshEvent holds the outcome of one refresh cycle.
type RefreshEvent struct {
	RefreshID string
	Trigger   string // "startup", "manual" or "scheduled"
	Ticker    string
	StartDate string
	EndDate   string
	Source    string
	Outcome   string // "ok" or "error"
	Error     string
	Rows      int
	Duration  time.Duration
}

// Recorder persists refresh history and fetched prices for analysis.
type Recorder interface {
	RecordRefresh(evt *RefreshEvent) error
	RecordPrices(ticker string, table model.PriceTable) error
	Close() error
}
