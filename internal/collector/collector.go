package collector

import (
	"context"
	"fmt"
	"time"

	"TickerScope/internal/model"
	"TickerScope/internal/normalize"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	BasePrice float64
	Dataset   *model.RawDataset // overrides generated data when set
	Err       error
	Composite bool // emit "Open_<symbol>" style labels
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(_ context.Context, symbol string, start, end time.Time) (model.RawDataset, error) {
	if m.Err != nil {
		return model.RawDataset{}, m.Err
	}
	if m.Dataset != nil {
		return *m.Dataset, nil
	}
	return generateMockDataset(m.BasePrice, symbol, start, end, m.Composite), nil
}

// generateMockDataset produces a deterministic daily walk over the
// requested window, weekends excluded.
func generateMockDataset(basePrice float64, symbol string, start, end time.Time, composite bool) model.RawDataset {
	labels := []string{"Open", "High", "Low", "Close", "Volume"}
	if composite {
		for i, l := range labels {
			labels[i] = l + "_" + symbol
		}
	}
	ds := model.RawDataset{DateLabel: "Date"}
	for _, l := range labels {
		ds.Columns = append(ds.Columns, model.ParseColumnLabel(l))
	}

	if basePrice == 0 {
		basePrice = 100
	}
	i := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i%21-10)*0.002)
		ds.Dates = append(ds.Dates, d.UTC())
		ds.Rows = append(ds.Rows, []float64{
			p * 0.999,
			p * 1.005,
			p * 0.995,
			p,
			1000000 + float64(i%7)*50000,
		})
		i++
	}
	return ds
}

// Collector orchestrates data fetching and normalization. The raw
// provider payload never escapes this boundary: callers only ever see
// the canonical table or an error.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Collect fetches daily quotes for the window and normalizes them into
// the canonical table.
func (c *Collector) Collect(ctx context.Context, symbol string, start, end time.Time) (model.PriceTable, error) {
	raw, err := c.Fetcher.FetchDaily(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	table, err := normalize.Table(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", symbol, err)
	}
	return table, nil
}
