package collector

import (
	"context"
	"time"

	"TickerScope/internal/model"
)

// Fetcher retrieves raw price datasets from a market-data provider.
// Implementations return datasets in whatever column shape the
// provider uses; normalization happens in the Collector.
type Fetcher interface {
	// FetchDaily returns daily bars for symbol between start and end.
	// The end date is passed through to the provider unchanged; most
	// providers treat it as exclusive.
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) (model.RawDataset, error)
	Name() string
}
