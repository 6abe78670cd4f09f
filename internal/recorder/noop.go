package recorder

import "TickerScope/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRefresh(_ *RefreshEvent) error                { return nil }
func (n *NoopRecorder) RecordPrices(_ string, _ model.PriceTable) error    { return nil }
func (n *NoopRecorder) Close() error                                       { return nil }
