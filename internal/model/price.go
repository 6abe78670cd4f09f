package model

import "time"

// PriceRow is one canonical daily bar keyed by trade date.
type PriceRow struct {
	TradeDate time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// PriceTable holds normalized rows in the order the provider returned
// them. Renderers and summarizers consume it read-only; a refresh
// cycle always builds a fresh table.
type PriceTable []PriceRow

// CandlePoint is one candlestick tuple for chart rendering.
type CandlePoint struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// VolumePoint is one (date, volume) pair for chart rendering.
type VolumePoint struct {
	Date   time.Time
	Volume float64
}

// CandleSeries projects the table onto candlestick tuples. Column
// selection only; values pass through untouched.
func (t PriceTable) CandleSeries() []CandlePoint {
	series := make([]CandlePoint, len(t))
	for i, r := range t {
		series[i] = CandlePoint{
			Date:  r.TradeDate,
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
		}
	}
	return series
}

// VolumeSeries projects the table onto (date, volume) pairs.
func (t PriceTable) VolumeSeries() []VolumePoint {
	series := make([]VolumePoint, len(t))
	for i, r := range t {
		series[i] = VolumePoint{Date: r.TradeDate, Volume: r.Volume}
	}
	return series
}
