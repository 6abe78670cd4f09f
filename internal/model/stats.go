package model

import "math"

// PriceFields lists the columns a StatSummary covers, in display order.
// TradeDate and Volume are excluded by contract.
var PriceFields = []string{"Open", "High", "Low", "Close"}

// StatNames lists the summary rows in display order, matching the
// layout of a describe-style table.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// FieldStats holds the descriptive statistics of one price column.
// Values are rounded to two decimals for display. The sample standard
// deviation of fewer than two observations is undefined and stored as
// NaN; renderers print it as null or "NaN" instead of a number.
type FieldStats struct {
	Count  float64
	Mean   float64
	Std    float64
	Min    float64
	Pct25  float64
	Median float64
	Pct75  float64
	Max    float64
}

// Value returns the statistic by its display name, NaN for unknown names.
func (f FieldStats) Value(stat string) float64 {
	switch stat {
	case "count":
		return f.Count
	case "mean":
		return f.Mean
	case "std":
		return f.Std
	case "min":
		return f.Min
	case "25%":
		return f.Pct25
	case "50%":
		return f.Median
	case "75%":
		return f.Pct75
	case "max":
		return f.Max
	}
	return math.NaN()
}

// StatSummary maps a price field name to its statistics. An empty map
// means the underlying table was empty.
type StatSummary map[string]FieldStats
