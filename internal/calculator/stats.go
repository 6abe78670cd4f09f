// Package calculator derives descriptive statistics from canonical
// price tables.
package calculator

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"TickerScope/internal/model"
)

// Summarize computes a describe-style summary over the four price
// columns: count, mean, sample standard deviation, min, the three
// quartiles, and max. TradeDate and Volume are excluded by contract.
// Every value is rounded to two decimals for display; the std of fewer
// than two rows stays NaN. An empty table yields an empty summary.
func Summarize(table model.PriceTable) model.StatSummary {
	summary := make(model.StatSummary, len(model.PriceFields))
	if len(table) == 0 {
		return summary
	}
	for _, field := range model.PriceFields {
		summary[field] = fieldStats(extractField(table, field))
	}
	return summary
}

func extractField(table model.PriceTable, field string) []float64 {
	vals := make([]float64, len(table))
	for i, r := range table {
		switch field {
		case "Open":
			vals[i] = r.Open
		case "High":
			vals[i] = r.High
		case "Low":
			vals[i] = r.Low
		case "Close":
			vals[i] = r.Close
		}
	}
	return vals
}

func fieldStats(vals []float64) model.FieldStats {
	n := len(vals)

	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(n)

	std := math.NaN()
	if n > 1 {
		ss := 0.0
		for _, v := range vals {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(n-1))
	}

	sorted := make([]float64, n)
	copy(sorted, vals)
	sort.Float64s(sorted)

	return model.FieldStats{
		Count:  round2(float64(n)),
		Mean:   round2(mean),
		Std:    round2(std),
		Min:    round2(sorted[0]),
		Pct25:  round2(quantile(sorted, 0.25)),
		Median: round2(quantile(sorted, 0.50)),
		Pct75:  round2(quantile(sorted, 0.75)),
		Max:    round2(sorted[n-1]),
	}
}

// round2 rounds to exactly two decimal places. NaN passes through so
// undefined statistics stay recognizable downstream.
func round2(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
