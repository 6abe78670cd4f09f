// Package normalize converts raw provider datasets into the canonical
// six-column price table consumed by every downstream component.
package normalize

import (
	"errors"

	"TickerScope/internal/model"
)

// ErrNoData marks datasets that cannot yield a canonical table: empty
// responses, unrecognized date labels, missing price columns, or a
// malformed value matrix. Callers translate it into a user-facing
// loading message; the raw cause never reaches the browser.
var ErrNoData = errors.New("no usable price data")

// requiredFields are the value columns every canonical table carries,
// alongside the TradeDate column resolved from the dataset's date label.
var requiredFields = [...]string{"Open", "High", "Low", "Close", "Volume"}

// Table builds a canonical price table from a raw provider dataset.
//
// Composite column labels collapse to their field part, so "Open_AAPL"
// becomes "Open". The date column maps onto TradeDate whether the
// provider called it "Date", exported the row index as "index", or
// already used the canonical name, which also makes the function
// idempotent on canonical input. Anything that cannot produce all six
// canonical columns, including duplicate fields after collapsing and
// rows that do not line up with the column set, returns ErrNoData.
// Row count and row order are preserved.
func Table(raw model.RawDataset) (model.PriceTable, error) {
	if raw.Empty() {
		return nil, ErrNoData
	}
	switch raw.DateLabel {
	case "Date", "index", "TradeDate":
	default:
		return nil, ErrNoData
	}
	if len(raw.Dates) != len(raw.Rows) {
		return nil, ErrNoData
	}

	fieldAt := make(map[string]int, len(raw.Columns))
	for i, col := range raw.Columns {
		var name string
		switch col.Kind {
		case model.ColumnComposite:
			name = col.Field
		default:
			name = col.Label
		}
		if _, dup := fieldAt[name]; dup {
			return nil, ErrNoData
		}
		fieldAt[name] = i
	}
	for _, f := range requiredFields {
		if _, ok := fieldAt[f]; !ok {
			return nil, ErrNoData
		}
	}

	table := make(model.PriceTable, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		if len(row) != len(raw.Columns) {
			return nil, ErrNoData
		}
		table = append(table, model.PriceRow{
			TradeDate: raw.Dates[i],
			Open:      row[fieldAt["Open"]],
			High:      row[fieldAt["High"]],
			Low:       row[fieldAt["Low"]],
			Close:     row[fieldAt["Close"]],
			Volume:    row[fieldAt["Volume"]],
		})
	}
	return table, nil
}
