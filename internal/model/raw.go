package model

import (
	"strings"
	"time"
)

// ColumnKind tags how a provider labelled a value column.
type ColumnKind int

const (
	// ColumnSimple is a plain field name such as "Open".
	ColumnSimple ColumnKind = iota
	// ColumnComposite is a field joined with a ticker, such as "Open_AAPL".
	ColumnComposite
)

// compositeSep joins field and ticker in composite column labels.
const compositeSep = "_"

// RawColumn is one value column of a provider response. Labels are
// classified once at the fetch boundary; downstream code switches on
// Kind instead of re-parsing label strings.
type RawColumn struct {
	Kind   ColumnKind
	Label  string // label exactly as the provider sent it
	Field  string // field part of a composite label; empty for simple columns
	Ticker string // ticker part of a composite label; empty for simple columns
}

// ParseColumnLabel classifies a provider column label. Everything
// before the first separator is the field, everything after it the
// ticker, so "Close_BRK_B" yields field "Close" and ticker "BRK_B".
func ParseColumnLabel(label string) RawColumn {
	if i := strings.Index(label, compositeSep); i >= 0 {
		return RawColumn{
			Kind:   ColumnComposite,
			Label:  label,
			Field:  label[:i],
			Ticker: label[i+len(compositeSep):],
		}
	}
	return RawColumn{Kind: ColumnSimple, Label: label}
}

// RawDataset is a provider response before normalization. Dates travel
// separately from the value matrix; DateLabel records how the provider
// named them ("Date" for a real date column, "index" when a bare row
// index was exported, "TradeDate" when already canonical).
type RawDataset struct {
	Dates     []time.Time
	DateLabel string
	Columns   []RawColumn
	Rows      [][]float64 // row-major, aligned with Columns
}

// Empty reports whether the dataset carries no usable rows.
func (d RawDataset) Empty() bool {
	return len(d.Rows) == 0 || len(d.Dates) == 0
}
