package normalize

import (
	"errors"
	"testing"
	"time"

	"TickerScope/internal/model"
)

func columns(labels ...string) []model.RawColumn {
	cols := make([]model.RawColumn, len(labels))
	for i, l := range labels {
		cols[i] = model.ParseColumnLabel(l)
	}
	return cols
}

func TestTable_SingleTickerDownload(t *testing.T) {
	day := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	raw := model.RawDataset{
		Dates:     []time.Time{day},
		DateLabel: "Date",
		Columns:   columns("Open_AAPL", "High_AAPL", "Low_AAPL", "Close_AAPL", "Volume_AAPL"),
		Rows:      [][]float64{{130.0, 132.0, 129.0, 131.0, 1000000}},
	}

	table, err := Table(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table))
	}
	r := table[0]
	if !r.TradeDate.Equal(day) {
		t.Errorf("expected trade date %s, got %s", day, r.TradeDate)
	}
	if r.Open != 130 || r.High != 132 || r.Low != 129 || r.Close != 131 || r.Volume != 1000000 {
		t.Errorf("unexpected row values: %+v", r)
	}
}

func TestTable_EmptyDataset(t *testing.T) {
	if _, err := Table(model.RawDataset{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	noRows := model.RawDataset{
		Dates:     nil,
		DateLabel: "Date",
		Columns:   columns("Open", "High", "Low", "Close", "Volume"),
	}
	if _, err := Table(noRows); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for empty rows, got %v", err)
	}
}

func TestTable_MissingColumn(t *testing.T) {
	raw := model.RawDataset{
		Dates:     []time.Time{time.Now()},
		DateLabel: "Date",
		Columns:   columns("Open", "High", "Low", "Close"), // no Volume
		Rows:      [][]float64{{1, 2, 0.5, 1.5}},
	}
	if _, err := Table(raw); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestTable_UnknownDateLabel(t *testing.T) {
	raw := model.RawDataset{
		Dates:     []time.Time{time.Now()},
		DateLabel: "Datum",
		Columns:   columns("Open", "High", "Low", "Close", "Volume"),
		Rows:      [][]float64{{1, 2, 0.5, 1.5, 100}},
	}
	if _, err := Table(raw); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestTable_IndexLabelAccepted(t *testing.T) {
	raw := model.RawDataset{
		Dates:     []time.Time{time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
		DateLabel: "index",
		Columns:   columns("Open", "High", "Low", "Close", "Volume"),
		Rows:      [][]float64{{10, 11, 9, 10.5, 500}},
	}
	table, err := Table(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table) != 1 || table[0].Close != 10.5 {
		t.Fatalf("unexpected table: %+v", table)
	}
}

func TestTable_CompositeCollapsePreservesRowCount(t *testing.T) {
	const n = 25
	dates := make([]time.Time, n)
	rows := make([][]float64, n)
	for i := range dates {
		dates[i] = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		p := 100 + float64(i)
		rows[i] = []float64{p, p + 2, p - 1, p + 1, 1000 + float64(i)}
	}
	raw := model.RawDataset{
		Dates:     dates,
		DateLabel: "Date",
		Columns:   columns("Open_MSFT", "High_MSFT", "Low_MSFT", "Close_MSFT", "Volume_MSFT"),
		Rows:      rows,
	}
	table, err := Table(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table) != n {
		t.Fatalf("expected %d rows, got %d", n, len(table))
	}
	for i, r := range table {
		if !r.TradeDate.Equal(dates[i]) {
			t.Fatalf("row %d: order not preserved", i)
		}
	}
}

func rawFromTable(table model.PriceTable) model.RawDataset {
	dates := make([]time.Time, len(table))
	rows := make([][]float64, len(table))
	for i, r := range table {
		dates[i] = r.TradeDate
		rows[i] = []float64{r.Open, r.High, r.Low, r.Close, r.Volume}
	}
	return model.RawDataset{
		Dates:     dates,
		DateLabel: "TradeDate",
		Columns:   columns("Open", "High", "Low", "Close", "Volume"),
		Rows:      rows,
	}
}

func TestTable_IdempotentOnCanonicalInput(t *testing.T) {
	raw := model.RawDataset{
		Dates: []time.Time{
			time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC),
		},
		DateLabel: "Date",
		Columns:   columns("Open", "High", "Low", "Close", "Volume"),
		Rows: [][]float64{
			{130, 132, 129, 131, 1000000},
			{131, 133, 130, 132, 900000},
		},
	}
	first, err := Table(raw)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := Table(rawFromTable(first))
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("row count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("row %d changed on second pass: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestTable_DuplicateFieldsAfterCollapse(t *testing.T) {
	raw := model.RawDataset{
		Dates:     []time.Time{time.Now()},
		DateLabel: "Date",
		Columns:   columns("Open_AAPL", "Open_MSFT", "High_AAPL", "Low_AAPL", "Close_AAPL", "Volume_AAPL"),
		Rows:      [][]float64{{1, 2, 3, 4, 5, 6}},
	}
	if _, err := Table(raw); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for duplicate fields, got %v", err)
	}
}

func TestTable_MalformedMatrix(t *testing.T) {
	ragged := model.RawDataset{
		Dates:     []time.Time{time.Now(), time.Now()},
		DateLabel: "Date",
		Columns:   columns("Open", "High", "Low", "Close", "Volume"),
		Rows: [][]float64{
			{1, 2, 0.5, 1.5, 100},
			{1, 2, 0.5}, // short row
		},
	}
	if _, err := Table(ragged); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for ragged rows, got %v", err)
	}

	mismatch := model.RawDataset{
		Dates:     []time.Time{time.Now()},
		DateLabel: "Date",
		Columns:   columns("Open", "High", "Low", "Close", "Volume"),
		Rows: [][]float64{
			{1, 2, 0.5, 1.5, 100},
			{1, 2, 0.5, 1.5, 100},
		},
	}
	if _, err := Table(mismatch); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for date/row mismatch, got %v", err)
	}
}

func TestTable_ExtraColumnsIgnored(t *testing.T) {
	raw := model.RawDataset{
		Dates:     []time.Time{time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)},
		DateLabel: "Date",
		Columns:   columns("Open", "High", "Low", "Close", "Adj Close", "Volume"),
		Rows:      [][]float64{{130, 132, 129, 131, 130.8, 1000000}},
	}
	table, err := Table(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table[0].Close != 131 {
		t.Errorf("expected close 131, got %.2f", table[0].Close)
	}
}
