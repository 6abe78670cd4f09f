package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"TickerScope/internal/model"
)

// TableFetcher implements Fetcher against JSON table endpoints that
// return one object per trading day. Column names are taken from the
// payload as-is, so both plain ("Open") and per-ticker composite
// ("Open_AAPL") layouts pass through to normalization untouched.
type TableFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewTableFetcher creates a fetcher for a JSON table endpoint.
func NewTableFetcher(baseURL, apiKey string) *TableFetcher {
	return &TableFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *TableFetcher) Name() string { return "table" }

// FetchDaily requests the daily history window and decodes the JSON
// table into a raw dataset.
func (f *TableFetcher) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (model.RawDataset, error) {
	u := fmt.Sprintf("%s/api/v1/history?symbol=%s&start=%s&end=%s",
		f.BaseURL, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.RawDataset{}, err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.RawDataset{}, fmt.Errorf("table fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.RawDataset{}, fmt.Errorf("table read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.RawDataset{}, fmt.Errorf("table: status %d, body: %s", resp.StatusCode, string(body))
	}

	return parseRecords(body)
}

// dateKeys are the record keys recognized as the date column. Only the
// labels the normalizer resolves are accepted; the spelling is kept as
// the dataset's date label.
var dateKeys = map[string]bool{
	"Date":      true,
	"index":     true,
	"TradeDate": true,
}

// parseRecords decodes a JSON array of row objects (either bare or
// wrapped under "data") into a raw dataset. Column order is fixed by
// the first record; records missing a column are skipped.
func parseRecords(body []byte) (model.RawDataset, error) {
	if !gjson.ValidBytes(body) {
		return model.RawDataset{}, fmt.Errorf("table: invalid JSON")
	}

	root := gjson.ParseBytes(body)
	records := root
	if root.IsObject() {
		records = root.Get("data")
	}
	if !records.IsArray() {
		return model.RawDataset{}, fmt.Errorf("table: expected array of records")
	}

	var ds model.RawDataset
	records.ForEach(func(_, rec gjson.Result) bool {
		if !rec.IsObject() {
			return true
		}
		if len(ds.Columns) == 0 && ds.DateLabel == "" {
			// First record fixes the date label and column order.
			rec.ForEach(func(key, _ gjson.Result) bool {
				if dateKeys[key.String()] && ds.DateLabel == "" {
					ds.DateLabel = key.String()
					return true
				}
				ds.Columns = append(ds.Columns, model.ParseColumnLabel(key.String()))
				return true
			})
		}
		if ds.DateLabel == "" {
			return true
		}

		fields := rec.Map()
		dateVal, ok := fields[ds.DateLabel]
		if !ok {
			return true
		}
		date, err := parseRecordDate(dateVal)
		if err != nil {
			return true
		}

		row := make([]float64, len(ds.Columns))
		for i, col := range ds.Columns {
			v, ok := fields[col.Label]
			if !ok {
				return true // ragged record, drop it
			}
			row[i] = v.Float()
		}
		ds.Dates = append(ds.Dates, date)
		ds.Rows = append(ds.Rows, row)
		return true
	})

	if ds.Empty() {
		return model.RawDataset{}, fmt.Errorf("table: no data returned")
	}
	return ds, nil
}

// parseRecordDate accepts unix seconds, unix milliseconds, ISO dates
// and RFC3339 timestamps.
func parseRecordDate(v gjson.Result) (time.Time, error) {
	if v.Type == gjson.Number {
		n := v.Int()
		if n > 1e12 { // past the year 33658 in seconds, must be millis
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	s := v.String()
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
