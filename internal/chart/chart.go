// Package chart builds the dashboard's candlestick and volume charts
// as self-contained ECharts HTML documents.
package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"TickerScope/internal/model"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorBull          = "#34d399"
	colorBear          = "#f87171"
	colorVolume        = "#3498db"

	chartWidthPx   = 1180
	klineHeightPx  = 480
	volumeHeightPx = 260
)

// Candlestick builds the daily OHLC chart. An empty table yields an
// empty chart, never an error.
func Candlestick(ticker string, table model.PriceTable) *charts.Kline {
	kline := charts.NewKLine()

	minPrice, maxPrice := priceBounds(table)
	padding := (maxPrice - minPrice) * 0.05
	if padding <= 0 {
		padding = math.Max(1, math.Abs(maxPrice)*0.01)
	}
	minAxis := round(minPrice-padding, 2)
	maxAxis := round(maxPrice+padding, 2)

	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", klineHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      strings.ToUpper(ticker),
			Subtitle:   "Daily OHLC",
			Left:       "left",
			Top:        "10",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{
				Color: colorTextSecondary,
			},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			Min:       minAxis,
			Max:       maxAxis,
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	kline.SetSeriesOptions(
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        colorBull,
			Color0:       colorBear,
			BorderColor:  colorBull,
			BorderColor0: colorBear,
		}),
	)

	data := make([]opts.KlineData, 0, len(table))
	for _, p := range table.CandleSeries() {
		data = append(data, opts.KlineData{Value: [4]float64{p.Open, p.Close, p.Low, p.High}})
	}
	kline.SetXAxis(xAxisLabels(table))
	kline.AddSeries("Price", data)
	return kline
}

// Volume builds the daily volume bars. The series consumes only the
// (date, volume) projection, so every bar carries one uniform color.
func Volume(ticker string, table model.PriceTable) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", volumeHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      fmt.Sprintf("%s Volume", strings.ToUpper(ticker)),
			Left:       "left",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			SplitNumber: 6,
			AxisLabel:   &opts.AxisLabel{Color: colorTextSecondary},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.15)}},
		}),
	)

	points := table.VolumeSeries()
	vols := make([]opts.BarData, len(points))
	for i, p := range points {
		vols[i] = opts.BarData{
			Value: p.Volume,
			ItemStyle: &opts.ItemStyle{
				Color:   colorVolume,
				Opacity: opts.Float(0.8),
			},
		}
	}
	bar.SetXAxis(xAxisLabels(table))
	bar.AddSeries("Volume", vols)
	return bar
}

// Page lays both charts out on one flex page, used for PNG snapshots.
func Page(ticker string, table model.PriceTable) *components.Page {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(Candlestick(ticker, table), Volume(ticker, table))
	return page
}

// RenderCandlestick writes the candlestick chart document to w.
func RenderCandlestick(w io.Writer, ticker string, table model.PriceTable) error {
	return Candlestick(ticker, table).Render(w)
}

// RenderVolume writes the volume chart document to w.
func RenderVolume(w io.Writer, ticker string, table model.PriceTable) error {
	return Volume(ticker, table).Render(w)
}

func xAxisLabels(table model.PriceTable) []string {
	x := make([]string, len(table))
	for i, row := range table {
		x[i] = row.TradeDate.Format("2006-01-02")
	}
	return x
}

func priceBounds(table model.PriceTable) (minVal, maxVal float64) {
	if len(table) == 0 {
		return 0, 0
	}
	minVal = table[0].Low
	maxVal = table[0].High
	for _, row := range table {
		if row.Low < minVal {
			minVal = row.Low
		}
		if row.High > maxVal {
			maxVal = row.High
		}
	}
	return minVal, maxVal
}

func round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}
