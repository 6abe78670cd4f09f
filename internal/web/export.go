package web

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"TickerScope/internal/logger"
	"TickerScope/internal/model"
	"TickerScope/internal/state"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport streams the current table and statistics as a workbook.
func (s *Server) handleExport(c *gin.Context) {
	snap := s.store.Current()
	f, err := buildWorkbook(snap)
	if err != nil {
		logger.Errorf("build workbook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	name := fmt.Sprintf("tickerscope_%s_%s_%s.xlsx", snap.Ticker, snap.StartDate, snap.EndDate)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		logger.Errorf("write workbook: %v", err)
	}
}

// buildWorkbook lays out two sheets: Prices mirrors the table,
// Statistics mirrors the summary grid shown on the dashboard.
func buildWorkbook(snap state.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	const prices = "Prices"
	f.SetSheetName(f.GetSheetName(0), prices)
	header := []string{"TradeDate", "Open", "High", "Low", "Close", "Volume"}
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(prices, cell, h)
	}
	for i, row := range snap.Table {
		values := []interface{}{
			row.TradeDate.Format("2006-01-02"),
			row.Open, row.High, row.Low, row.Close, row.Volume,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(prices, cell, v)
		}
	}

	const statistics = "Statistics"
	if _, err := f.NewSheet(statistics); err != nil {
		return nil, err
	}
	for i, field := range model.PriceFields {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(statistics, cell, field)
	}
	for i, stat := range model.StatNames {
		nameCell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(statistics, nameCell, stat)
		for j, field := range model.PriceFields {
			fs, ok := snap.Stats[field]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+2, i+2)
			if err != nil {
				return nil, err
			}
			if v := fs.Value(stat); math.IsNaN(v) {
				f.SetCellValue(statistics, cell, "NaN")
			} else {
				f.SetCellValue(statistics, cell, v)
			}
		}
	}
	return f, nil
}
