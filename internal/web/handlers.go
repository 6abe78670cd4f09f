package web

import (
	"bytes"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"TickerScope/internal/chart"
	"TickerScope/internal/logger"
	"TickerScope/internal/model"
	"TickerScope/internal/state"
)

// renderSnapshot is swappable in tests; rasterizing needs a browser.
var renderSnapshot = chart.RenderPNG

func (s *Server) handleIndex(c *gin.Context) {
	snap := s.store.Current()
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Ticker":         snap.Ticker,
		"StartDate":      snap.StartDate,
		"EndDate":        snap.EndDate,
		"Watchlist":      snap.Watchlist,
		"Message":        snap.Message,
		"HasData":        snap.HasData(),
		"Rows":           len(snap.Table),
		"StatFields":     model.PriceFields,
		"StatRows":       statRows(snap.Stats),
		"Source":         snap.Source,
		"RefreshID":      snap.RefreshID,
		"LastRefresh":    lastRefreshLabel(snap.LastRefresh),
		"PageRefreshSec": s.pageRefreshSec,
		"MinDate":        s.minDate,
		"MaxDate":        time.Now().Format("2006-01-02"),
	})
}

// handleRefresh applies the submitted controls and runs one cycle.
// Validation happens inside the cycle so the outcome always lands on
// the snapshot's message line.
func (s *Server) handleRefresh(c *gin.Context) {
	ticker := strings.TrimSpace(c.PostForm("ticker"))
	start := strings.TrimSpace(c.PostForm("start_date"))
	end := strings.TrimSpace(c.PostForm("end_date"))

	s.store.Apply(func(cur state.Snapshot) state.Snapshot {
		cur.Ticker = ticker
		cur.StartDate = start
		cur.EndDate = end
		return cur
	})
	s.refresher.RunRefresh("manual")
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handlePriceChart(c *gin.Context) {
	snap := s.store.Current()
	var buf bytes.Buffer
	if err := chart.RenderCandlestick(&buf, snap.Ticker, snap.Table); err != nil {
		s.renderError(c, "price chart", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleVolumeChart(c *gin.Context) {
	snap := s.store.Current()
	var buf bytes.Buffer
	if err := chart.RenderVolume(&buf, snap.Ticker, snap.Table); err != nil {
		s.renderError(c, "volume chart", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// renderError degrades a failed chart into an inline message. The
// dashboard itself stays up.
func (s *Server) renderError(c *gin.Context, what string, err error) {
	logger.Errorf("render %s: %v", what, err)
	if s.monitor != nil {
		s.monitor.RecordRenderError()
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8",
		[]byte(`<p style="color:red;font-weight:bold;font-family:Arial">Error: failed to render `+what+`</p>`))
}

func (s *Server) handleState(c *gin.Context) {
	snap := s.store.Current()
	payload := gin.H{
		"ticker":     snap.Ticker,
		"start_date": snap.StartDate,
		"end_date":   snap.EndDate,
		"watchlist":  snap.Watchlist,
		"rows":       len(snap.Table),
		"message":    snap.Message,
		"source":     snap.Source,
		"refresh_id": snap.RefreshID,
	}
	if !snap.LastRefresh.IsZero() {
		payload["last_refresh"] = snap.LastRefresh.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleTable(c *gin.Context) {
	snap := s.store.Current()
	rows := make([]gin.H, 0, len(snap.Table))
	for _, r := range snap.Table {
		rows = append(rows, gin.H{
			"TradeDate": r.TradeDate.Format("2006-01-02"),
			"Open":      r.Open,
			"High":      r.High,
			"Low":       r.Low,
			"Close":     r.Close,
			"Volume":    r.Volume,
		})
	}
	c.JSON(http.StatusOK, gin.H{"ticker": snap.Ticker, "rows": rows})
}

func (s *Server) handleStats(c *gin.Context) {
	snap := s.store.Current()
	fields := gin.H{}
	for _, f := range model.PriceFields {
		fs, ok := snap.Stats[f]
		if !ok {
			continue
		}
		entry := gin.H{}
		for _, stat := range model.StatNames {
			entry[stat] = jsonNumber(fs.Value(stat))
		}
		fields[f] = entry
	}
	c.JSON(http.StatusOK, gin.H{"ticker": snap.Ticker, "stats": fields})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	snap := s.store.Current()
	png, err := renderSnapshot(c.Request.Context(), snap.Ticker, snap.Table)
	if err != nil {
		logger.Errorf("render snapshot: %v", err)
		if s.monitor != nil {
			s.monitor.RecordRenderError()
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// statRow is one line of the statistics table, cells ordered like
// StatFields.
type statRow struct {
	Name  string
	Cells []string
}

func statRows(stats model.StatSummary) []statRow {
	if len(stats) == 0 {
		return nil
	}
	rows := make([]statRow, 0, len(model.StatNames))
	for _, stat := range model.StatNames {
		row := statRow{Name: stat, Cells: make([]string, 0, len(model.PriceFields))}
		for _, f := range model.PriceFields {
			row.Cells = append(row.Cells, formatStat(stats[f].Value(stat)))
		}
		rows = append(rows, row)
	}
	return rows
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// jsonNumber maps NaN (std of a single row) to null; encoding/json
// rejects NaN outright.
func jsonNumber(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func lastRefreshLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
