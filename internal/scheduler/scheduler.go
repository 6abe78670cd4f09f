package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"TickerScope/internal/calculator"
	"TickerScope/internal/collector"
	"TickerScope/internal/logger"
	"TickerScope/internal/model"
	"TickerScope/internal/monitor"
	"TickerScope/internal/notifier"
	"TickerScope/internal/recorder"
	"TickerScope/internal/state"
)

// Messages shown on the dashboard's error line.
const (
	MsgSelectInput = "Select a ticker and date range"
	MsgLoadFailed  = "Failed to load price data"
)

// Scheduler runs refresh cycles: on demand from the web UI and on the
// periodic cron. Cycles are serialized; each one reads the controls
// from the store and installs the outcome as a whole snapshot, so
// overlapping triggers resolve last-write-wins.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Store     *state.Store
	Recorder  recorder.Recorder
	Notifier  *notifier.TelegramNotifier // nil disables alerts
	Monitor   *monitor.Monitor
	Ctx       context.Context

	runMu    sync.Mutex
	alerting bool // inside a failure streak
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, st *state.Store, rec recorder.Recorder, tn *notifier.TelegramNotifier, mon *monitor.Monitor) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Store:     st,
		Recorder:  rec,
		Notifier:  tn,
		Monitor:   mon,
		Ctx:       ctx,
	}
}

// RegisterAll registers the periodic refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTick); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Infof("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	logger.Infof("scheduler stopped")
}

func (s *Scheduler) refreshTick() {
	s.RunRefresh("scheduled")
}

// RunRefresh executes one refresh cycle for the controls currently in
// the store and returns the snapshot it installed. trigger is
// "startup", "manual" or "scheduled". It never returns an error: every
// failure mode lands in the snapshot's message line.
func (s *Scheduler) RunRefresh(trigger string) state.Snapshot {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	id := uuid.NewString()
	snap := s.Store.Current()
	ticker, startDate, endDate := snap.Ticker, snap.StartDate, snap.EndDate

	if ticker == "" || startDate == "" || endDate == "" {
		logger.Infof("refresh %s (%s): incomplete controls, prompting", id, trigger)
		s.Store.Apply(func(cur state.Snapshot) state.Snapshot {
			cur.Table = nil
			cur.Stats = nil
			cur.Message = MsgSelectInput
			cur.RefreshID = id
			return cur
		})
		return s.Store.Current()
	}

	logger.Infof("refresh %s (%s): %s %s..%s", id, trigger, ticker, startDate, endDate)
	began := time.Now()

	table, err := s.collect(ticker, startDate, endDate)
	elapsed := time.Since(began)

	if err != nil {
		logger.Errorf("refresh %s failed after %v: %v", id, elapsed.Round(time.Millisecond), err)
		s.Store.Apply(func(cur state.Snapshot) state.Snapshot {
			cur.Table = nil
			cur.Stats = nil
			cur.Message = MsgLoadFailed
			cur.RefreshID = id
			cur.LastRefresh = time.Now()
			return cur
		})
		s.Monitor.RecordRefresh(trigger, "error", elapsed.Seconds(), 0)
		s.record(&recorder.RefreshEvent{
			RefreshID: id, Trigger: trigger, Ticker: ticker,
			StartDate: startDate, EndDate: endDate,
			Source: s.Collector.Fetcher.Name(),
			Outcome: "error", Error: err.Error(), Duration: elapsed,
		})
		if !s.alerting {
			s.alerting = true
			s.trySend(notifier.FormatRefreshFailure(ticker, startDate, endDate, s.Collector.Fetcher.Name(), err))
		}
		return s.Store.Current()
	}

	stats := calculator.Summarize(table)
	s.Store.Apply(func(cur state.Snapshot) state.Snapshot {
		cur.Table = table
		cur.Stats = stats
		cur.Message = ""
		cur.Source = s.Collector.Fetcher.Name()
		cur.RefreshID = id
		cur.LastRefresh = time.Now()
		return cur
	})

	logger.Infof("refresh %s done: %d rows in %v", id, len(table), elapsed.Round(time.Millisecond))
	s.Monitor.RecordRefresh(trigger, "ok", elapsed.Seconds(), len(table))
	s.record(&recorder.RefreshEvent{
		RefreshID: id, Trigger: trigger, Ticker: ticker,
		StartDate: startDate, EndDate: endDate,
		Source: s.Collector.Fetcher.Name(),
		Outcome: "ok", Rows: len(table), Duration: elapsed,
	})
	if err := s.Recorder.RecordPrices(ticker, table); err != nil {
		logger.Errorf("record prices: %v", err)
	}
	if s.alerting {
		s.alerting = false
		s.trySend(notifier.FormatRefreshRecovered(ticker, len(table)))
	}
	return s.Store.Current()
}

// collect parses the date controls and runs the fetch-and-normalize
// pipeline. The end date is handed to the provider unchanged; daily
// providers treat it as exclusive.
func (s *Scheduler) collect(ticker, startDate, endDate string) (model.PriceTable, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("parse end date: %w", err)
	}
	return s.Collector.Collect(s.Ctx, ticker, start, end)
}

func (s *Scheduler) record(evt *recorder.RefreshEvent) {
	if err := s.Recorder.RecordRefresh(evt); err != nil {
		logger.Errorf("record refresh event: %v", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.Errorf("send notification: %v", err)
	}
}
