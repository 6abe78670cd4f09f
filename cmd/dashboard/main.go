package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"TickerScope/internal/collector"
	"TickerScope/internal/config"
	"TickerScope/internal/logger"
	"TickerScope/internal/monitor"
	"TickerScope/internal/notifier"
	"TickerScope/internal/recorder"
	"TickerScope/internal/scheduler"
	"TickerScope/internal/state"
	"TickerScope/internal/web"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to the config file")
	flag.Parse()
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*cfgPath = v
	}

	// Bootstrap logging with defaults so config failures are visible,
	// then reinitialize from the loaded config.
	if err := logger.Init(logger.DefaultConfig()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config validation: %v", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatalf("init logger: %v", err)
	}
	logger.Infof("TickerScope starting...")

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "table":
		fetcher = collector.NewTableFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey)
	case "mock":
		fetcher = &collector.MockFetcher{BasePrice: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	logger.Infof("data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init Telegram notifier (optional)
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		logger.Infof("telegram alerts enabled for chat %s", cfg.Telegram.ChatID)
	}

	mon := monitor.New(monitor.DefaultConfig())

	// Seed the dashboard with the first watchlist entry and the
	// configured default range.
	start, end := cfg.InitialRange(time.Now())
	st := state.NewStore(state.Snapshot{
		Ticker:    cfg.Watchlist[0],
		StartDate: start,
		EndDate:   end,
		Watchlist: cfg.Watchlist,
	})

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, st, rec, tn, mon)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		logger.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	srv, err := web.NewServer(web.ServerConfig{
		Addr:           cfg.Listen,
		Store:          st,
		Refresher:      sched,
		Monitor:        mon,
		PageRefreshSec: cfg.Schedule.PageRefreshSec,
		MinDate:        config.MinChartDate,
	})
	if err != nil {
		logger.Fatalf("init web server: %v", err)
	}

	// Hot-reload the watchlist on config file changes. A missing file
	// just disables reloading.
	watcher, err := config.NewWatcher(*cfgPath, cfg)
	if err != nil {
		logger.Warnf("config watcher disabled: %v", err)
		watcher = nil
	} else {
		watcher.Subscribe(func(next *config.Config) {
			st.Apply(func(cur state.Snapshot) state.Snapshot {
				cur.Watchlist = next.Watchlist
				return cur
			})
			logger.Infof("watchlist now has %d tickers", len(next.Watchlist))
		})
	}

	// Populate the dashboard without waiting for the first cron tick.
	go sched.RunRefresh("startup")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			logger.Infof("signal %s received, stopping...", sig)
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	logger.Infof("TickerScope listening on %s", srv.Addr())
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("shutdown: %v", err)
	}
	logger.Infof("TickerScope stopped")
}
