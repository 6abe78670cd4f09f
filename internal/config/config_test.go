package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("expected default listen :8080, got %q", cfg.Listen)
	}
	if len(cfg.Watchlist) != 2 || cfg.Watchlist[0] != "AAPL" {
		t.Errorf("unexpected default watchlist: %v", cfg.Watchlist)
	}
	if cfg.Schedule.RefreshCron != "0 0 * * * *" {
		t.Errorf("expected hourly cron, got %q", cfg.Schedule.RefreshCron)
	}
	if cfg.Schedule.PageRefreshSec != 3600 {
		t.Errorf("expected 3600s page refresh, got %d", cfg.Schedule.PageRefreshSec)
	}
	if cfg.DataSource.Provider != "yahoo" {
		t.Errorf("expected yahoo provider, got %q", cfg.DataSource.Provider)
	}
	if cfg.Database.SQLitePath != "" {
		t.Errorf("recording should be disabled by default, got %q", cfg.Database.SQLitePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeTempConfig(t, `
listen: ":9000"
watchlist: [GOOG, AMZN]
data_source:
  provider: table
  base_url: https://example.com
default_range:
  start: "2022-01-01"
  end: "2022-12-31"
`)
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("TABLE_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Listen != ":9999" {
		t.Errorf("env should override file, got %q", cfg.Listen)
	}
	if cfg.DataSource.APIKey != "from-env" {
		t.Errorf("expected env api key, got %q", cfg.DataSource.APIKey)
	}
	if len(cfg.Watchlist) != 2 || cfg.Watchlist[0] != "GOOG" {
		t.Errorf("unexpected watchlist: %v", cfg.Watchlist)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config should validate: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty watchlist", func(c *Config) { c.Watchlist = nil }},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"table without base url", func(c *Config) {
			c.DataSource.Provider = "table"
			c.DataSource.BaseURL = ""
		}},
		{"bad date", func(c *Config) { c.DefaultRange.Start = "01/02/2022" }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "tok" }},
		{"zero page refresh", func(c *Config) { c.Schedule.PageRefreshSec = -1 }},
	}
	for _, tt := range tests {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestInitialRange(t *testing.T) {
	now := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

	cfg := &Config{}
	start, end := cfg.InitialRange(now)
	if end != "2023-06-15" {
		t.Errorf("expected today as end, got %q", end)
	}
	if start != "2022-06-15" {
		t.Errorf("expected 365 days back, got %q", start)
	}

	cfg.DefaultRange.Start = "2020-01-01"
	cfg.DefaultRange.End = "2020-06-30"
	start, end = cfg.InitialRange(now)
	if start != "2020-01-01" || end != "2020-06-30" {
		t.Errorf("configured range should pass through, got %q..%q", start, end)
	}
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	path := writeTempConfig(t, "listen: \":8080\"\n")
	initial, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, initial)
	if err != nil {
		t.Fatalf("create watcher: %v", err)
	}

	updated := make(chan *Config, 1)
	w.Subscribe(func(c *Config) {
		select {
		case updated <- c:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the event loop a beat to start before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("listen: \":7070\"\nwatchlist: [TSLA]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-updated:
		if cfg.Listen != ":7070" {
			t.Errorf("expected reloaded listen :7070, got %q", cfg.Listen)
		}
		if got := w.Current().Watchlist; len(got) != 1 || got[0] != "TSLA" {
			t.Errorf("expected reloaded watchlist, got %v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
