package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"TickerScope/internal/logger"
)

// MinChartDate is the earliest date the date pickers accept.
const MinChartDate = "2010-01-01"

// Config holds all application configuration.
type Config struct {
	Listen    string   `yaml:"listen"`
	Watchlist []string `yaml:"watchlist"`
	DefaultRange struct {
		Start string `yaml:"start"` // yyyy-mm-dd, empty = 365 days back
		End   string `yaml:"end"`   // yyyy-mm-dd, empty = today
	} `yaml:"default_range"`
	Schedule struct {
		RefreshCron    string `yaml:"refresh_cron"`
		PageRefreshSec int    `yaml:"page_refresh_sec"`
	} `yaml:"schedule"`
	DataSource struct {
		Provider string `yaml:"provider"` // yahoo, table or mock
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"` // empty disables recording
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log   logger.Config `yaml:"log"`
	Proxy string        `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("TABLE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("TABLE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PAGE_REFRESH_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			cfg.Schedule.PageRefreshSec = sec
		}
	}

	// Defaults
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = []string{"AAPL", "MSFT"}
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 0 * * * *"
	}
	if cfg.Schedule.PageRefreshSec == 0 {
		cfg.Schedule.PageRefreshSec = 3600
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = logger.DefaultConfig().Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = logger.DefaultConfig().Format
	}

	return cfg, nil
}

// InitialRange returns the configured default date range. Unset bounds
// fall back to the last 365 days ending today.
func (c *Config) InitialRange(now time.Time) (start, end string) {
	start, end = c.DefaultRange.Start, c.DefaultRange.End
	if end == "" {
		end = now.Format("2006-01-02")
	}
	if start == "" {
		start = now.AddDate(0, 0, -365).Format("2006-01-02")
	}
	return start, end
}

// TelegramEnabled reports whether failure alerts are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must contain at least one ticker")
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "table":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the table provider")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if c.Schedule.PageRefreshSec <= 0 {
		return fmt.Errorf("schedule.page_refresh_sec must be positive")
	}
	for _, d := range []string{c.DefaultRange.Start, c.DefaultRange.End} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("default_range dates must be yyyy-mm-dd: %w", err)
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
