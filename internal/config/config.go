package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	PriceFeed struct {
		Providers       []string `yaml:"providers"` // tried in order, first success wins
		FetchTimeoutSec int      `yaml:"fetch_timeout_sec"`
	} `yaml:"price_feed"`
	Tracker struct {
		PollIntervalSec     int     `yaml:"poll_interval_sec"`
		TP1Fraction         float64 `yaml:"tp1_fraction"`
		TP2Fraction         float64 `yaml:"tp2_fraction"`
		TP3Fraction         float64 `yaml:"tp3_fraction"`
		RiskyScoreThreshold float64 `yaml:"risky_score_threshold"`
	} `yaml:"tracker"`
	Schedule struct {
		DigestCron      string `yaml:"digest_cron"`
		StatsWindowDays int    `yaml:"stats_window_days"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"` // empty disables the /metrics endpoint
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("PRICE_PROVIDERS"); v != "" {
		cfg.PriceFeed.Providers = splitList(v)
	}
	if v := os.Getenv("POLL_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracker.PollIntervalSec = n
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if len(cfg.PriceFeed.Providers) == 0 {
		cfg.PriceFeed.Providers = []string{"binance", "bybit"}
	}
	if cfg.PriceFeed.FetchTimeoutSec == 0 {
		cfg.PriceFeed.FetchTimeoutSec = 10
	}
	if cfg.Tracker.PollIntervalSec == 0 {
		cfg.Tracker.PollIntervalSec = 15
	}
	if cfg.Tracker.TP1Fraction == 0 && cfg.Tracker.TP2Fraction == 0 && cfg.Tracker.TP3Fraction == 0 {
		cfg.Tracker.TP1Fraction = 0.25
		cfg.Tracker.TP2Fraction = 0.50
		cfg.Tracker.TP3Fraction = 0.25
	}
	if cfg.Tracker.RiskyScoreThreshold == 0 {
		cfg.Tracker.RiskyScoreThreshold = 50
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 9 * * *"
	}
	if cfg.Schedule.StatsWindowDays == 0 {
		cfg.Schedule.StatsWindowDays = 7
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/signal_sentinel.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.Tracker.PollIntervalSec <= 0 {
		return fmt.Errorf("tracker.poll_interval_sec must be positive")
	}
	sum := c.Tracker.TP1Fraction + c.Tracker.TP2Fraction + c.Tracker.TP3Fraction
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("tracker tp fractions must sum to 1, got %.3f", sum)
	}
	for _, p := range c.PriceFeed.Providers {
		switch p {
		case "binance", "bybit", "mock":
		default:
			return fmt.Errorf("unknown price provider %q", p)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
