package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Watchlist []string `yaml:"watchlist"`
	Trading   struct {
		AllocationCap            float64 `yaml:"allocation_cap"`
		LookbackDays             int     `yaml:"lookback_days"`
		EMASpan                  int     `yaml:"ema_span"`
		RSIPeriod                int     `yaml:"rsi_period"`
		ATRPeriod                int     `yaml:"atr_period"`
		SRWindow                 int     `yaml:"sr_window"`
		CloseGuardMinutes        int     `yaml:"close_guard_minutes"`
		APIDelaySeconds          int     `yaml:"api_delay_seconds"`
		AccountMaxRetries        int     `yaml:"account_max_retries"`
		AccountRetryDelaySeconds int     `yaml:"account_retry_delay_seconds"`
	} `yaml:"trading"`
	Schedule struct {
		SessionCron string `yaml:"session_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logbook struct {
		Path string `yaml:"path"`
	} `yaml:"logbook"`
	Proxy string `yaml:"proxy"`
}

// Credentials are the brokerage API credentials, loaded from the
// environment only. They never appear in the YAML file.
type Credentials struct {
	APIKey    string `envconfig:"APCA_API_KEY_ID" required:"true"`
	APISecret string `envconfig:"APCA_API_SECRET_KEY" required:"true"`
	Paper     bool   `envconfig:"ALPACA_PAPER" default:"true"`
}

// BaseURL returns the trading API endpoint for the paper/live switch.
func (c Credentials) BaseURL() string {
	if c.Paper {
		return "https://paper-api.alpaca.markets"
	}
	return "https://api.alpaca.markets"
}

// LoadCredentials reads brokerage credentials from the environment.
func LoadCredentials() (*Credentials, error) {
	var creds Credentials
	if err := envconfig.Process("", &creds); err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return &creds, nil
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
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist = splitSymbols(v)
	}
	if v := os.Getenv("ALLOCATION_CAP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.AllocationCap = f
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_SESSION"); v != "" {
		cfg.Schedule.SessionCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOGBOOK_PATH"); v != "" {
		cfg.Logbook.Path = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = []string{
			"AAPL", "MSFT", "NVDA", "AMZN", "GOOGL",
			"TSLA", "META", "AMD", "NFLX", "XOM",
		}
	}
	if cfg.Trading.AllocationCap == 0 {
		cfg.Trading.AllocationCap = 0.10
	}
	if cfg.Trading.LookbackDays == 0 {
		cfg.Trading.LookbackDays = 30
	}
	if cfg.Trading.EMASpan == 0 {
		cfg.Trading.EMASpan = 10
	}
	if cfg.Trading.RSIPeriod == 0 {
		cfg.Trading.RSIPeriod = 14
	}
	if cfg.Trading.ATRPeriod == 0 {
		cfg.Trading.ATRPeriod = 14
	}
	if cfg.Trading.SRWindow == 0 {
		cfg.Trading.SRWindow = 5
	}
	if cfg.Trading.CloseGuardMinutes == 0 {
		cfg.Trading.CloseGuardMinutes = 10
	}
	if cfg.Trading.APIDelaySeconds == 0 {
		cfg.Trading.APIDelaySeconds = 1
	}
	if cfg.Trading.AccountMaxRetries == 0 {
		cfg.Trading.AccountMaxRetries = 3
	}
	if cfg.Trading.AccountRetryDelaySeconds == 0 {
		cfg.Trading.AccountRetryDelaySeconds = 5
	}
	if cfg.Schedule.SessionCron == "" {
		// Weekdays at 09:35 Eastern, shortly after the open.
		cfg.Schedule.SessionCron = "0 35 9 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/trade_sentinel.db"
	}
	if cfg.Logbook.Path == "" {
		cfg.Logbook.Path = "trade_receipts.json"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and sane.
func (c *Config) Validate() error {
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must not be empty")
	}
	if c.Trading.AllocationCap <= 0 || c.Trading.AllocationCap > 1 {
		return fmt.Errorf("trading.allocation_cap must be in (0, 1]")
	}
	if c.Trading.SRWindow < 1 {
		return fmt.Errorf("trading.sr_window must be at least 1")
	}
	if c.Trading.LookbackDays < 2*c.Trading.SRWindow+1 {
		return fmt.Errorf("trading.lookback_days %d too short for sr_window %d",
			c.Trading.LookbackDays, c.Trading.SRWindow)
	}
	for _, p := range []struct {
		name string
		v    int
	}{
		{"trading.ema_span", c.Trading.EMASpan},
		{"trading.rsi_period", c.Trading.RSIPeriod},
		{"trading.atr_period", c.Trading.ATRPeriod},
	} {
		if p.v < 1 {
			return fmt.Errorf("%s must be at least 1", p.name)
		}
	}
	return nil
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if sym := strings.ToUpper(strings.TrimSpace(part)); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}
