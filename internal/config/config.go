package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"FXSentinel/internal/model"
	"FXSentinel/internal/risk"
	"FXSentinel/internal/session"

	"gopkg.in/yaml.v3"
)

// Profiles select a preset of cache and market settings.
const (
	ProfileDashboard  = "dashboard"  // gated signal view: 60s snapshots, intraday on
	ProfileCalculator = "calculator" // pip-distance calculator: 30m snapshots, daily bars only
)

// Config holds all application configuration.
type Config struct {
	Profile    string `yaml:"profile"`
	DataSource struct {
		Provider string        `yaml:"provider"` // yahoo, rest or mock
		BaseURL  string        `yaml:"base_url"`
		APIKey   string        `yaml:"api_key"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Instruments []model.Instrument `yaml:"instruments"`
	Cache       struct {
		SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
		NewsTTL     time.Duration `yaml:"news_ttl"`
	} `yaml:"cache"`
	Market struct {
		Intraday   *bool         `yaml:"intraday"`
		StaleAfter time.Duration `yaml:"stale_after"`
	} `yaml:"market"`
	Session struct {
		DisplayZone  string `yaml:"display_zone"`
		RolloverZone string `yaml:"rollover_zone"`
		RolloverFrom string `yaml:"rollover_from"`
		RolloverTo   string `yaml:"rollover_to"`
	} `yaml:"session"`
	News struct {
		Enabled         *bool         `yaml:"enabled"`
		URL             string        `yaml:"url"`
		SourceZone      string        `yaml:"source_zone"`
		IncludeHolidays bool          `yaml:"include_holidays"`
		BlackoutBefore  time.Duration `yaml:"blackout_before"`
		BlackoutAfter   time.Duration `yaml:"blackout_after"`
		Timeout         time.Duration `yaml:"timeout"`
	} `yaml:"news"`
	Risk struct {
		SLMultiplier float64 `yaml:"sl_multiplier"`
		TPMultiplier float64 `yaml:"tp_multiplier"`
		DefaultPair  string  `yaml:"default_pair"`
	} `yaml:"risk"`
	Params struct {
		Backend string `yaml:"backend"` // memory, file, sqlite or redis
		Path    string `yaml:"path"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Key      string `yaml:"key"`
		} `yaml:"redis"`
	} `yaml:"params"`
	HTTP struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"http"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		AlertCron string `yaml:"alert_cron"`
	} `yaml:"schedule"`
	Logging struct {
		Level       string `yaml:"level"`
		Environment string `yaml:"environment"`
		File        string `yaml:"file"`
		MaxSizeMB   int    `yaml:"max_size_mb"`
		MaxAgeDays  int    `yaml:"max_age_days"`
		MaxBackups  int    `yaml:"max_backups"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setFloat := func(dst *float64, key string) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setString(&c.Profile, "FX_PROFILE")
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.DataSource.Provider, "FX_DATA_PROVIDER")
	setString(&c.DataSource.BaseURL, "FX_DATA_BASE_URL")
	setString(&c.DataSource.APIKey, "FX_DATA_API_KEY")
	setString(&c.Proxy, "HTTPS_PROXY")
	setString(&c.Params.Backend, "FX_PARAMS_BACKEND")
	setString(&c.Params.Path, "FX_PARAMS_PATH")
	setString(&c.Params.Redis.Addr, "REDIS_ADDR")
	setString(&c.Params.Redis.Password, "REDIS_PASSWORD")
	setString(&c.HTTP.Addr, "FX_HTTP_ADDR")
	setString(&c.Schedule.AlertCron, "CRON_ALERT")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Environment, "ENVIRONMENT")
	setFloat(&c.Risk.SLMultiplier, "FX_SL_MULT")
	setFloat(&c.Risk.TPMultiplier, "FX_TP_MULT")
	setString(&c.Risk.DefaultPair, "FX_DEFAULT_PAIR")
}

func (c *Config) applyDefaults() {
	if c.Profile == "" {
		c.Profile = ProfileDashboard
	}
	calculator := c.Profile == ProfileCalculator

	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 15 * time.Second
	}
	if len(c.Instruments) == 0 {
		c.Instruments = append([]model.Instrument(nil), model.DefaultInstruments...)
	}
	for i := range c.Instruments {
		if c.Instruments[i].PipUnit == 0 {
			c.Instruments[i].PipUnit = model.PipUnitFor(c.Instruments[i].DisplayName)
		}
	}

	if c.Cache.SnapshotTTL == 0 {
		c.Cache.SnapshotTTL = time.Minute
		if calculator {
			c.Cache.SnapshotTTL = 30 * time.Minute
		}
	}
	if c.Cache.NewsTTL == 0 {
		c.Cache.NewsTTL = 5 * time.Minute
	}
	if c.Market.Intraday == nil {
		on := !calculator
		c.Market.Intraday = &on
	}
	if c.Market.StaleAfter == 0 {
		c.Market.StaleAfter = 20 * time.Minute
	}

	if c.Session.DisplayZone == "" {
		c.Session.DisplayZone = session.DefaultDisplayZone
	}
	if c.Session.RolloverZone == "" {
		c.Session.RolloverZone = session.DefaultRolloverZone
	}
	if c.Session.RolloverFrom == "" {
		c.Session.RolloverFrom = session.DefaultRolloverFrom
	}
	if c.Session.RolloverTo == "" {
		c.Session.RolloverTo = session.DefaultRolloverTo
	}

	if c.News.Enabled == nil {
		on := !calculator
		c.News.Enabled = &on
	}
	if c.News.SourceZone == "" {
		c.News.SourceZone = "America/New_York"
	}
	if c.News.BlackoutBefore == 0 {
		c.News.BlackoutBefore = 30 * time.Minute
	}
	if c.News.BlackoutAfter == 0 {
		c.News.BlackoutAfter = 60 * time.Minute
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = 15 * time.Second
	}

	if c.Risk.SLMultiplier == 0 {
		c.Risk.SLMultiplier = risk.DefaultSLMultiplier
	}
	if c.Risk.TPMultiplier == 0 {
		c.Risk.TPMultiplier = risk.DefaultTPMultiplier
	}
	if c.Risk.DefaultPair == "" {
		c.Risk.DefaultPair = c.Instruments[0].DisplayName
	}

	if c.Params.Backend == "" {
		c.Params.Backend = "file"
	}
	if c.Params.Path == "" {
		switch c.Params.Backend {
		case "sqlite":
			c.Params.Path = "data/fxsentinel.db"
		default:
			c.Params.Path = "data/params.json"
		}
	}
	if c.Params.Redis.Key == "" {
		c.Params.Redis.Key = "fxsentinel:params"
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 30 * time.Second
	}

	if c.Schedule.AlertCron == "" {
		c.Schedule.AlertCron = "0 */5 * * * 1-5"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Environment == "" {
		c.Logging.Environment = "production"
	}
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	switch c.Profile {
	case ProfileDashboard, ProfileCalculator:
	default:
		return fmt.Errorf("profile must be %q or %q, got %q", ProfileDashboard, ProfileCalculator, c.Profile)
	}

	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}

	seen := make(map[string]bool, len(c.Instruments))
	for _, inst := range c.Instruments {
		if inst.DisplayName == "" || inst.Ticker == "" {
			return fmt.Errorf("instrument needs display_name and ticker: %+v", inst)
		}
		if inst.PipUnit <= 0 {
			return fmt.Errorf("instrument %s: pip_unit must be positive", inst.DisplayName)
		}
		if seen[inst.DisplayName] {
			return fmt.Errorf("instrument %s listed twice", inst.DisplayName)
		}
		seen[inst.DisplayName] = true
	}
	if !seen[c.Risk.DefaultPair] {
		return fmt.Errorf("risk.default_pair %q is not a configured instrument", c.Risk.DefaultPair)
	}

	if err := risk.Validate(c.RiskDefaults()); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	if _, err := c.Gate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if _, err := time.LoadLocation(c.News.SourceZone); err != nil {
		return fmt.Errorf("news.source_zone: %w", err)
	}

	switch c.Params.Backend {
	case "memory", "file", "sqlite":
	case "redis":
		if c.Params.Redis.Addr == "" {
			return fmt.Errorf("params.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown params.backend %q", c.Params.Backend)
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when bot_token is set")
	}
	return nil
}

// RiskDefaults returns the configured default multipliers.
func (c *Config) RiskDefaults() model.RiskParameters {
	return model.RiskParameters{SLMultiplier: c.Risk.SLMultiplier, TPMultiplier: c.Risk.TPMultiplier}
}

// Gate builds the trading-window gate from the session section.
func (c *Config) Gate() (*session.Gate, error) {
	return session.NewGate(c.Session.DisplayZone, c.Session.RolloverZone, c.Session.RolloverFrom, c.Session.RolloverTo)
}

// IntradayEnabled reports whether 30m bars are fetched.
func (c *Config) IntradayEnabled() bool { return c.Market.Intraday != nil && *c.Market.Intraday }

// NewsEnabled reports whether the calendar is consulted.
func (c *Config) NewsEnabled() bool { return c.News.Enabled != nil && *c.News.Enabled }

// TelegramEnabled reports whether the bot should start.
func (c *Config) TelegramEnabled() bool { return c.Telegram.BotToken != "" }
