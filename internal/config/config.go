package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"spikeradar/internal/logging"
)

// MaxAlertLimit is the largest page the backend serves.
const MaxAlertLimit = 100

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	API      APIConfig      `mapstructure:"api"`
	Polling  PollingConfig  `mapstructure:"polling"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Display  DisplayConfig  `mapstructure:"display"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Alerting AlertingConfig `mapstructure:"alerting"`
	Export   ExportConfig   `mapstructure:"export"`
	Demo     DemoConfig     `mapstructure:"demo"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	UserID      int64  `mapstructure:"user_id"`
}

// APIConfig covers the backend connection.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// PollingConfig governs refresh cadence.
type PollingConfig struct {
	AlertsInterval time.Duration `mapstructure:"alerts_interval"`
	FeedInterval   time.Duration `mapstructure:"feed_interval"`
}

// AlertsConfig filters the alert listing.
type AlertsConfig struct {
	Urgency string `mapstructure:"urgency"`
	Status  string `mapstructure:"status"`
	Limit   int    `mapstructure:"limit"`
}

// ScanConfig tunes the on-demand scan.
type ScanConfig struct {
	ResultWindow time.Duration `mapstructure:"result_window"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// DisplayConfig tunes rendering.
type DisplayConfig struct {
	VelocityCap float64 `mapstructure:"velocity_cap"`
	FeedRows    int     `mapstructure:"feed_rows"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Retention       time.Duration `mapstructure:"retention"`
}

// CacheConfig covers the Redis snapshot cache.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MetricsConfig exposes the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// AlertingConfig defines spike notification routing.
type AlertingConfig struct {
	Enabled         bool           `mapstructure:"enabled"`
	MinUrgency      string         `mapstructure:"min_urgency"`
	AdvisoryLockKey int64          `mapstructure:"advisory_lock_key"`
	Telegram        TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes Telegram delivery parameters.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxRows int `mapstructure:"max_rows"`
}

// DemoConfig switches to the in-memory fixture backend.
type DemoConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	ScanDelay time.Duration `mapstructure:"scan_delay"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SPIKERADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "spikeradar")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.user_id", int64(1))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.request_timeout", "15s")

	v.SetDefault("polling.alerts_interval", "30s")
	v.SetDefault("polling.feed_interval", "30s")

	v.SetDefault("alerts.limit", 50)

	v.SetDefault("scan.result_window", "5s")
	v.SetDefault("scan.timeout", "2m")

	v.SetDefault("display.velocity_cap", 8.0)
	v.SetDefault("display.feed_rows", 20)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.retention", "720h")

	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9102")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.min_urgency", "high")
	v.SetDefault("alerting.advisory_lock_key", int64(0x73706b72))
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_rows", 1000)

	v.SetDefault("demo.enabled", false)
	v.SetDefault("demo.scan_delay", "2200ms")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if !c.Demo.Enabled && strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.Polling.AlertsInterval <= 0 {
		return fmt.Errorf("polling.alerts_interval must be greater than zero")
	}
	if c.Polling.FeedInterval <= 0 {
		return fmt.Errorf("polling.feed_interval must be greater than zero")
	}
	if c.Scan.ResultWindow <= 0 {
		return fmt.Errorf("scan.result_window must be greater than zero")
	}
	if c.Alerts.Limit < 1 || c.Alerts.Limit > MaxAlertLimit {
		return fmt.Errorf("alerts.limit must be between 1 and %d", MaxAlertLimit)
	}
	switch strings.ToLower(c.Alerts.Urgency) {
	case "", "critical", "high", "medium", "low":
	default:
		return fmt.Errorf("alerts.urgency %q is not a known urgency", c.Alerts.Urgency)
	}
	switch strings.ToLower(c.Alerting.MinUrgency) {
	case "critical", "high", "medium", "low":
	default:
		return fmt.Errorf("alerting.min_urgency %q is not a known urgency", c.Alerting.MinUrgency)
	}
	if c.Display.VelocityCap <= 0 {
		return fmt.Errorf("display.velocity_cap must be greater than zero")
	}
	if c.Export.MaxRows <= 0 {
		return fmt.Errorf("export.max_rows must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required")
		}
	}
	return nil
}

// ResolveMaxRows returns either the CLI override or config default.
func (c *Config) ResolveMaxRows(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxRows
}

// ResolveLimit clamps a CLI limit override to the backend maximum.
func (c *Config) ResolveLimit(override int) int {
	limit := c.Alerts.Limit
	if override > 0 {
		limit = override
	}
	if limit > MaxAlertLimit {
		limit = MaxAlertLimit
	}
	return limit
}
