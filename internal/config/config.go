// Package config provides configuration management for the operator console.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all console configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Poll   PollConfig   `mapstructure:"poll"`
	Risk   RiskConfig   `mapstructure:"risk"`
	Alerts AlertConfig  `mapstructure:"alerts"`
	UI     UIConfig     `mapstructure:"ui"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	AuthToken string        `mapstructure:"auth_token"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// PollConfig holds poll orchestrator settings.
type PollConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	EquityHistory int           `mapstructure:"equity_history"`
}

// RiskConfig holds thresholds and constants for derived risk figures.
// PerLotMargin and AdverseMovePct feed advisory estimates only; they have
// no backend confirmation.
type RiskConfig struct {
	MarginWarnPct    float64 `mapstructure:"margin_warn_pct"`
	MarginDangerPct  float64 `mapstructure:"margin_danger_pct"`
	LossWarnPct      float64 `mapstructure:"loss_warn_pct"`
	LossDangerPct    float64 `mapstructure:"loss_danger_pct"`
	LotSize          int     `mapstructure:"lot_size"`
	PerLotMargin     float64 `mapstructure:"per_lot_margin"`
	AdverseMovePct   float64 `mapstructure:"adverse_move_pct"`
	AutoRestartLimit int     `mapstructure:"auto_restart_limit"`
}

// AlertConfig holds alert queue settings.
type AlertConfig struct {
	Capacity int           `mapstructure:"capacity"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	TimeFormat   string `mapstructure:"time_format"`
}

// StoreConfig holds local journal settings.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// ConfigDir returns the console's configuration directory.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tradedeck-console")
}

// Load reads configuration from the given file (or the default location),
// environment variables (TRADEDECK_ prefix) and built-in defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TRADEDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env carry the day.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 10*time.Second)

	v.SetDefault("poll.interval", 2*time.Second)
	v.SetDefault("poll.equity_history", 50)

	v.SetDefault("risk.margin_warn_pct", 70.0)
	v.SetDefault("risk.margin_danger_pct", 85.0)
	v.SetDefault("risk.loss_warn_pct", 55.0)
	v.SetDefault("risk.loss_danger_pct", 80.0)
	v.SetDefault("risk.lot_size", 50)
	v.SetDefault("risk.per_lot_margin", 25000.0)
	v.SetDefault("risk.adverse_move_pct", 10.0)
	v.SetDefault("risk.auto_restart_limit", 5)

	v.SetDefault("alerts.capacity", 6)
	v.SetDefault("alerts.ttl", 9*time.Second)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.time_format", "15:04:05")

	v.SetDefault("store.path", filepath.Join(ConfigDir(), "journal.db"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)
	v.SetDefault("log.file", true)
	v.SetDefault("log.file_path", filepath.Join(ConfigDir(), "logs", "console.log"))
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 14)
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if c.Alerts.Capacity <= 0 {
		return fmt.Errorf("alerts.capacity must be positive, got %d", c.Alerts.Capacity)
	}
	if c.Alerts.TTL <= 0 {
		return fmt.Errorf("alerts.ttl must be positive, got %s", c.Alerts.TTL)
	}
	if c.Risk.LotSize <= 0 {
		return fmt.Errorf("risk.lot_size must be positive, got %d", c.Risk.LotSize)
	}
	if c.Risk.MarginWarnPct >= c.Risk.MarginDangerPct {
		return fmt.Errorf("risk.margin_warn_pct must be below risk.margin_danger_pct")
	}
	if c.Risk.LossWarnPct >= c.Risk.LossDangerPct {
		return fmt.Errorf("risk.loss_warn_pct must be below risk.loss_danger_pct")
	}
	return nil
}
