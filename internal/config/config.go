// Package config loads the daemon configuration via Viper: a YAML file
// with OPSWATCH_-prefixed environment overrides. A missing file is not an
// error; defaults apply.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level daemon configuration.
type Config struct {
	// DBPath is the SQLite database file. ":memory:" is accepted for
	// ad-hoc runs.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// ScanInterval is the scheduler tick period.
	ScanInterval time.Duration `mapstructure:"scan_interval" yaml:"scan_interval"`

	// ContractBatch and ShipmentBatch bound one generation pass.
	ContractBatch int `mapstructure:"contract_batch" yaml:"contract_batch"`
	ShipmentBatch int `mapstructure:"shipment_batch" yaml:"shipment_batch"`

	// PendingLimit bounds one progression sweep; PendingWindowDays is the
	// notification age cutoff.
	PendingLimit      int `mapstructure:"pending_limit" yaml:"pending_limit"`
	PendingWindowDays int `mapstructure:"pending_window_days" yaml:"pending_window_days"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		DBPath:            "opswatch.db",
		ScanInterval:      30 * time.Minute,
		ContractBatch:     30,
		ShipmentBatch:     50,
		PendingLimit:      500,
		PendingWindowDays: 30,
		LogLevel:          "info",
	}
}

// Load reads configuration from the given YAML file. A missing file (or
// an empty path) yields the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("db_path", "opswatch.db")
	v.SetDefault("scan_interval", "30m")
	v.SetDefault("contract_batch", 30)
	v.SetDefault("shipment_batch", 50)
	v.SetDefault("pending_limit", 500)
	v.SetDefault("pending_window_days", 30)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("OPSWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(*os.PathError); !ok {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return nil, fmt.Errorf("reading config %s: %w", path, err)
				}
			}
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: db_path must not be empty")
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("config: scan_interval must be positive")
	}
	if c.ContractBatch <= 0 || c.ShipmentBatch <= 0 {
		return fmt.Errorf("config: batch sizes must be positive")
	}
	if c.PendingLimit <= 0 || c.PendingWindowDays <= 0 {
		return fmt.Errorf("config: pending sweep bounds must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// PendingWindow returns the sweep age cutoff as a duration.
func (c *Config) PendingWindow() time.Duration {
	return time.Duration(c.PendingWindowDays) * 24 * time.Hour
}
