// Package config loads runtime settings from an optional YAML file,
// RR_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "RR"

	DefaultStartingCurrency = 15
	DefaultNotificationTTL  = 5 * time.Second
	DefaultLogLevel         = "info"
)

type Config struct {
	DBPath           string        `mapstructure:"db_path" yaml:"db_path"`
	StartingCurrency int           `mapstructure:"starting_currency" yaml:"starting_currency"`
	NotificationTTL  time.Duration `mapstructure:"notification_ttl" yaml:"notification_ttl"`
	Timezone         string        `mapstructure:"timezone" yaml:"timezone"`
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level"`
}

func (c *Config) ApplyDefaults() {
	if c.StartingCurrency <= 0 {
		c.StartingCurrency = DefaultStartingCurrency
	}
	if c.NotificationTTL <= 0 {
		c.NotificationTTL = DefaultNotificationTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}

// DefaultPath is ~/.config/research-rank/config.yaml, or "" when the home
// directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "research-rank", "config.yaml")
}

// Load reads path when given; otherwise the default file is used if it
// exists. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_path", "")
	v.SetDefault("starting_currency", DefaultStartingCurrency)
	v.SetDefault("notification_ttl", DefaultNotificationTTL)
	v.SetDefault("timezone", "")
	v.SetDefault("log_level", DefaultLogLevel)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			switch {
			case explicit:
				return nil, fmt.Errorf("read config %s: %w", path, err)
			case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			default:
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.ApplyDefaults()
	if _, err := c.location(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Location returns the configured zone for day and hour bucketing, falling
// back to the local zone.
func (c *Config) Location() *time.Location {
	loc, err := c.location()
	if err != nil {
		return time.Local
	}
	return loc
}

// Logger writes to stderr at debug level and is silent otherwise.
func (c *Config) Logger() *log.Logger {
	if c.LogLevel == "debug" {
		return log.New(os.Stderr, "rr: ", log.LstdFlags|log.Lmsgprefix)
	}
	return log.New(io.Discard, "", 0)
}
