// Package config loads the wrapper's own settings. Nothing here is passed to
// or changes the environment of the launched command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/moby9098/internal/logger"
)

const (
	// EnvPrefix prefixes every environment key, e.g. MOBY9098_HISTORY_DSN.
	EnvPrefix = "MOBY9098"
	// EnvConfigFile names an optional TOML file with the same keys.
	EnvConfigFile = EnvPrefix + "_CONFIG"

	DefaultHistoryTimeout = 2 * time.Second
)

type Config struct {
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`
}

type LogConfig struct {
	File       string `toml:"file" mapstructure:"file"`
	Level      string `toml:"level" mapstructure:"level"`
	Debug      bool   `toml:"debug" mapstructure:"debug"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// HistoryConfig enables launch history when DSN is set. See history/factory
// for the accepted DSN forms.
type HistoryConfig struct {
	DSN     string        `toml:"dsn" mapstructure:"dsn"`
	Timeout time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// MetricsConfig enables a Prometheus textfile when Textfile is set.
type MetricsConfig struct {
	Textfile string `toml:"textfile" mapstructure:"textfile"`
}

// LoggerConfig converts the log section into logger.Config.
func (c LogConfig) LoggerConfig() logger.Config {
	return logger.Config{
		File:       c.File,
		Level:      c.Level,
		Debug:      c.Debug,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// Load reads the file named by MOBY9098_CONFIG, if any, then applies
// MOBY9098_* environment overrides.
func Load() (Config, error) {
	return LoadFile(os.Getenv(EnvConfigFile))
}

// EnvError reports MOBY9098_* values that could not be decoded. The
// Config returned alongside it was built from the file and defaults only.
type EnvError struct {
	Err error
}

func (e *EnvError) Error() string { return "ignoring environment: " + e.Err.Error() }

func (e *EnvError) Unwrap() error { return e.Err }

// LoadFile is Load with an explicit file path. An empty path means
// environment and defaults only. A file that cannot be read or decoded is
// an error; undecodable environment values are reported as *EnvError next
// to a usable Config.
func LoadFile(path string) (Config, error) {
	c, err := load(path, true)
	if err == nil {
		return c, nil
	}
	var re *readError
	if errors.As(err, &re) {
		return Config{}, err
	}
	fc, ferr := load(path, false)
	if ferr != nil {
		return Config{}, ferr
	}
	return fc, &EnvError{Err: err}
}

type readError struct{ error }

func (e *readError) Unwrap() error { return e.error }

func load(path string, withEnv bool) (Config, error) {
	v := newViper(withEnv)
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, &readError{fmt.Errorf("read %s: %w", path, err)}
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", displayPath(path), err)
	}
	if c.History.Timeout <= 0 {
		c.History.Timeout = DefaultHistoryTimeout
	}
	return c, nil
}

// newViper registers every key with a default so AutomaticEnv can see it
// during Unmarshal.
func newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.max_size_mb", logger.DefaultMaxSizeMB)
	v.SetDefault("log.max_backups", logger.DefaultMaxBackups)
	v.SetDefault("log.max_age_days", logger.DefaultMaxAgeDays)
	v.SetDefault("log.compress", false)
	v.SetDefault("history.dsn", "")
	v.SetDefault("history.timeout", DefaultHistoryTimeout)
	v.SetDefault("metrics.textfile", "")
	return v
}

func displayPath(p string) string {
	if p == "" {
		return "environment"
	}
	return p
}
