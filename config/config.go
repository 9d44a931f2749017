// Package config loads application settings from an optional YAML file and
// the environment.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/valutatrade/valutahub/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	defaultDataDir        = "data"
	defaultBaseCurrency   = "USD"
	defaultRatesTTL       = 300 * time.Second
	defaultRequestTimeout = 10 * time.Second

	defaultLogFile    = "logs/actions.log"
	defaultLogMaxMB   = 10
	defaultLogBackups = 5
)

// LogConfig controls the rotating action log.
type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Config is the validated runtime configuration.
type Config struct {
	// DataDir holds the JSON stores and the rate history journal.
	DataDir string
	// BaseCurrency is the settlement currency of every trade.
	BaseCurrency string
	// RatesTTL is the maximum age of a cached rate before lookups fail.
	RatesTTL time.Duration
	// RequestTimeout bounds each external provider call.
	RequestTimeout time.Duration
	// ExchangeRateAPIKey comes from the EXCHANGERATE_API_KEY env var only.
	ExchangeRateAPIKey string
	Log                LogConfig
}

type configTmp struct {
	DataDir               string `yaml:"data_dir"`
	BaseCurrency          string `yaml:"base_currency"`
	RatesTTLSeconds       int    `yaml:"rates_ttl_seconds"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	LogFile               string `yaml:"log_file"`
	LogMaxSizeMB          int    `yaml:"log_max_size_mb"`
	LogMaxBackups         int    `yaml:"log_max_backups"`
}

// Load reads path when it exists and applies defaults and environment
// variables. A missing file is not an error: defaults apply.
func Load(path string) (Config, error) {
	cfg := Config{
		DataDir:        defaultDataDir,
		BaseCurrency:   defaultBaseCurrency,
		RatesTTL:       defaultRatesTTL,
		RequestTimeout: defaultRequestTimeout,
		Log: LogConfig{
			File:       defaultLogFile,
			MaxSizeMB:  defaultLogMaxMB,
			MaxBackups: defaultLogBackups,
		},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, errors.Wrapf(err, "read config %s", path)
			}
		} else {
			var tmp configTmp
			if err := yaml.Unmarshal(raw, &tmp); err != nil {
				return Config{}, errors.Wrapf(err, "parse config %s", path)
			}
			if tmp.DataDir != "" {
				cfg.DataDir = tmp.DataDir
			}
			if tmp.BaseCurrency != "" {
				cfg.BaseCurrency = tmp.BaseCurrency
			}
			if tmp.RatesTTLSeconds > 0 {
				cfg.RatesTTL = time.Duration(tmp.RatesTTLSeconds) * time.Second
			}
			if tmp.RequestTimeoutSeconds > 0 {
				cfg.RequestTimeout = time.Duration(tmp.RequestTimeoutSeconds) * time.Second
			}
			if tmp.LogFile != "" {
				cfg.Log.File = tmp.LogFile
			}
			if tmp.LogMaxSizeMB > 0 {
				cfg.Log.MaxSizeMB = tmp.LogMaxSizeMB
			}
			if tmp.LogMaxBackups > 0 {
				cfg.Log.MaxBackups = tmp.LogMaxBackups
			}
		}
	}

	cfg.ExchangeRateAPIKey = os.Getenv("EXCHANGERATE_API_KEY")

	base, err := domain.NormalizeCode(cfg.BaseCurrency)
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid base_currency")
	}
	if _, err := domain.LookupCurrency(base); err != nil {
		return Config{}, errors.Wrap(err, "invalid base_currency")
	}
	cfg.BaseCurrency = base

	return cfg, nil
}
