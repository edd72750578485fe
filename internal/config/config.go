// Package config loads the chronoflow command configuration from flags,
// CHRONOFLOW_* environment variables and an optional config file.
//
// Precedence, highest first: flags set on the command line, environment,
// config file, defaults.
//
//	┌──────────────┬───────────────┬──────────────────────────────────────┐
//	│ Key          │ Default       │ Description                          │
//	├──────────────┼───────────────┼──────────────────────────────────────┤
//	│ workers      │ 0             │ Worker count, 0 derives from CPUs    │
//	│ poll-interval│ 10ms          │ Idle worker wait before barrier check│
//	│ size         │ 100           │ Matrix rows and columns              │
//	│ seed         │ 0             │ Random seed, 0 uses the current time │
//	│ log-level    │ "info"        │ debug, info, warn or error           │
//	│ log-format   │ "console"     │ console or json                      │
//	│ metrics-addr │ ""            │ Serve /metrics on this address       │
//	│ config       │ ""            │ Path to a YAML config file           │
//	└──────────────┴───────────────┴──────────────────────────────────────┘
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	cferrors "github.com/vnykmshr/chronoflow/pkg/common/errors"
	"github.com/vnykmshr/chronoflow/pkg/common/validation"
	"github.com/vnykmshr/chronoflow/pkg/scheduling/workerpool"
)

// EnvPrefix prefixes every environment variable, e.g. CHRONOFLOW_WORKERS.
const EnvPrefix = "CHRONOFLOW"

// Keys shared by flags, environment and config file.
const (
	KeyWorkers      = "workers"
	KeyPollInterval = "poll-interval"
	KeySize         = "size"
	KeySeed         = "seed"
	KeyLogLevel     = "log-level"
	KeyLogFormat    = "log-format"
	KeyMetricsAddr  = "metrics-addr"
	KeyConfigFile   = "config"
)

// Configuration holds the command settings.
type Configuration struct {
	Workers      int
	PollInterval time.Duration
	Size         int
	Seed         int64
	LogLevel     string
	LogFormat    string
	MetricsAddr  string
}

// Default returns the default configuration.
func Default() Configuration {
	return Configuration{
		Workers:      0,
		PollInterval: workerpool.DefaultPollInterval,
		Size:         100,
		Seed:         0,
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Int(KeyWorkers, d.Workers, "number of workers (0 = CPUs - 1, at least 1)")
	fs.Duration(KeyPollInterval, d.PollInterval, "longest an idle worker waits before checking the barrier")
	fs.Int(KeySize, d.Size, "matrix rows and columns")
	fs.Int64(KeySeed, d.Seed, "random seed (0 = current time)")
	fs.String(KeyLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.String(KeyLogFormat, d.LogFormat, "log format: console, json")
	fs.String(KeyMetricsAddr, d.MetricsAddr, "serve Prometheus metrics on this address, e.g. :9090")
	fs.String(KeyConfigFile, "", "path to a YAML config file")
}

// Load resolves the configuration from v, fs, the environment and the file
// named by the config key.
func Load(v *viper.Viper, fs *pflag.FlagSet) (Configuration, error) {
	d := Default()
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyPollInterval, d.PollInterval)
	v.SetDefault(KeySize, d.Size)
	v.SetDefault(KeySeed, d.Seed)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyMetricsAddr, d.MetricsAddr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Configuration{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Configuration{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	c := Configuration{
		Workers:      v.GetInt(KeyWorkers),
		PollInterval: v.GetDuration(KeyPollInterval),
		Size:         v.GetInt(KeySize),
		Seed:         v.GetInt64(KeySeed),
		LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:    strings.ToLower(v.GetString(KeyLogFormat)),
		MetricsAddr:  v.GetString(KeyMetricsAddr),
	}
	if err := c.Validate(); err != nil {
		return Configuration{}, err
	}
	return c, nil
}

// Validate checks ranges and enumerations.
func (c Configuration) Validate() error {
	if err := validation.ValidateNonNegative("config", KeyWorkers, c.Workers); err != nil {
		return err
	}
	if err := validation.ValidatePositiveDuration("config", KeyPollInterval, c.PollInterval); err != nil {
		return err
	}
	if err := validation.ValidatePositive("config", KeySize, c.Size); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return cferrors.NewValidationError("config", KeyLogLevel, c.LogLevel, "unknown level").
			WithHint("use debug, info, warn or error")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return cferrors.NewValidationError("config", KeyLogFormat, c.LogFormat, "unknown format").
			WithHint("use console or json")
	}
	return nil
}

// PoolConfig returns the worker pool settings.
func (c Configuration) PoolConfig() workerpool.Config {
	return workerpool.Config{
		Name:         "chronoflow",
		WorkerCount:  c.Workers,
		PollInterval: c.PollInterval,
	}
}
