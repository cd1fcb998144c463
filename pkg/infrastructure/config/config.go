package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/vsinha/replenish/pkg/application/services/demand"
	"github.com/vsinha/replenish/pkg/domain/entities"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "REPLENISH"

// Config holds the policy of a planning run.
// Each field maps to REPLENISH_<KEY> in the environment.
type Config struct {
	CoverageDays    int    `mapstructure:"COVERAGE_DAYS"`
	LookbackDays    int    `mapstructure:"LOOKBACK_DAYS"`
	DefaultEntity   string `mapstructure:"DEFAULT_ENTITY"`
	UnknownSupplier string `mapstructure:"UNKNOWN_SUPPLIER"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from the environment and, when configFile is set,
// from that file. Without a file, an optional replenish.{yaml,json,toml,env}
// in the working directory is used if present.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("COVERAGE_DAYS", demand.DefaultCoverageDays)
	v.SetDefault("LOOKBACK_DAYS", demand.DefaultLookbackDays)
	v.SetDefault("DEFAULT_ENTITY", "")
	v.SetDefault("UNKNOWN_SUPPLIER", entities.UnknownSupplier)
	v.SetDefault("LOG_LEVEL", "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("replenish")
		v.AddConfigPath(".")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the demand horizons and the log level
func (c *Config) Validate() error {
	if err := c.Demand().Validate(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Demand returns the demand engine policy
func (c *Config) Demand() demand.Config {
	return demand.Config{
		CoverageDays: c.CoverageDays,
		LookbackDays: c.LookbackDays,
	}
}

// Level returns the configured zerolog level, info when unset
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}
