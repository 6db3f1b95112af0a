// Package config loads pipeline settings from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config carries every tunable the pipeline reads. Values resolve in the
// usual viper order: explicit config file, then REFMINE_* environment
// variables, then the defaults below.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `mapstructure:"db_path"`

	// RequestsPerMinute budgets outbound assessment calls.
	RequestsPerMinute int `mapstructure:"requests_per_minute"`

	// Model names the chat completions model; empty means the client
	// default.
	Model string `mapstructure:"model"`

	// BaseURL overrides the completions endpoint, for compatible providers.
	BaseURL string `mapstructure:"base_url"`

	// MaxPages is the structural precheck threshold for assessment.
	MaxPages int `mapstructure:"max_pages"`
}

const (
	configName = "refmine"
	envPrefix  = "REFMINE"

	defaultDBPath   = "refmine.db"
	defaultRPM      = 10
	defaultMaxPages = 50
)

// Load reads configuration. cfgFile may be empty, in which case
// refmine.yaml is searched for in the working directory and
// ~/.config/refmine. A missing config file is not an error; a malformed or
// explicitly named but absent one is.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("db_path", defaultDBPath)
	v.SetDefault("requests_per_minute", defaultRPM)
	v.SetDefault("model", "")
	v.SetDefault("base_url", "")
	v.SetDefault("max_pages", defaultMaxPages)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.RequestsPerMinute <= 0 {
		return Config{}, fmt.Errorf("requests_per_minute must be positive, got %d", cfg.RequestsPerMinute)
	}
	if cfg.MaxPages <= 0 {
		return Config{}, fmt.Errorf("max_pages must be positive, got %d", cfg.MaxPages)
	}
	return cfg, nil
}
