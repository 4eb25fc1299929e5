// Package config loads leaky's configuration from environment variables
// (LEAKY_* prefix), a YAML file, and defaults, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete configuration for a leaky working directory.
type Config struct {
	// BlockStore configures the content-addressed block backend.
	BlockStore BlockStoreConfig `mapstructure:"block_store"`

	// Remote configures the remote head this working directory syncs against.
	Remote RemoteConfig `mapstructure:"remote"`

	// Sync controls staging and watch behavior.
	Sync SyncConfig `mapstructure:"sync"`

	// Logging controls the ambient zap logger.
	Logging LoggingConfig `mapstructure:"logging"`
}

// BlockStoreConfig selects and configures the block.Client implementation.
type BlockStoreConfig struct {
	// Type is "kubo" or "memory". memory is for tests and scratch repos;
	// it does not persist across process restarts.
	Type string `mapstructure:"type"`

	// KuboAPI is the Kubo HTTP API base URL, used when Type == "kubo".
	KuboAPI string `mapstructure:"kubo_api"`
}

// RemoteConfig configures the compare-and-swap head this repository pushes to.
type RemoteConfig struct {
	// URL is the remote head HTTP endpoint base URL.
	URL string `mapstructure:"url"`

	// Credentials, if set, is sent as a bearer token on push.
	Credentials string `mapstructure:"credentials"`

	// CASRetries is loaded from remote.cas_retries (default 3). No command
	// reads it: push does not retry after a HeadAdvanced conflict.
	CASRetries int `mapstructure:"cas_retries"`
}

// SyncConfig controls staging, ignore rules, and watch debouncing.
type SyncConfig struct {
	// Ignore lists additional glob patterns to exclude from staging, on top
	// of the always-ignored .leaky directory.
	Ignore []string `mapstructure:"ignore"`

	// WatchDebounce is how long the watcher waits for filesystem activity
	// to settle before staging and pushing.
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

// LoggingConfig controls the zap logger built at startup.
type LoggingConfig struct {
	// Level is the minimum level to log: debug, info, warn, or error.
	Level string `mapstructure:"level"`

	// Format is "console" or "json".
	Format string `mapstructure:"format"`
}

// Load reads configuration from workDir/.leaky/config.yaml, overlaid by
// LEAKY_* environment variables, falling back to defaults for anything
// unset. A missing config file is not an error.
func Load(workDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEAKY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(workDir + "/.leaky")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read %s/.leaky/config.yaml: %w", workDir, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("block_store.type", "kubo")
	v.SetDefault("block_store.kubo_api", "http://localhost:5001/api/v0")
	v.SetDefault("remote.cas_retries", 3)
	v.SetDefault("sync.watch_debounce", 500*time.Millisecond)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
