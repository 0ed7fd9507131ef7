// Package config loads oxyanim settings from TOML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned by Validate and Load for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the root of an oxyanim settings file.
type Config struct {
	Animation AnimationConfig `toml:"animation"`
	Log       LogConfig       `toml:"log"`
	Loader    LoaderConfig    `toml:"loader"`
}

// AnimationConfig sizes the animator.
type AnimationConfig struct {
	// Workers is the number of goroutines ticking instances. 0 or 1 ticks serially.
	Workers int `toml:"workers"`
	// MaxInstances is the initial instance capacity of the bone buffer.
	MaxInstances int `toml:"max_instances"`
}

// LogConfig configures the charmbracelet logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Prefix string `toml:"prefix"`
}

// LoaderConfig configures the asset cache.
type LoaderConfig struct {
	// Watch evicts cached models when their file changes.
	Watch bool `toml:"watch"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Animation: AnimationConfig{
			Workers:      1,
			MaxInstances: 8,
		},
		Log: LogConfig{
			Level:  "info",
			Prefix: "oxyanim",
		},
	}
}

// Load reads a TOML file over the defaults. Unknown keys are rejected.
//
// Parameters:
//   - path: the settings file
//
// Returns:
//   - *Config: the merged, validated settings
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and the log level name.
func (c *Config) Validate() error {
	if c.Animation.Workers < 0 {
		return fmt.Errorf("%w: animation.workers is %d", ErrInvalidConfig, c.Animation.Workers)
	}
	if c.Animation.MaxInstances < 0 {
		return fmt.Errorf("%w: animation.max_instances is %d", ErrInvalidConfig, c.Animation.MaxInstances)
	}
	if _, err := common.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	return nil
}
