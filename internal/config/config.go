// Package config loads the small settings file that points the CLI at
// a world and tunes how the walker runs. This is the "configuration
// loader" external collaborator spec.md §6 mentions but leaves out of
// the core's scope — it only ever hands the core a path.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Config is the CLI's settings file.
type Config struct {
	// WorldRoot is the directory containing a region/ subtree.
	WorldRoot string `toml:"world_root"`
	// Workers is the number of region files processed concurrently.
	// Zero or negative means sequential.
	Workers int `toml:"workers"`
	// LogLevel is passed to logging.New (debug/info/warn/error).
	LogLevel string `toml:"log_level"`
}

// Default returns the zero-value Config with its documented
// fallbacks filled in.
func Default() Config {
	return Config{Workers: 1, LogLevel: "info"}
}

// Load reads and parses a TOML config file at path, starting from
// Default() so a partially specified file still yields usable
// settings.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.WorldRoot == "" {
		return cfg, fmt.Errorf("config: %s: world_root is required", path)
	}
	return cfg, nil
}
