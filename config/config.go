// Package config loads server settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port       string        `yaml:"port"`
	PresetFile string        `yaml:"preset_file"`
	BoardTTL   time.Duration `yaml:"board_ttl"`
	ReapEvery  time.Duration `yaml:"reap_every"`
	LogLevel   string        `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Port:       "8080",
		PresetFile: "/data/presets.json",
		BoardTTL:   24 * time.Hour,
		ReapEvery:  time.Minute,
		LogLevel:   "info",
	}
}

// Load starts from Default, overlays the YAML file at path (skipped when path
// is empty or the file does not exist), then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Port = v
	}
	if v, ok := lookup("PRESET_FILE"); ok && v != "" {
		c.PresetFile = v
	}
	if v, ok := lookup("RANDPIPE_BOARD_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RANDPIPE_BOARD_TTL: %w", err)
		}
		c.BoardTTL = d
	}
	if v, ok := lookup("RANDPIPE_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	if c.PresetFile == "" {
		return errors.New("preset_file must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
