package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfigPath = "TCBF_CONFIG"

// Config represents the tcbf configuration file (~/.config/tcbf/config.yaml).
// Numeric fields are pointers so we can distinguish "not set" from zero values.
type Config struct {
	// Problem shape
	Pixels  *int64 `yaml:"pixels"`
	Frames  *int64 `yaml:"frames"`
	Samples *int64 `yaml:"samples"`

	// Engine
	Backend string `yaml:"backend"`
	Variant string `yaml:"variant"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string   `yaml:"server_address"`
	RateLimit     *float64 `yaml:"rate_limit"`
	Burst         *int64   `yaml:"burst"`
	Weights       string   `yaml:"weights"`
}

// fileConfig is loaded once by the root Before hook.
var fileConfig Config

// configPath resolves the config file location: the --config flag, then
// $TCBF_CONFIG, then the user config directory.
func configPath(flag string) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(envConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tcbf", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config; a
// malformed one is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyProblemConfig applies config file defaults to the shape and engine
// flags when the corresponding CLI flag was not explicitly set.
func applyProblemConfig(c *cli.Command, cfg Config) {
	if cfg.Pixels != nil && !c.IsSet("pixels") {
		pixels = *cfg.Pixels
	}
	if cfg.Frames != nil && !c.IsSet("frames") {
		frames = *cfg.Frames
	}
	if cfg.Samples != nil && !c.IsSet("samples") {
		samples = *cfg.Samples
	}
	applyEngineConfig(c, cfg)
}

func applyEngineConfig(c *cli.Command, cfg Config) {
	if cfg.Backend != "" && !c.IsSet("backend") {
		backendName = cfg.Backend
	}
	if cfg.Variant != "" && !c.IsSet("variant") {
		variant = cfg.Variant
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, rateLimit *float64, burst *int64, weights *string) {
	applyProblemConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.RateLimit != nil && !c.IsSet("rate-limit") {
		*rateLimit = *cfg.RateLimit
	}
	if cfg.Burst != nil && !c.IsSet("burst") {
		*burst = *cfg.Burst
	}
	if cfg.Weights != "" && !c.IsSet("weights") {
		*weights = cfg.Weights
	}
}
