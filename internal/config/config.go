// Package config loads the browser's read-only settings: a YAML file under
// ~/.marketplace, then environment overrides. Nothing here is ever written
// back; the app keeps no state between sessions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/marketplace/internal/catalog"
)

// DefaultSourceURL is the registry listing the browser reads.
const DefaultSourceURL = "https://cdn.jsdelivr.net/gh/logseq/marketplace@master/plugins.json"

// Source formats understood by fetch.NewSource.
const (
	FormatJSON = "json"
	FormatFeed = "feed"
)

// Config is the in-memory form of config.yaml.
type Config struct {
	Source   SourceConfig `yaml:"source"`
	UI       UIConfig     `yaml:"ui"`
	LogLevel string       `yaml:"log_level"`
	// DataDir holds logs, the event log and traces. Defaults to ~/.marketplace.
	DataDir string `yaml:"data_dir,omitempty"`
}

// SourceConfig describes the remote listing and how politely to fetch it.
type SourceConfig struct {
	URL           string        `yaml:"url"`
	Format        string        `yaml:"format"`
	Timeout       time.Duration `yaml:"timeout"`
	StaleTime     time.Duration `yaml:"stale_time"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
}

// UIConfig holds startup presentation choices.
type UIConfig struct {
	Theme    string `yaml:"theme"` // "dark" or "light"
	Category string `yaml:"category"`
}

// DefaultConfig mirrors the registry browser's built-in behaviour:
// ten minute staleness, dark theme, all categories.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:           DefaultSourceURL,
			Format:        FormatJSON,
			Timeout:       30 * time.Second,
			StaleTime:     10 * time.Minute,
			RatePerSecond: 0.5,
			Burst:         2,
		},
		UI: UIConfig{
			Theme:    "dark",
			Category: string(catalog.CategoryAll),
		},
		LogLevel: "info",
	}
}

// Dir returns ~/.marketplace.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".marketplace"), nil
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path (or the default location when path is empty), falling
// back to defaults when the file does not exist, then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from MARKETPLACE_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("MARKETPLACE_SOURCE_URL"); ok && v != "" {
		c.Source.URL = v
	}
	if v, ok := lookup("MARKETPLACE_SOURCE_FORMAT"); ok && v != "" {
		c.Source.Format = v
	}
	if v, ok := lookup("MARKETPLACE_STALE_TIME"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MARKETPLACE_STALE_TIME: %w", err)
		}
		c.Source.StaleTime = d
	}
	if v, ok := lookup("MARKETPLACE_RATE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MARKETPLACE_RATE: %w", err)
		}
		c.Source.RatePerSecond = f
	}
	if v, ok := lookup("MARKETPLACE_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("MARKETPLACE_THEME"); ok && v != "" {
		c.UI.Theme = v
	}
	if v, ok := lookup("MARKETPLACE_DATA_DIR"); ok && v != "" {
		c.DataDir = v
	}
	return nil
}

// Validate rejects settings the browser cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.URL) == "" {
		return errors.New("config: source.url is empty")
	}
	switch c.Source.Format {
	case FormatJSON, FormatFeed:
	default:
		return fmt.Errorf("config: source.format %q (want %s or %s)", c.Source.Format, FormatJSON, FormatFeed)
	}
	if c.Source.Timeout < 0 || c.Source.StaleTime < 0 {
		return errors.New("config: durations must not be negative")
	}
	if c.Source.RatePerSecond < 0 || c.Source.Burst < 0 {
		return errors.New("config: rate limits must not be negative")
	}
	if _, err := catalog.ParseCategory(c.UI.Category); err != nil {
		return fmt.Errorf("config: ui.category: %w", err)
	}
	switch strings.ToLower(c.UI.Theme) {
	case "", "dark", "light":
	default:
		return fmt.Errorf("config: ui.theme %q (want dark or light)", c.UI.Theme)
	}
	return nil
}

// Category returns the validated startup category.
func (c *Config) Category() catalog.Category {
	cat, err := catalog.ParseCategory(c.UI.Category)
	if err != nil {
		return catalog.CategoryAll
	}
	return cat
}

// DarkMode reports whether the UI starts in the dark palette.
func (c *Config) DarkMode() bool {
	return !strings.EqualFold(c.UI.Theme, "light")
}

// ResolveDataDir returns DataDir, defaulting to ~/.marketplace, and creates it.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}
