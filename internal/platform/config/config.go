package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting. Values come from DefaultConfig, then
// an optional YAML file, then PROGRESSCARD_* environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Cache    CacheConfig    `yaml:"cache"`
	Progress ProgressConfig `yaml:"progress"`
	Card     CardConfig     `yaml:"card"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	SiteURL   string `yaml:"site_url"`
	StaticDir string `yaml:"static_dir"`
}

type StoreConfig struct {
	Driver string      `yaml:"driver"` // sqlite, yaml
	Path   string      `yaml:"path"`   // database file or fixture file
	Retry  RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts  int     `yaml:"max_attempts"`
	InitialDelay string  `yaml:"initial_delay"`
	MaxDelay     string  `yaml:"max_delay"`
	Multiplier   float64 `yaml:"multiplier"`
}

type CacheConfig struct {
	Dir    string `yaml:"dir"`
	MaxAge string `yaml:"max_age"`
	Format string `yaml:"format"` // png, svg
}

// ProgressConfig pins the category schema. TotalItems must be raised
// whenever items are added to any category, and SchemaVersion bumped when
// the category list itself changes.
type ProgressConfig struct {
	SchemaVersion int      `yaml:"schema_version"`
	Categories    []string `yaml:"categories"`
	TotalItems    int      `yaml:"total_items"`
	Concurrency   int      `yaml:"concurrency"`
}

type CardConfig struct {
	Width       int      `yaml:"width"`
	Height      int      `yaml:"height"`
	BrandColor  string   `yaml:"brand_color"`
	TextColor   string   `yaml:"text_color"`
	ChipColor   string   `yaml:"chip_color"`
	FooterColor string   `yaml:"footer_color"`
	RingCenterX int      `yaml:"ring_center_x"`
	RingCenterY int      `yaml:"ring_center_y"`
	RingRadius  int      `yaml:"ring_radius"`
	Lines       []string `yaml:"lines"`
	Footer      string   `yaml:"footer"`
	FontPath    string   `yaml:"font_path"`
	LogoPath    string   `yaml:"logo_path"`
	DefaultCard string   `yaml:"default_card"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

const envPrefix = "PROGRESSCARD_"

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8080",
			SiteURL:   "https://voterpourleclimat.fr",
			StaticDir: "static",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   filepath.Join("data", "records.db"),
			Retry: RetryConfig{
				MaxAttempts:  3,
				InitialDelay: "100ms",
				MaxDelay:     "2s",
				Multiplier:   2,
			},
		},
		Cache: CacheConfig{
			Dir:    "cards",
			MaxAge: "1h",
			Format: "png",
		},
		Progress: ProgressConfig{
			SchemaVersion: 1,
			Categories:    []string{"constitution", "feeding", "housing", "transport", "consumption", "production"},
			TotalItems:    149,
			Concurrency:   6,
		},
		Card: CardConfig{
			Width:       600,
			Height:      315,
			BrandColor:  "#03b37f",
			TextColor:   "#ffffff",
			ChipColor:   "#1d3557",
			FooterColor: "#eeeeee",
			RingCenterX: 460,
			RingCenterY: 130,
			RingRadius:  90,
			Lines:       []string{"a voté sur les mesures", "Et vous ?"},
			Footer:      "voterpourleclimat.fr",
			DefaultCard: "default.png",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path on top of the defaults. An empty path or a missing file
// leaves the defaults untouched. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	str := map[string]*string{
		"ADDR":          &c.Server.Addr,
		"SITE_URL":      &c.Server.SiteURL,
		"STATIC_DIR":    &c.Server.StaticDir,
		"STORE_DRIVER":  &c.Store.Driver,
		"STORE_PATH":    &c.Store.Path,
		"CACHE_DIR":     &c.Cache.Dir,
		"CACHE_MAX_AGE": &c.Cache.MaxAge,
		"CACHE_FORMAT":  &c.Cache.Format,
		"FONT_PATH":     &c.Card.FontPath,
		"LOGO_PATH":     &c.Card.LogoPath,
		"LOG_LEVEL":     &c.Logging.Level,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	if v := os.Getenv(envPrefix + "TOTAL_ITEMS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sTOTAL_ITEMS: %w", envPrefix, err)
		}
		c.Progress.TotalItems = n
	}
	if v := os.Getenv(envPrefix + "CATEGORIES"); v != "" {
		var cats []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cats = append(cats, part)
			}
		}
		c.Progress.Categories = cats
	}
	return nil
}

func (c Config) Validate() error {
	if len(c.Progress.Categories) == 0 {
		return fmt.Errorf("progress.categories must not be empty")
	}
	seen := map[string]bool{}
	for _, name := range c.Progress.Categories {
		if seen[name] {
			return fmt.Errorf("progress.categories: duplicate %q", name)
		}
		seen[name] = true
	}
	if c.Progress.TotalItems <= 0 {
		return fmt.Errorf("progress.total_items must be positive, got %d", c.Progress.TotalItems)
	}
	if age, err := c.MaxAge(); err != nil {
		return err
	} else if age <= 0 {
		return fmt.Errorf("cache.max_age must be positive")
	}
	switch c.Cache.Format {
	case "png", "svg":
	default:
		return fmt.Errorf("cache.format: unsupported %q", c.Cache.Format)
	}
	switch c.Store.Driver {
	case "sqlite", "yaml":
	default:
		return fmt.Errorf("store.driver: unsupported %q", c.Store.Driver)
	}
	if c.Card.Width <= 0 || c.Card.Height <= 0 {
		return fmt.Errorf("card size must be positive, got %dx%d", c.Card.Width, c.Card.Height)
	}
	if _, _, err := c.RetryDelays(); err != nil {
		return err
	}
	return nil
}

func (c Config) MaxAge() (time.Duration, error) {
	d, err := time.ParseDuration(c.Cache.MaxAge)
	if err != nil {
		return 0, fmt.Errorf("cache.max_age: %w", err)
	}
	return d, nil
}

func (c Config) RetryDelays() (initial, max time.Duration, err error) {
	if initial, err = time.ParseDuration(c.Store.Retry.InitialDelay); err != nil {
		return 0, 0, fmt.Errorf("store.retry.initial_delay: %w", err)
	}
	if max, err = time.ParseDuration(c.Store.Retry.MaxDelay); err != nil {
		return 0, 0, fmt.Errorf("store.retry.max_delay: %w", err)
	}
	return initial, max, nil
}
