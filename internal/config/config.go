// Package config loads the formplugin YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formplugin/pkg/form"
	"github.com/goliatone/go-formplugin/pkg/plugin"
	"github.com/goliatone/go-formplugin/pkg/transport/wspeer"
)

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config holds the server and session settings.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Plugin    PluginConfig    `yaml:"plugin"`
	Storage   StorageConfig   `yaml:"storage"`
	Theme     ThemeConfig     `yaml:"theme"`
	Logging   LoggingConfig   `yaml:"logging"`
	Transport TransportConfig `yaml:"transport"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	AssetsPrefix    string `yaml:"assets_prefix"`
}

// PluginConfig configures every session.
type PluginConfig struct {
	// Referrer is the trusted host page URL; outbound messages go to its origin.
	Referrer    string   `yaml:"referrer"`
	Host        string   `yaml:"host"`
	RulesFile   string   `yaml:"rules_file"`
	BackScreens []string `yaml:"back_screens"`
	Locale      string   `yaml:"locale"`
}

// StorageConfig selects the init-data backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ThemeConfig is passed to the HTML renderer.
type ThemeConfig struct {
	Name    string            `yaml:"name"`
	Variant string            `yaml:"variant"`
	CSSVars map[string]string `yaml:"css_vars"`
	Tokens  map[string]string `yaml:"tokens"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// TransportConfig configures the host websocket.
type TransportConfig struct {
	OriginPatterns []string `yaml:"origin_patterns"`
	Rate           float64  `yaml:"rate"`
	Burst          int      `yaml:"burst"`
	ReadLimit      int64    `yaml:"read_limit"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
			AssetsPrefix:    "/assets",
		},
		Plugin: PluginConfig{
			Host:        "formplugin",
			BackScreens: slices.Clone(plugin.DefaultBackScreens),
			Locale:      "en",
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
		},
		Theme: ThemeConfig{
			Name:    "default",
			Variant: "light",
		},
		Transport: TransportConfig{
			Rate:      20,
			Burst:     40,
			ReadLimit: 1 << 20,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.Plugin.RulesFile != "" && !filepath.IsAbs(cfg.Plugin.RulesFile) {
		cfg.Plugin.RulesFile = filepath.Join(filepath.Dir(path), cfg.Plugin.RulesFile)
	}
	cfg.applyEnvOverrides()
	return cfg, cfg.Validate()
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FORMPLUGIN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FORMPLUGIN_REFERRER"); v != "" {
		c.Plugin.Referrer = v
	}
	if v := os.Getenv("FORMPLUGIN_STORAGE_DSN"); v != "" {
		c.Storage.Driver = StorageSQLite
		c.Storage.DSN = v
	}
	if v := os.Getenv("FORMPLUGIN_DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		c.Logging.Debug = true
	}
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn is required for sqlite")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if len(c.Plugin.BackScreens) == 0 {
		return errors.New("config: plugin.back_screens must not be empty")
	}
	if !slices.Contains(c.Plugin.BackScreens, form.ScreenActivityByID) {
		return fmt.Errorf("config: plugin.back_screens must include %q", form.ScreenActivityByID)
	}
	if c.Transport.Rate < 0 || c.Transport.Burst < 0 {
		return errors.New("config: transport rate and burst must not be negative")
	}
	return nil
}

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// RendererTheme converts the theme section for renderers.
func (c *Config) RendererTheme() *theme.RendererConfig {
	if c.Theme.Name == "" && len(c.Theme.CSSVars) == 0 {
		return nil
	}
	return &theme.RendererConfig{
		Theme:   c.Theme.Name,
		Variant: c.Theme.Variant,
		CSSVars: c.Theme.CSSVars,
		Tokens:  c.Theme.Tokens,
	}
}

// PeerOptions converts the transport section for wspeer.Accept.
func (c *Config) PeerOptions() wspeer.Options {
	return wspeer.Options{
		OriginPatterns: slices.Clone(c.Transport.OriginPatterns),
		Rate:           c.Transport.Rate,
		Burst:          c.Transport.Burst,
		ReadLimit:      c.Transport.ReadLimit,
	}
}
