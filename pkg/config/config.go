package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

const (
	appName            = "possearch"
	templateStorageDir = "/home/user/.local/share/possearch"

	DefaultDebounce    = 300 * time.Millisecond
	DefaultResultLimit = 12
	DefaultListen      = "127.0.0.1:8787"
	DefaultRecentKey   = "recent_searches"
	StateDBName        = "state.db"
)

type Config struct {
	StorageDir  string        `toml:"storage_dir"`
	Debounce    Duration      `toml:"debounce"`
	ResultLimit int           `toml:"result_limit"`
	Listen      string        `toml:"listen"`
	RecentKey   string        `toml:"recent_key"`
	Catalogs    []CatalogInfo `toml:"catalogs"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// CatalogInfo configures one catalog instance. Config is decoded into the
// catalog kind's own config type when the catalog is created.
type CatalogInfo struct {
	Name   string `toml:"name"`
	Type   string `toml:"type"`
	Config any    `toml:"config"`
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	return defaultConfig(storageDir), nil
}

func defaultConfig(storageDir string) *Config {
	return &Config{
		StorageDir:  storageDir,
		Debounce:    Duration{DefaultDebounce},
		ResultLimit: DefaultResultLimit,
		Listen:      DefaultListen,
		RecentKey:   DefaultRecentKey,
		Catalogs:    DefaultCatalogs(storageDir),
	}
}

// DefaultCatalogs returns the catalogs of a stock install: builtin
// settings and pages, and products from the inventory database.
func DefaultCatalogs(storageDir string) []CatalogInfo {
	return []CatalogInfo{
		{Name: "settings", Type: "static", Config: map[string]any{"item_type": "setting", "builtin": "settings"}},
		{Name: "pages", Type: "static", Config: map[string]any{"item_type": "page", "builtin": "pages"}},
		{Name: "products", Type: "inventory", Config: map[string]any{"path": filepath.Join(storageDir, "inventory.db")}},
	}
}

// LoadConfig reads configPath. A missing file yields the default config;
// zero fields are filled with defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}

	if config.Debounce.Duration == 0 {
		config.Debounce = Duration{DefaultDebounce}
	}
	if config.ResultLimit == 0 {
		config.ResultLimit = DefaultResultLimit
	}
	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	if config.RecentKey == "" {
		config.RecentKey = DefaultRecentKey
	}

	return &config, nil
}

// Validate reports every problem found in the config.
func (c *Config) Validate() error {
	var errs []error
	if c.Debounce.Duration < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}
	if c.ResultLimit < 0 {
		errs = append(errs, fmt.Errorf("result_limit must not be negative, got %d", c.ResultLimit))
	}

	seen := make(map[string]struct{}, len(c.Catalogs))
	for i, info := range c.Catalogs {
		if info.Name == "" {
			errs = append(errs, fmt.Errorf("catalogs[%d]: name is required", i))
			continue
		}
		if _, dup := seen[info.Name]; dup {
			errs = append(errs, fmt.Errorf("catalogs[%d]: duplicate name %q", i, info.Name))
		}
		seen[info.Name] = struct{}{}
		if info.Type == "" {
			errs = append(errs, fmt.Errorf("catalog %s: type is required", info.Name))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
	}

	// Point the placeholder paths at the real storage directory
	return strings.ReplaceAll(configTemplate, templateStorageDir, storageDir), nil
}

// AddCatalog appends a catalog, replacing an existing one with the same
// name in place.
func (c *Config) AddCatalog(name, kind string, cfg any) {
	info := CatalogInfo{Name: name, Type: kind, Config: cfg}
	for i := range c.Catalogs {
		if c.Catalogs[i].Name == name {
			c.Catalogs[i] = info
			return
		}
	}
	c.Catalogs = append(c.Catalogs, info)
}

func (c *Config) GetCatalogConfig(name string) (string, any, error) {
	for _, info := range c.Catalogs {
		if info.Name == name {
			return info.Type, info.Config, nil
		}
	}
	return "", nil, fmt.Errorf("catalog %s not found", name)
}

// ListCatalogs returns catalog names in aggregation order.
func (c *Config) ListCatalogs() []string {
	names := make([]string, 0, len(c.Catalogs))
	for _, info := range c.Catalogs {
		names = append(names, info.Name)
	}
	return names
}

func (c *Config) RemoveCatalog(name string) {
	for i, info := range c.Catalogs {
		if info.Name == name {
			c.Catalogs = append(c.Catalogs[:i], c.Catalogs[i+1:]...)
			return
		}
	}
}

// StatePath returns the path of the state database inside StorageDir.
func (c *Config) StatePath() string {
	return filepath.Join(c.StorageDir, StateDBName)
}

// GetDefaultStorageDir returns the default storage directory, creating it
// when missing.
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	storageDir := filepath.Join(dataDir, appName)
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", storageDir, err)
	}

	return storageDir, nil
}

// GetConfigDir returns the configuration directory, creating it when
// missing.
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	appConfigDir := filepath.Join(configDir, appName)
	if err := os.MkdirAll(appConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", appConfigDir, err)
	}

	return appConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
