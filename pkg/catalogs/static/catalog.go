// Package static serves small hand-maintained tables, such as the
// settings screens and pages of the POS application, as a catalog.
//
// Tables are TOML files with one [[items]] entry per item. The builtin
// "settings" and "pages" tables ship with the binary.
package static

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
)

//go:embed builtin/*.toml
var builtinFS embed.FS

const kind = "static"

func init() {
	core.RegisterCatalogPrototype(kind, &Catalog{})
}

type Config struct {
	ItemType string `toml:"item_type"`
	Path     string `toml:"path"`
	Builtin  string `toml:"builtin"`
}

func (c *Config) Validate() error {
	if _, err := core.ParseItemType(c.ItemType); err != nil {
		return fmt.Errorf("item_type: %w", err)
	}

	switch {
	case c.Path == "" && c.Builtin == "":
		return errors.New("one of path or builtin is required")
	case c.Path != "" && c.Builtin != "":
		return errors.New("path and builtin are mutually exclusive")
	case c.Builtin != "":
		if !isBuiltin(c.Builtin) {
			return fmt.Errorf("unknown builtin table %q (available: %v)", c.Builtin, Builtins())
		}
	}
	return nil
}

// Builtins lists the embedded tables.
func Builtins() []string {
	return []string{"pages", "settings"}
}

func isBuiltin(name string) bool {
	for _, b := range Builtins() {
		if b == name {
			return true
		}
	}
	return false
}

type table struct {
	Items []core.Item `toml:"items"`
}

type Catalog struct {
	config       *Config
	instanceName string
	itemType     core.ItemType
}

// New creates a static catalog. config must be a *Config.
func New(instanceName string, config any) (*Catalog, error) {
	cfg, ok := config.(*Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("invalid config type for static catalog")
	}
	typ, err := core.ParseItemType(cfg.ItemType)
	if err != nil {
		return nil, err
	}
	return &Catalog{config: cfg, instanceName: instanceName, itemType: typ}, nil
}

func (c *Catalog) Name() string { return c.instanceName }

func (c *Catalog) Kind() string { return kind }

func (c *Catalog) ItemType() core.ItemType { return c.itemType }

func (c *Catalog) ConfigType() any { return &Config{} }

func (c *Catalog) Factory(instanceName string, config any) (core.Catalog, error) {
	return New(instanceName, config)
}

// Paths returns the table file. Builtin tables cannot change at runtime.
func (c *Catalog) Paths() []string {
	if c.config.Path == "" {
		return nil
	}
	return []string{c.config.Path}
}

// Items reads the table. Files are re-read on every call so a rebuild
// sees edits.
func (c *Catalog) Items(ctx context.Context) ([]core.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := c.read()
	if err != nil {
		return nil, err
	}

	var t table
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing table %s: %w", c.source(), err)
	}

	items := make([]core.Item, 0, len(t.Items))
	for _, item := range t.Items {
		item.Type = c.itemType
		items = append(items, item)
	}
	return items, nil
}

func (c *Catalog) read() ([]byte, error) {
	if c.config.Builtin != "" {
		data, err := builtinFS.ReadFile("builtin/" + c.config.Builtin + ".toml")
		if err != nil {
			return nil, fmt.Errorf("reading builtin table %s: %w", c.config.Builtin, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(c.config.Path)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", c.config.Path, err)
	}
	return data, nil
}

func (c *Catalog) source() string {
	if c.config.Builtin != "" {
		return "builtin:" + c.config.Builtin
	}
	return c.config.Path
}

func (c *Catalog) Close() error { return nil }
