// Package inventory turns the product inventory into a catalog. The
// inventory is read either from a SQLite database with a products table
// or from a JSON snapshot, optionally zstd-compressed.
package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/log"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/storage"
)

const (
	kind            = "inventory"
	defaultCurrency = "$"
)

var logger = log.ForService("catalog")

func init() {
	core.RegisterCatalogPrototype(kind, &Catalog{})
}

type Config struct {
	Path     string `toml:"path"`
	ItemType string `toml:"item_type"`
	Currency string `toml:"currency"`
}

func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}
	if c.ItemType != "" {
		if _, err := core.ParseItemType(c.ItemType); err != nil {
			return fmt.Errorf("item_type: %w", err)
		}
	}
	return nil
}

// Product is one inventory record. Price is nil when unknown.
type Product struct {
	ID       ProductID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Price    *float64  `json:"price"`
	SKU      string    `json:"sku"`
}

// ProductID accepts ids written as JSON strings or numbers.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %s", data)
	}
	*id = ProductID(n.String())
	return nil
}

type Catalog struct {
	config       *Config
	instanceName string
	itemType     core.ItemType
	currency     string
	decoder      *zstd.Decoder
}

// New creates an inventory catalog. config must be a *Config.
func New(instanceName string, config any) (*Catalog, error) {
	cfg, ok := config.(*Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("invalid config type for inventory catalog")
	}

	typ := core.TypeProduct
	if cfg.ItemType != "" {
		var err error
		if typ, err = core.ParseItemType(cfg.ItemType); err != nil {
			return nil, err
		}
	}

	currency := cfg.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &Catalog{
		config:       cfg,
		instanceName: instanceName,
		itemType:     typ,
		currency:     currency,
		decoder:      decoder,
	}, nil
}

func (c *Catalog) Name() string { return c.instanceName }

func (c *Catalog) Kind() string { return kind }

func (c *Catalog) ItemType() core.ItemType { return c.itemType }

func (c *Catalog) ConfigType() any { return &Config{} }

func (c *Catalog) Factory(instanceName string, config any) (core.Catalog, error) {
	return New(instanceName, config)
}

func (c *Catalog) Paths() []string {
	return []string{c.config.Path}
}

// Items loads the current inventory. A missing inventory is an empty
// catalog, not an error: a fresh install has no products yet.
func (c *Catalog) Items(ctx context.Context) ([]core.Item, error) {
	if _, err := os.Stat(c.config.Path); errors.Is(err, os.ErrNotExist) {
		logger.Warnf("inventory %s not found, catalog %s is empty", c.config.Path, c.instanceName)
		return []core.Item{}, nil
	}

	products, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]core.Item, 0, len(products))
	for _, p := range products {
		items = append(items, c.toItem(p))
	}
	logger.Debugf("catalog %s: %d products from %s", c.instanceName, len(items), c.config.Path)
	return items, nil
}

func (c *Catalog) load(ctx context.Context) ([]Product, error) {
	switch path := c.config.Path; {
	case strings.HasSuffix(path, ".json.zst"):
		return c.loadSnapshot(path, true)
	case strings.HasSuffix(path, ".json"):
		return c.loadSnapshot(path, false)
	default:
		return c.loadDatabase(ctx, path)
	}
}

func (c *Catalog) loadSnapshot(path string, compressed bool) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	if compressed {
		data, err = c.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing snapshot %s: %w", path, err)
		}
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return products, nil
}

func (c *Catalog) loadDatabase(ctx context.Context, path string) ([]Product, error) {
	db, err := storage.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warnf("failed to close inventory database: %v", err)
		}
	}()

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, category, price, sku
		FROM products
		WHERE active != 0
		ORDER BY name COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warnf("failed to close rows: %v", err)
		}
	}()

	var products []Product
	for rows.Next() {
		var (
			id       string
			name     sql.NullString
			category sql.NullString
			price    sql.NullFloat64
			sku      sql.NullString
		)
		if err := rows.Scan(&id, &name, &category, &price, &sku); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p := Product{
			ID:       ProductID(id),
			Name:     name.String,
			Category: category.String,
			SKU:      sku.String,
		}
		if price.Valid {
			p.Price = &price.Float64
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return products, nil
}

func (c *Catalog) toItem(p Product) core.Item {
	id := string(p.ID)
	item := core.Item{
		ID:       id,
		Title:    p.Name,
		Subtitle: c.subtitle(p),
		Type:     c.itemType,
	}
	if id != "" {
		item.Target = "/products/" + id
	}
	return item
}

// subtitle renders "Coffee - $24.99"; either half is left out when absent.
func (c *Catalog) subtitle(p Product) string {
	var parts []string
	if category := strings.TrimSpace(p.Category); category != "" {
		parts = append(parts, category)
	}
	if p.Price != nil {
		parts = append(parts, fmt.Sprintf("%s%.2f", c.currency, *p.Price))
	}
	return strings.Join(parts, " - ")
}

func (c *Catalog) Close() error {
	if c.decoder != nil {
		c.decoder.Close()
	}
	return nil
}
