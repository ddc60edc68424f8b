package inventory

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
)

const snapshotJSON = `[
	{"id": 1, "name": "Espresso Blend", "category": "Coffee", "price": 24.99, "sku": "COF-001"},
	{"id": "tea-7", "name": "Green Tea", "category": "", "price": 3.5},
	{"id": 9, "name": "Gift Card", "category": "Misc"}
]`

func newCatalog(t *testing.T, cfg *Config) *Catalog {
	t.Helper()
	c, err := New("products", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func createInventoryDB(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE products (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT,
			price REAL,
			sku TEXT,
			active INTEGER NOT NULL DEFAULT 1
		);
		INSERT INTO products (id, name, category, price, sku, active) VALUES
			(1, 'espresso Blend', 'Coffee', 24.99, 'COF-001', 1),
			(2, 'Americano', 'Coffee', 3, 'COF-002', 1),
			(3, 'Discontinued Mug', 'Merch', 9.5, 'MER-001', 0),
			(4, 'Croissant', NULL, 2.25, NULL, 1),
			(5, 'Mystery Box', 'Misc', NULL, NULL, 1);
	`)
	require.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
	assert.Error(t, (&Config{Path: "x.db", ItemType: "invoice"}).Validate())
	assert.NoError(t, (&Config{Path: "x.db"}).Validate())
	assert.NoError(t, (&Config{Path: "x.db", ItemType: "brand"}).Validate())
}

func TestSQLiteInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")
	createInventoryDB(t, path)

	c := newCatalog(t, &Config{Path: path})
	assert.Equal(t, core.TypeProduct, c.ItemType())
	assert.Equal(t, "inventory", c.Kind())
	assert.Equal(t, []string{path}, c.Paths())

	items, err := c.Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Item{
		{ID: "2", Title: "Americano", Subtitle: "Coffee - $3.00", Type: core.TypeProduct, Target: "/products/2"},
		{ID: "4", Title: "Croissant", Subtitle: "$2.25", Type: core.TypeProduct, Target: "/products/4"},
		{ID: "1", Title: "espresso Blend", Subtitle: "Coffee - $24.99", Type: core.TypeProduct, Target: "/products/1"},
		{ID: "5", Title: "Mystery Box", Subtitle: "Misc", Type: core.TypeProduct, Target: "/products/5"},
	}, items)
}

func TestJSONSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0o644))

	c := newCatalog(t, &Config{Path: path, Currency: "KSh "})
	items, err := c.Items(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []core.Item{
		{ID: "1", Title: "Espresso Blend", Subtitle: "Coffee - KSh 24.99", Type: core.TypeProduct, Target: "/products/1"},
		{ID: "tea-7", Title: "Green Tea", Subtitle: "KSh 3.50", Type: core.TypeProduct, Target: "/products/tea-7"},
		{ID: "9", Title: "Gift Card", Subtitle: "Misc", Type: core.TypeProduct, Target: "/products/9"},
	}, items)
}

func TestCompressedSnapshot(t *testing.T) {
	encoder, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := encoder.EncodeAll([]byte(snapshotJSON), nil)
	require.NoError(t, encoder.Close())

	path := filepath.Join(t.TempDir(), "products.json.zst")
	require.NoError(t, os.WriteFile(path, compressed, 0o644))

	c := newCatalog(t, &Config{Path: path, ItemType: "category"})
	items, err := c.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Espresso Blend", items[0].Title)
	assert.Equal(t, core.TypeCategory, items[0].Type)
}

func TestMissingInventoryIsEmpty(t *testing.T) {
	c := newCatalog(t, &Config{Path: filepath.Join(t.TempDir(), "none.db")})

	items, err := c.Items(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCorruptInventory(t *testing.T) {
	dir := t.TempDir()

	badJSON := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(badJSON, []byte(`{"not":"a list"}`), 0o644))
	_, err := newCatalog(t, &Config{Path: badJSON}).Items(context.Background())
	assert.Error(t, err)

	badID := filepath.Join(dir, "ids.json")
	require.NoError(t, os.WriteFile(badID, []byte(`[{"id": true, "name": "x"}]`), 0o644))
	_, err = newCatalog(t, &Config{Path: badID}).Items(context.Background())
	assert.Error(t, err)

	badZst := filepath.Join(dir, "products.json.zst")
	require.NoError(t, os.WriteFile(badZst, []byte("plain text"), 0o644))
	_, err = newCatalog(t, &Config{Path: badZst}).Items(context.Background())
	assert.Error(t, err)

	noTable := filepath.Join(dir, "empty.db")
	db, err := sql.Open("sqlite3", noTable)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (id INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	_, err = newCatalog(t, &Config{Path: noTable}).Items(context.Background())
	assert.Error(t, err)
}

func TestFactoryThroughRegistry(t *testing.T) {
	registry := core.GetGlobalRegistry()
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0o644))

	require.NoError(t, registry.CreateCatalog("products", "inventory", &Config{Path: path}))
	defer registry.Close()

	c, err := registry.GetCatalog("products")
	require.NoError(t, err)
	items, err := c.Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 3)

	assert.Error(t, registry.CreateCatalog("broken", "inventory", &Config{}))
}
