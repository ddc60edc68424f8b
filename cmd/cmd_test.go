package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/catalogs/static"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
)

const customersTable = `
[[items]]
id = "c-1"
title = "Alice Mwangi"
subtitle = "alice@example.com"
target = "/customers/c-1"

[[items]]
id = "c-2"
title = "Brian Otieno"
target = "/customers/c-2"
`

// writeTestConfig writes a config with the builtin settings table and a
// customers table on disk, storing state under a temp dir.
func writeTestConfig(t *testing.T, extra string) (configPath, customersPath string) {
	t.Helper()
	dir := t.TempDir()

	customersPath = filepath.Join(dir, "customers.toml")
	require.NoError(t, os.WriteFile(customersPath, []byte(customersTable), 0o644))

	configPath = filepath.Join(dir, "config.toml")
	content := `
storage_dir = "` + filepath.ToSlash(filepath.Join(dir, "data")) + `"
debounce = "10ms"
result_limit = 5

[[catalogs]]
name = "settings"
type = "static"
[catalogs.config]
item_type = "setting"
builtin = "settings"

[[catalogs]]
name = "customers"
type = "static"
[catalogs.config]
item_type = "customer"
path = "` + filepath.ToSlash(customersPath) + `"
` + extra
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath, customersPath
}

func TestConvertRawConfigToType(t *testing.T) {
	raw := map[string]any{"item_type": "page", "builtin": "pages"}

	out, err := convertRawConfigToType(&static.Config{}, raw)
	require.NoError(t, err)

	cfg, ok := out.(*static.Config)
	require.True(t, ok)
	assert.Equal(t, "page", cfg.ItemType)
	assert.Equal(t, "pages", cfg.Builtin)

	empty, err := convertRawConfigToType(&static.Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, &static.Config{}, empty)
}

func TestLoadRuntimeBuildsIndexInConfigOrder(t *testing.T) {
	configPath, customersPath := writeTestConfig(t, "")

	rt, err := loadRuntime(context.Background(), configPath, runtimeOptions{ephemeral: true})
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, []string{"settings", "customers"}, rt.registry.ListCatalogs())
	assert.Equal(t, 5, rt.cfg.ResultLimit)

	_, ok := rt.index.Lookup(core.TypeSetting, "receipt")
	assert.True(t, ok)
	alice, ok := rt.index.Lookup(core.TypeCustomer, "c-1")
	require.True(t, ok)
	assert.Equal(t, "Alice Mwangi", alice.Title)

	assert.Equal(t, []string{customersPath}, rt.watchPaths())
}

func TestLoadRuntimeSkipIndex(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	rt, err := loadRuntime(context.Background(), configPath, runtimeOptions{ephemeral: true, skipIndex: true})
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, 0, rt.index.Len())
	assert.NotZero(t, rt.rebuild(context.Background()).Len())
}

func TestLoadRuntimeUnknownCatalogKind(t *testing.T) {
	configPath, _ := writeTestConfig(t, `
[[catalogs]]
name = "loyalty"
type = "loyalty-points"
`)

	_, err := loadRuntime(context.Background(), configPath, runtimeOptions{ephemeral: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCatalogNotFound)
}

func TestLoadRuntimeInvalidCatalogConfig(t *testing.T) {
	configPath, _ := writeTestConfig(t, `
[[catalogs]]
name = "broken"
type = "static"
[catalogs.config]
item_type = "invoice"
builtin = "pages"
`)

	_, err := loadRuntime(context.Background(), configPath, runtimeOptions{ephemeral: true})
	assert.ErrorContains(t, err, "broken")
}

func TestRecentSearchesPersistInStateDB(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	rt, err := loadRuntime(context.Background(), configPath, runtimeOptions{skipIndex: true})
	require.NoError(t, err)
	assert.True(t, rt.recent.Promote("coffee"))
	assert.True(t, rt.recent.Promote("receipt"))
	require.NoError(t, rt.Close())
	assert.FileExists(t, rt.cfg.StatePath())

	rt, err = loadRuntime(context.Background(), configPath, runtimeOptions{skipIndex: true})
	require.NoError(t, err)
	defer rt.Close()
	assert.Equal(t, []string{"receipt", "coffee"}, rt.recent.List())
}

func TestEphemeralRuntimeDoesNotTouchStateDB(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	rt, err := loadRuntime(context.Background(), configPath, runtimeOptions{ephemeral: true, skipIndex: true})
	require.NoError(t, err)
	rt.recent.Promote("coffee")
	require.NoError(t, rt.Close())

	assert.NoFileExists(t, rt.cfg.StatePath())
}
