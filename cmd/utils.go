package cmd

import (
	"context"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/config"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/index"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/log"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/recent"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/storage"
)

var logger = log.ForService("cmd")

// createCatalogsFromConfig creates the configured catalogs in config order.
func createCatalogsFromConfig(registry *core.Registry, cfg *config.Config) error {
	for _, name := range cfg.ListCatalogs() {
		kind, raw, err := cfg.GetCatalogConfig(name)
		if err != nil {
			return fmt.Errorf("getting config for catalog %s: %w", name, err)
		}

		configType, err := registry.ConfigTypeFor(kind)
		if err != nil {
			return fmt.Errorf("catalog %s: %w", name, err)
		}

		catalogConfig, err := convertRawConfigToType(configType, raw)
		if err != nil {
			return fmt.Errorf("converting config for catalog %s: %w", name, err)
		}

		if err := registry.CreateCatalog(name, kind, catalogConfig); err != nil {
			return fmt.Errorf("creating catalog %s: %w", name, err)
		}
	}

	return nil
}

// convertRawConfigToType decodes the generic TOML table into the
// catalog's typed config by round-tripping it through TOML.
func convertRawConfigToType(configType any, rawConfig any) (any, error) {
	if rawConfig == nil {
		return configType, nil
	}

	configData, err := toml.Marshal(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("marshaling config data: %w", err)
	}

	if err := toml.Unmarshal(configData, configType); err != nil {
		return nil, fmt.Errorf("unmarshaling catalog config: %w", err)
	}

	return configType, nil
}

// runtime bundles what every search command needs: the loaded config,
// a registry with the configured catalogs, the built index and the
// recent searches list.
type runtime struct {
	cfg      *config.Config
	registry *core.Registry
	index    *index.Index
	kv       stateKV
	recent   *recent.Store
}

// stateKV is the backing store of the recent searches list.
type stateKV interface {
	recent.KV
	Close() error
}

type runtimeOptions struct {
	// ephemeral keeps recent searches in memory instead of state.db.
	ephemeral bool
	// skipIndex leaves the index empty.
	skipIndex bool
}

func loadRuntime(ctx context.Context, configPath string, opts runtimeOptions) (*runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	registry := core.GetGlobalRegistry()
	if err := createCatalogsFromConfig(registry, cfg); err != nil {
		_ = registry.Close()
		return nil, fmt.Errorf("creating catalogs: %w", err)
	}

	rt := &runtime{cfg: cfg, registry: registry, index: index.Empty()}

	if !opts.skipIndex {
		rt.index = rt.rebuild(ctx)
	}

	if opts.ephemeral {
		rt.kv = storage.NewMemoryKV()
	} else {
		store, err := storage.Open(cfg.StatePath())
		if err != nil {
			_ = registry.Close()
			return nil, fmt.Errorf("opening state database: %w", err)
		}
		rt.kv = store
	}
	rt.recent = recent.Open(rt.kv, cfg.RecentKey)

	return rt, nil
}

// rebuild collects every catalog into a fresh index. Catalog failures
// are logged and the remaining catalogs still make it into the index.
func (rt *runtime) rebuild(ctx context.Context) *index.Index {
	idx, err := index.Rebuild(ctx, rt.registry.Catalogs())
	if err != nil {
		logger.Warnf("rebuilding index: %v", err)
	}
	logger.Debugf("index built with %d items", idx.Len())
	return idx
}

// watchPaths lists the backing files of every configured catalog.
func (rt *runtime) watchPaths() []string {
	var paths []string
	for _, c := range rt.registry.Catalogs() {
		paths = append(paths, c.Paths()...)
	}
	return paths
}

// optimizer is implemented by the sqlite backed KV.
type optimizer interface {
	Optimize() error
}

func (rt *runtime) Close() error {
	if o, ok := rt.kv.(optimizer); ok {
		if err := o.Optimize(); err != nil {
			logger.Warnf("optimizing state database: %v", err)
		}
	}
	if err := rt.kv.Close(); err != nil {
		logger.Warnf("closing state database: %v", err)
	}
	return rt.registry.Close()
}
