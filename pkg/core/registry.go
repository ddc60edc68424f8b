package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCatalogNotFound is returned when a catalog instance or kind is unknown.
var ErrCatalogNotFound = errors.New("catalog not found")

// Global registry for catalog self-registration.
var globalRegistry = NewRegistry()

// Registry holds catalog prototypes by kind and configured instances by
// name. Instances keep creation order, which is the aggregation order.
type Registry struct {
	prototypes map[string]Catalog
	catalogs   map[string]Catalog
	order      []string
	mu         sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		prototypes: make(map[string]Catalog),
		catalogs:   make(map[string]Catalog),
	}
}

// RegisterCatalogPrototype lets catalog packages register themselves in init().
func RegisterCatalogPrototype(kind string, prototype Catalog) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.prototypes[kind] = prototype
}

// GetGlobalRegistry returns a fresh registry seeded with every registered
// prototype and no instances.
func GetGlobalRegistry() *Registry {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	registry := NewRegistry()
	for kind, prototype := range globalRegistry.prototypes {
		registry.prototypes[kind] = prototype
	}
	return registry
}

func (r *Registry) RegisterPrototype(kind string, prototype Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.prototypes[kind]; exists {
		return fmt.Errorf("catalog prototype %s already registered", kind)
	}
	r.prototypes[kind] = prototype
	return nil
}

// Kinds lists the registered prototype kinds.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.prototypes))
	for kind := range r.prototypes {
		kinds = append(kinds, kind)
	}
	return kinds
}

// ConfigTypeFor returns an empty config value for kind, ready for
// decoding.
func (r *Registry) ConfigTypeFor(kind string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prototype, exists := r.prototypes[kind]
	if !exists {
		return nil, fmt.Errorf("%w: no prototype for kind %s", ErrCatalogNotFound, kind)
	}
	return prototype.ConfigType(), nil
}

// CreateCatalog instantiates a catalog of the given kind. Re-creating an
// existing name closes the previous instance and keeps its position.
func (r *Registry) CreateCatalog(instanceName, kind string, config any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prototype, exists := r.prototypes[kind]
	if !exists {
		return fmt.Errorf("%w: no prototype for kind %s", ErrCatalogNotFound, kind)
	}

	if validator, ok := config.(interface{ Validate() error }); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("invalid config for catalog %s: %w", instanceName, err)
		}
	}

	catalog, err := prototype.Factory(instanceName, config)
	if err != nil {
		return fmt.Errorf("creating catalog %s: %w", instanceName, err)
	}

	if existing, exists := r.catalogs[instanceName]; exists {
		if err := existing.Close(); err != nil {
			return fmt.Errorf("closing existing catalog %s: %w", instanceName, err)
		}
	} else {
		r.order = append(r.order, instanceName)
	}

	r.catalogs[instanceName] = catalog
	return nil
}

func (r *Registry) GetCatalog(name string) (Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog, exists := r.catalogs[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, name)
	}
	return catalog, nil
}

// Catalogs returns the instances in creation order.
func (r *Registry) Catalogs() []Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Catalog, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.catalogs[name])
	}
	return out
}

// ListCatalogs returns instance names in creation order.
func (r *Registry) ListCatalogs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *Registry) RemoveCatalog(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, exists := r.catalogs[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrCatalogNotFound, name)
	}

	if err := catalog.Close(); err != nil {
		return fmt.Errorf("closing catalog %s: %w", name, err)
	}

	delete(r.catalogs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, name := range r.order {
		if err := r.catalogs[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing catalog %s: %w", name, err))
		}
	}

	r.catalogs = make(map[string]Catalog)
	r.order = nil
	return errors.Join(errs...)
}
