package core

import (
	"context"
)

// Catalog is an external, type-homogeneous list of records that feeds the
// search index. Catalogs are trusted collaborators: the index filters
// malformed items instead of rejecting a whole catalog.
//
// Kind vs Name: Kind is the implementation ("static", "inventory"), Name
// is the configured instance ("settings", "pages", "products"). Two
// instances of the same kind can feed different item types.
//
// Registration pattern:
//
//	func init() {
//		core.RegisterCatalogPrototype("static", &Catalog{})
//	}
type Catalog interface {
	// Name returns the configured instance name.
	Name() string

	// Kind returns the implementation identifier used for registration.
	Kind() string

	// ItemType returns the origin type stamped on every item.
	ItemType() ItemType

	// Items returns the current snapshot in the catalog's own order.
	Items(ctx context.Context) ([]Item, error)

	// Paths lists backing files whose changes should trigger a rebuild.
	// Catalogs with nothing to watch return nil.
	Paths() []string

	// ConfigType returns a pointer to an empty config value for decoding.
	ConfigType() any

	// Factory builds a configured instance of this catalog kind.
	Factory(instanceName string, config any) (Catalog, error)

	// Close releases resources held by the catalog.
	Close() error
}
