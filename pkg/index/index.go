// Package index flattens the catalogs of the POS application into one
// ordered, immutable list of searchable items.
//
// Aggregation is a pure transform: sources are concatenated in the order
// given (settings, then pages, then products in the default setup), each
// keeping its own internal order. The package never watches catalogs;
// callers rebuild the index explicitly when a catalog changes.
package index

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
)

// Index is an ordered, read-only sequence of items. The zero value and
// a nil *Index are both valid empty indexes.
type Index struct {
	items   []core.Item
	builtAt time.Time
}

// Empty returns an index without items.
func Empty() *Index {
	return &Index{builtAt: time.Now()}
}

// Build concatenates sources in order. Items with a blank title are
// malformed and dropped; an item repeating an already indexed
// (type, id) pair is dropped as well so ids stay unique per type.
func Build(sources [][]core.Item) *Index {
	total := 0
	for _, src := range sources {
		total += len(src)
	}

	items := make([]core.Item, 0, total)
	seen := make(map[string]struct{}, total)
	for _, src := range sources {
		for _, item := range src {
			if strings.TrimSpace(item.Title) == "" {
				continue
			}
			if item.ID != "" {
				key := item.Key()
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			items = append(items, item)
		}
	}

	return &Index{items: items, builtAt: time.Now()}
}

// Len returns the number of indexed items.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.items)
}

// At returns the item at position i.
func (x *Index) At(i int) core.Item {
	return x.items[i]
}

// All iterates items with their aggregation position.
func (x *Index) All() iter.Seq2[int, core.Item] {
	return func(yield func(int, core.Item) bool) {
		if x == nil {
			return
		}
		for i, item := range x.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Items returns a copy of the indexed items.
func (x *Index) Items() []core.Item {
	if x == nil {
		return []core.Item{}
	}
	out := make([]core.Item, len(x.items))
	copy(out, x.items)
	return out
}

// Lookup finds an item by type and id.
func (x *Index) Lookup(typ core.ItemType, id string) (core.Item, bool) {
	for _, item := range x.All() {
		if item.Type == typ && item.ID == id {
			return item, true
		}
	}
	return core.Item{}, false
}

// CountByType returns how many items each type contributed.
func (x *Index) CountByType() map[core.ItemType]int {
	counts := make(map[core.ItemType]int)
	for _, item := range x.All() {
		counts[item.Type]++
	}
	return counts
}

// BuiltAt returns when the index was assembled.
func (x *Index) BuiltAt() time.Time {
	if x == nil {
		return time.Time{}
	}
	return x.builtAt
}

// Collect takes one snapshot per catalog, in order. A failing catalog
// contributes an empty source; its error is joined into the returned
// error while the other sources are still returned.
func Collect(ctx context.Context, catalogs []core.Catalog) ([][]core.Item, error) {
	sources := make([][]core.Item, 0, len(catalogs))
	var errs []error
	for _, c := range catalogs {
		if err := ctx.Err(); err != nil {
			return sources, err
		}
		items, err := c.Items(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("catalog %s: %w", c.Name(), err))
			items = nil
		}
		sources = append(sources, items)
	}
	return sources, errors.Join(errs...)
}

// Rebuild collects every catalog and builds a fresh index. The index is
// returned even when some catalogs failed.
func Rebuild(ctx context.Context, catalogs []core.Catalog) (*Index, error) {
	sources, err := Collect(ctx, catalogs)
	return Build(sources), err
}
