package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownItemType is returned when a string does not name an ItemType.
var ErrUnknownItemType = errors.New("unknown item type")

// ItemType tags the catalog an Item came from. The set is closed; display
// metadata for each type (icons, labels) belongs to the presentation layer.
type ItemType string

const (
	TypeSetting  ItemType = "setting"
	TypePage     ItemType = "page"
	TypeProduct  ItemType = "product"
	TypeCustomer ItemType = "customer"
	TypeSale     ItemType = "sale"
	TypeEmployee ItemType = "employee"
	TypeCategory ItemType = "category"
	TypeBrand    ItemType = "brand"
)

var itemTypes = []ItemType{
	TypeSetting,
	TypePage,
	TypeProduct,
	TypeCustomer,
	TypeSale,
	TypeEmployee,
	TypeCategory,
	TypeBrand,
}

// ItemTypes returns every ItemType in declaration order.
func ItemTypes() []ItemType {
	out := make([]ItemType, len(itemTypes))
	copy(out, itemTypes)
	return out
}

// ParseItemType parses s case-insensitively.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownItemType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the declared types.
func (t ItemType) Valid() bool {
	for _, known := range itemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Priority is the primary ranking key: lower values surface first.
// Settings and pages rank above products; every other type comes last.
func (t ItemType) Priority() int {
	switch t {
	case TypeSetting:
		return 0
	case TypePage:
		return 1
	case TypeProduct:
		return 2
	default:
		return 3
	}
}

func (t ItemType) String() string { return string(t) }

// Item is the unit of the search index.
//
// ID is only unique within its Type. Subtitle and Target are optional and
// empty when absent. Target is an opaque navigation reference that the
// core hands back to the navigation collaborator without interpreting it.
type Item struct {
	ID       string   `json:"id" toml:"id"`
	Title    string   `json:"title" toml:"title"`
	Subtitle string   `json:"subtitle,omitempty" toml:"subtitle,omitempty"`
	Type     ItemType `json:"type" toml:"type,omitempty"`
	Target   string   `json:"target,omitempty" toml:"target,omitempty"`
}

// Key identifies the item across types.
func (i Item) Key() string {
	return string(i.Type) + ":" + i.ID
}

// HasSubtitle reports whether the secondary match field is present.
func (i Item) HasSubtitle() bool { return i.Subtitle != "" }

// HasTarget reports whether the item carries a navigation reference.
func (i Item) HasTarget() bool { return i.Target != "" }
