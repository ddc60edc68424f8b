package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1.5K", formatNumber(1500))
	assert.Equal(t, "2.0M", formatNumber(2000000))
}

func TestTypeLabel(t *testing.T) {
	assert.Contains(t, typeLabel(core.TypeProduct), "Product")
	assert.Contains(t, typeLabel(core.ItemType("custom")), "Custom")
}

func TestFormatItem(t *testing.T) {
	item := core.Item{
		ID:       "espresso",
		Title:    "Espresso Beans",
		Subtitle: "Coffee - $24.99",
		Type:     core.TypeProduct,
		Target:   "/products/espresso",
	}

	out := formatItem(3, item, false)
	assert.Contains(t, out, " 3.")
	assert.Contains(t, out, "Espresso Beans")
	assert.Contains(t, out, "Coffee - $24.99")
	assert.Contains(t, out, "/products/espresso")

	bare := formatItem(0, core.Item{ID: "x", Title: "Tax Rates", Type: core.TypeSetting}, true)
	assert.Contains(t, bare, "Tax Rates")
	assert.NotContains(t, bare, "/")
}

func TestFormatByType(t *testing.T) {
	assert.Equal(t, "no items", formatByType(nil))
	assert.Equal(t, "1 setting, 3 products", formatByType(map[core.ItemType]int{
		core.TypeProduct: 3,
		core.TypeSetting: 1,
	}))
}
