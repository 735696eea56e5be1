package woocommerce

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalize_Defaults(t *testing.T) {
	p := Product{ID: 42, Name: "Widget", SKU: "ABC", RegularPrice: "19.99"}

	item := p.Normalize("MXN")

	assert.Equal(t, int64(42), item.RemoteID)
	assert.Equal(t, "ABC", item.SKU)
	assert.True(t, item.RegularPrice.Equal(decimal.RequireFromString("19.99")))
	assert.Nil(t, item.SalePrice)
	assert.Equal(t, 0, item.StockQuantity)
	assert.Equal(t, UncategorizedSentinel, item.Category)
	assert.Equal(t, "MXN", item.CurrencyCode)
}

func TestNormalize_SynthesizesSKU(t *testing.T) {
	p := Product{ID: 7, Name: "No SKU"}
	assert.Equal(t, "PRODUCT-7", p.Normalize("MXN").SKU)
}

func TestNormalize_PriceFallback(t *testing.T) {
	// regular_price empty but the computed price field set.
	p := Product{ID: 1, RegularPrice: "", Price: "12.50"}
	item := p.Normalize("MXN")
	assert.True(t, item.RegularPrice.Equal(decimal.RequireFromString("12.50")))

	// Garbage price strings degrade to zero instead of erroring.
	p = Product{ID: 2, RegularPrice: "not-a-number"}
	assert.True(t, p.Normalize("MXN").RegularPrice.IsZero())
}

func TestNormalize_SalePrice(t *testing.T) {
	p := Product{ID: 1, RegularPrice: "100.00", SalePrice: "75.00"}
	item := p.Normalize("MXN")
	if assert.NotNil(t, item.SalePrice) {
		assert.True(t, item.SalePrice.Equal(decimal.RequireFromString("75.00")))
	}
	assert.True(t, item.EffectivePrice().Equal(decimal.RequireFromString("75.00")))
}

func TestNormalize_ShortDescriptionFallback(t *testing.T) {
	p := Product{ID: 1, Description: "", ShortDescription: "short"}
	assert.Equal(t, "short", p.Normalize("MXN").Description)
}

func TestNormalize_FirstImageAndCategoryWin(t *testing.T) {
	p := Product{
		ID:     1,
		Images: []Image{{Src: "https://img.example/a.jpg"}, {Src: "https://img.example/b.jpg"}},
		Categories: []Category{
			{Name: "Electronics"},
			{Name: "Gadgets"},
		},
	}
	item := p.Normalize("MXN")
	assert.Equal(t, "https://img.example/a.jpg", item.ImageURL)
	assert.Equal(t, "Electronics", item.Category)
}

func TestNormalize_StockQuantity(t *testing.T) {
	qty := 17
	p := Product{ID: 1, StockQuantity: &qty}
	assert.Equal(t, 17, p.Normalize("MXN").StockQuantity)
}
