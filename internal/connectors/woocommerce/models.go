package woocommerce

import (
	"fmt"

	"github.com/shopspring/decimal"

	"relist/internal/models"
)

// Product is the raw WooCommerce REST representation, reduced to the
// fields the broker consumes. Prices arrive as strings; WooCommerce
// leaves them empty when unset.
type Product struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	SKU              string     `json:"sku"`
	Price            string     `json:"price"`
	RegularPrice     string     `json:"regular_price"`
	SalePrice        string     `json:"sale_price"`
	Status           string     `json:"status"`
	Description      string     `json:"description"`
	ShortDescription string     `json:"short_description"`
	Permalink        string     `json:"permalink"`
	StockQuantity    *int       `json:"stock_quantity"`
	Images           []Image    `json:"images"`
	Categories       []Category `json:"categories"`
}

type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// UncategorizedSentinel is the category shown when a product has none.
const UncategorizedSentinel = "uncategorized"

// Normalize maps one raw product onto the platform-neutral catalog
// item: missing SKU synthesized from the remote id, missing stock
// treated as zero, first image and first category win.
func (p *Product) Normalize(currency string) models.CatalogItem {
	item := models.CatalogItem{
		RemoteID:     p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		Status:       p.Status,
		Description:  p.Description,
		Permalink:    p.Permalink,
		Category:     UncategorizedSentinel,
		CurrencyCode: currency,
	}

	if item.SKU == "" {
		item.SKU = fmt.Sprintf("PRODUCT-%d", p.ID)
	}
	if item.Description == "" {
		item.Description = p.ShortDescription
	}

	item.RegularPrice = parsePrice(p.RegularPrice)
	if item.RegularPrice.IsZero() {
		item.RegularPrice = parsePrice(p.Price)
	}
	if sale := parsePrice(p.SalePrice); !sale.IsZero() {
		item.SalePrice = &sale
	}

	if p.StockQuantity != nil {
		item.StockQuantity = *p.StockQuantity
	}
	if len(p.Images) > 0 {
		item.ImageURL = p.Images[0].Src
	}
	if len(p.Categories) > 0 {
		item.Category = p.Categories[0].Name
	}

	return item
}

func parsePrice(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
