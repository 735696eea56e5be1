package models

import (
	"github.com/shopspring/decimal"
)

// CatalogItem is the normalized representation of one remote product.
// Items are built fresh on every fetch and are never persisted; the
// only identity they carry across fetches is RemoteID.
type CatalogItem struct {
	RemoteID      int64            `json:"id"`
	Name          string           `json:"name"`
	SKU           string           `json:"sku"`
	RegularPrice  decimal.Decimal  `json:"price"`
	SalePrice     *decimal.Decimal `json:"salePrice,omitempty"`
	ImageURL      string           `json:"image,omitempty"`
	StockQuantity int              `json:"stock"`
	Category      string           `json:"category"`
	Status        string           `json:"status"`
	Description   string           `json:"description"`
	Permalink     string           `json:"permalink"`
	CurrencyCode  string           `json:"currency"`
	// Unconverted is set when a currency conversion was requested but
	// the rate lookup failed and the price is shown 1:1.
	Unconverted bool `json:"unconverted,omitempty"`
}

// EffectivePrice is the price an import uses: sale price when one is
// set, regular price otherwise.
func (c *CatalogItem) EffectivePrice() decimal.Decimal {
	if c.SalePrice != nil {
		return *c.SalePrice
	}
	return c.RegularPrice
}

// CatalogPage is one fetched page plus the pagination and store
// metadata the selection UI needs.
type CatalogPage struct {
	Items      []CatalogItem `json:"products"`
	TotalCount int           `json:"totalProducts"`
	StoreName  string        `json:"storeName"`
	StoreURL   string        `json:"storeUrl"`
	Currency   string        `json:"currency"`
}

// ImportRequest is the per-item import intent: one catalog item plus
// the camouflage overrides. The image bytes are supplied once per
// batch and shared by every item in it.
type ImportRequest struct {
	Item            CatalogItem
	CamouflageTitle string
	// CamouflageImage is the raw image, inline-embedded (base64) in the
	// destination product payload.
	CamouflageImage []byte
}

// ImportOutcome is the result of one ImportRequest.
type ImportOutcome struct {
	SKU             string `json:"sku"`
	Success         bool   `json:"success"`
	RemoteProductID int64  `json:"shopifyProductId,omitempty"`
	ErrorMessage    string `json:"error,omitempty"`
	ErrorKind       string `json:"errorKind,omitempty"`
	// UsedDemoFallback marks the simulated success returned when no
	// destination integration is configured. Callers decide whether to
	// treat it as an error; it is never an unlabeled success.
	UsedDemoFallback bool `json:"usedDemoFallback,omitempty"`
}

// BatchSummary aggregates a sequential multi-item import.
type BatchSummary struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Outcomes  []ImportOutcome `json:"outcomes"`
}
