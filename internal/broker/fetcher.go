package broker

import (
	"context"
	"errors"
	"fmt"

	"relist/internal/activitylog"
	"relist/internal/connectors"
	"relist/internal/connectors/woocommerce"
	"relist/internal/logger"
	"relist/internal/models"
	"relist/internal/rates"
)

const fetchSource = "CATALOG_FETCH"

// DefaultCurrency is assumed when the source store does not declare
// one. WooCommerce's product payload carries no currency, so the
// store-level setting (or this default) decorates every item.
const DefaultCurrency = "MXN"

// Fetcher retrieves normalized catalog pages from the source platform
// using stored credentials.
type Fetcher struct {
	credentials CredentialSource
	rates       rates.Source
	logger      *logger.Logger
	activity    *activitylog.Logger
}

func NewFetcher(credentials CredentialSource, rateSource rates.Source, log *logger.Logger, activity *activitylog.Logger) *Fetcher {
	return &Fetcher{
		credentials: credentials,
		rates:       rateSource,
		logger:      log,
		activity:    activity,
	}
}

// FetchPage returns one page of the merchant's source catalog. page is
// 1-based; perPage is silently clamped to the platform ceiling. The
// optional displayCurrency converts prices best-effort: a failed rate
// lookup falls back to 1:1 and marks the items unconverted.
func (f *Fetcher) FetchPage(ctx context.Context, merchantID string, page, perPage int, displayCurrency string) (*models.CatalogPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = woocommerce.MaxPerPage
	}
	if perPage > woocommerce.MaxPerPage {
		perPage = woocommerce.MaxPerPage
	}

	f.activity.Append(merchantID, models.LogLevelInfo, fetchSource,
		fmt.Sprintf("Fetching catalog page %d", page),
		map[string]interface{}{"page": page, "perPage": perPage})

	integration, err := f.credentials.ActiveIntegration(merchantID, models.PlatformWooCommerce)
	if err != nil {
		return nil, err
	}
	if integration == nil {
		return nil, newError(KindInvalidInput, "no connected WooCommerce integration found")
	}

	bundle, err := f.credentials.LoadSecrets(integration.ID)
	if err != nil {
		return nil, err
	}

	client := woocommerce.NewClient(
		bundle.BaseURL,
		bundle.Secrets[models.SecretConsumerKey],
		bundle.Secrets[models.SecretConsumerSecret],
		f.logger,
	)

	// One minimal request for the total count header, then the page
	// itself. The count request doubles as the auth check.
	countPage, err := client.FetchProducts(ctx, wooCandidates[0].Path, 1, 1)
	if err != nil {
		return nil, f.fetchFailed(merchantID, err)
	}

	productsPage, err := client.FetchProducts(ctx, wooCandidates[0].Path, page, perPage)
	if err != nil {
		return nil, f.fetchFailed(merchantID, err)
	}

	if page == 1 && len(productsPage.Products) == 0 && countPage.Total > 0 {
		// The store claims products exist but returned an empty first
		// page. An idempotent read has nothing to roll back; surface
		// the empty page and leave a trace for the operator.
		f.activity.Append(merchantID, models.LogLevelWarning, fetchSource,
			"Store reports products but returned an empty first page",
			map[string]interface{}{"totalCount": countPage.Total})
	}

	currency := DefaultCurrency
	items := make([]models.CatalogItem, 0, len(productsPage.Products))
	for i := range productsPage.Products {
		items = append(items, productsPage.Products[i].Normalize(currency))
	}

	if displayCurrency != "" && displayCurrency != currency {
		f.convertPrices(ctx, items, currency, displayCurrency)
	}

	f.activity.Append(merchantID, models.LogLevelSuccess, fetchSource,
		fmt.Sprintf("Fetched %d products (page %d of %d total)", len(items), page, countPage.Total),
		map[string]interface{}{"count": len(items), "totalCount": countPage.Total})

	return &models.CatalogPage{
		Items:      items,
		TotalCount: countPage.Total,
		StoreName:  integration.StoreName,
		StoreURL:   integration.StoreURL,
		Currency:   currency,
	}, nil
}

// convertPrices rewrites item prices into the display currency. A
// failed rate lookup degrades to 1:1 with the Unconverted flag set;
// it never fails the fetch.
func (f *Fetcher) convertPrices(ctx context.Context, items []models.CatalogItem, from, to string) {
	rate, err := f.rates.Rate(ctx, from, to)
	if err != nil {
		f.logger.Warn("rate lookup %s->%s failed, showing unconverted prices: %v", from, to, err)
		for i := range items {
			items[i].Unconverted = true
		}
		return
	}
	for i := range items {
		items[i].RegularPrice = items[i].RegularPrice.Mul(rate).Round(2)
		if items[i].SalePrice != nil {
			converted := items[i].SalePrice.Mul(rate).Round(2)
			items[i].SalePrice = &converted
		}
		items[i].CurrencyCode = to
	}
}

func (f *Fetcher) fetchFailed(merchantID string, err error) *Error {
	var httpErr *connectors.HTTPError
	if errors.As(err, &httpErr) {
		if terminal := classifyTerminal(err); terminal != nil {
			f.activity.Append(merchantID, models.LogLevelError, fetchSource,
				"Catalog fetch rejected by store: "+terminal.Message,
				map[string]interface{}{"kind": terminal.Kind})
			return terminal
		}
	}
	classified := classifyRemote(err)
	f.activity.Append(merchantID, models.LogLevelError, fetchSource,
		"Catalog fetch failed: "+classified.Message,
		map[string]interface{}{"kind": classified.Kind})
	return classified
}
