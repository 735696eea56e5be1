package broker

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"relist/internal/activitylog"
	"relist/internal/connectors"
	"relist/internal/connectors/shopify"
	"relist/internal/logger"
	"relist/internal/models"
)

const importSource = "PRODUCT_IMPORT"

// ImportVendor is the fixed generic vendor label on every camouflaged
// product. The original listing's vendor never crosses over.
const ImportVendor = "Imported"

// importsPerSecond bounds the write rate against the destination
// platform; Shopify throttles at 2 requests/second per store.
const importsPerSecond = 2

// Importer performs the two-phase camouflage write: the substitute
// image is inline-embedded in the product-creation payload, so there
// is no separate asset phase that could orphan a placeholder product.
type Importer struct {
	credentials CredentialSource
	logger      *logger.Logger
	activity    *activitylog.Logger
	limiter     *rate.Limiter
}

func NewImporter(credentials CredentialSource, log *logger.Logger, activity *activitylog.Logger) *Importer {
	return &Importer{
		credentials: credentials,
		logger:      log,
		activity:    activity,
		limiter:     rate.NewLimiter(rate.Limit(importsPerSecond), 1),
	}
}

// ImportItem writes one camouflaged product to the merchant's
// destination store. When no destination integration is configured the
// call degrades to a labeled demo success instead of failing the
// batch.
func (im *Importer) ImportItem(ctx context.Context, merchantID string, req *models.ImportRequest) models.ImportOutcome {
	outcome := models.ImportOutcome{SKU: req.Item.SKU}

	if req.CamouflageTitle == "" {
		return im.failed(merchantID, outcome, InvalidInputError("camouflageTitle"))
	}

	integration, err := im.credentials.ActiveIntegration(merchantID, models.PlatformShopify)
	if err != nil {
		return im.failed(merchantID, outcome, AsError(err))
	}
	if integration == nil {
		// Demo fallback: labeled simulated success so the dashboard
		// stays usable before the destination store is connected.
		outcome.Success = true
		outcome.UsedDemoFallback = true
		im.activity.Append(merchantID, models.LogLevelWarning, importSource,
			fmt.Sprintf("No Shopify integration configured; simulated import of %s", req.Item.SKU),
			map[string]interface{}{"sku": req.Item.SKU, "demo": true})
		return outcome
	}

	bundle, err := im.credentials.LoadSecrets(integration.ID)
	if err != nil {
		return im.failed(merchantID, outcome, AsError(err))
	}

	client := shopify.NewClient(bundle.BaseURL, bundle.Secrets[models.SecretAccessToken], im.logger)

	created, cerr := client.CreateProduct(ctx, buildCamouflagedProduct(req))
	if cerr != nil {
		return im.failed(merchantID, outcome, classifyImportError(cerr))
	}

	outcome.Success = true
	outcome.RemoteProductID = created.ID
	im.activity.Append(merchantID, models.LogLevelSuccess, importSource,
		fmt.Sprintf("Imported %s as %q (product %d)", req.Item.SKU, req.CamouflageTitle, created.ID),
		map[string]interface{}{"sku": req.Item.SKU, "shopifyProductId": created.ID})
	return outcome
}

// ImportBatch runs the requests sequentially under the destination
// rate limit. One item's failure never stops the remaining items;
// cancellation lets the in-flight item finish and skips the rest.
func (im *Importer) ImportBatch(ctx context.Context, merchantID string, reqs []models.ImportRequest) *models.BatchSummary {
	summary := &models.BatchSummary{Total: len(reqs)}

	im.activity.Append(merchantID, models.LogLevelInfo, importSource,
		fmt.Sprintf("Starting import batch of %d products", len(reqs)),
		map[string]interface{}{"count": len(reqs)})

	for i := range reqs {
		if ctx.Err() != nil {
			im.activity.Append(merchantID, models.LogLevelWarning, importSource,
				fmt.Sprintf("Batch cancelled after %d of %d items", i, len(reqs)),
				map[string]interface{}{"processed": i, "total": len(reqs)})
			break
		}

		if err := im.limiter.Wait(ctx); err != nil {
			break
		}

		// The item call is deliberately not bound to the batch context:
		// an in-flight remote write is allowed to complete so the
		// destination store is not left half-written.
		outcome := im.ImportItem(context.WithoutCancel(ctx), merchantID, &reqs[i])
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	im.activity.Append(merchantID, models.LogLevelInfo, importSource,
		fmt.Sprintf("Import batch finished: %d succeeded, %d failed", summary.Succeeded, summary.Failed),
		map[string]interface{}{"succeeded": summary.Succeeded, "failed": summary.Failed})
	return summary
}

// buildCamouflagedProduct maps a catalog item plus its overrides onto
// the destination payload. The body references the original SKU but
// never the original title; tax is disabled because re-listed items
// must not inherit tax rules from the original category.
func buildCamouflagedProduct(req *models.ImportRequest) *shopify.Product {
	item := req.Item

	product := &shopify.Product{
		Title:       req.CamouflageTitle,
		BodyHTML:    fmt.Sprintf("<p>Imported listing</p><p>Original SKU: %s</p>", item.SKU),
		Vendor:      ImportVendor,
		ProductType: item.Category,
		Status:      "active",
		Variants: []shopify.Variant{{
			SKU:                 item.SKU,
			Price:               item.EffectivePrice().StringFixed(2),
			InventoryQuantity:   item.StockQuantity,
			InventoryManagement: "shopify",
			InventoryPolicy:     "deny",
			Taxable:             false,
		}},
	}

	if len(req.CamouflageImage) > 0 {
		product.Images = []shopify.Image{{
			Attachment: base64.StdEncoding.EncodeToString(req.CamouflageImage),
			Alt:        req.CamouflageTitle,
		}}
	}

	return product
}

func classifyImportError(err error) *Error {
	if terminal := classifyTerminal(err); terminal != nil {
		return terminal
	}
	var httpErr *connectors.HTTPError
	if errors.As(err, &httpErr) {
		return &Error{
			Kind:    KindRemotePlatformError,
			Message: fmt.Sprintf("Shopify rejected the product (%d)", httpErr.StatusCode),
			Detail:  truncate(httpErr.Body),
		}
	}
	return classifyRemote(err)
}

func (im *Importer) failed(merchantID string, outcome models.ImportOutcome, err *Error) models.ImportOutcome {
	outcome.Success = false
	outcome.ErrorMessage = err.Message
	if err.Detail != "" {
		// The remote error body (already truncated) is what lets the
		// operator diagnose a validation rejection.
		outcome.ErrorMessage += ": " + err.Detail
	}
	outcome.ErrorKind = string(err.Kind)
	im.activity.Append(merchantID, models.LogLevelError, importSource,
		fmt.Sprintf("Import of %s failed: %s", outcome.SKU, err.Message),
		map[string]interface{}{"sku": outcome.SKU, "kind": err.Kind})
	return outcome
}
