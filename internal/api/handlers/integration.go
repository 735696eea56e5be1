package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"relist/internal/broker"
	"relist/internal/logger"
	"relist/internal/models"
	"relist/internal/store"
)

// DemoMerchantID is the fixed principal used when the request carries
// no merchant header. The broker itself is merchant-scoped; only this
// boundary defaults to the demo tenant.
const DemoMerchantID = "00000000-0000-0000-0000-000000000001"

// IntegrationHandler dispatches the RPC-style platform actions the
// dashboard invokes: test, save, list, disconnect, fetch_products,
// import_product and import_batch.
type IntegrationHandler struct {
	store    *store.CredentialStore
	prober   *broker.Prober
	fetcher  *broker.Fetcher
	importer *broker.Importer
	logger   *logger.Logger
}

func NewIntegrationHandler(store *store.CredentialStore, prober *broker.Prober, fetcher *broker.Fetcher, importer *broker.Importer, logger *logger.Logger) *IntegrationHandler {
	return &IntegrationHandler{
		store:    store,
		prober:   prober,
		fetcher:  fetcher,
		importer: importer,
		logger:   logger,
	}
}

type actionRequest struct {
	Action string `json:"action" binding:"required"`

	// test / save
	StoreName      string `json:"storeName"`
	StoreURL       string `json:"storeUrl"`
	ConsumerKey    string `json:"consumerKey"`
	ConsumerSecret string `json:"consumerSecret"`
	AccessToken    string `json:"accessToken"`

	// disconnect
	IntegrationID string `json:"integrationId"`

	// fetch_products
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
	Currency string `json:"currency"`

	// import_product / import_batch
	Product         *models.CatalogItem  `json:"product"`
	Products        []models.CatalogItem `json:"products"`
	CamouflageTitle string               `json:"camouflageTitle"`
	CamouflageImage string               `json:"camouflageImage"`
}

// WooCommerce handles POST /api/v1/integrations/woocommerce.
func (h *IntegrationHandler) WooCommerce(c *gin.Context) {
	h.dispatch(c, models.PlatformWooCommerce)
}

// Shopify handles POST /api/v1/integrations/shopify.
func (h *IntegrationHandler) Shopify(c *gin.Context) {
	h.dispatch(c, models.PlatformShopify)
}

func (h *IntegrationHandler) dispatch(c *gin.Context, platform models.Platform) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON payload"})
		return
	}

	merchantID := merchantFrom(c)

	switch req.Action {
	case "test":
		h.test(c, merchantID, platform, &req)
	case "save":
		h.save(c, merchantID, platform, &req)
	case "list":
		h.list(c, merchantID, platform)
	case "disconnect":
		h.disconnect(c, merchantID, &req)
	case "fetch_products":
		h.fetchProducts(c, merchantID, platform, &req)
	case "import_product":
		h.importProduct(c, merchantID, platform, &req)
	case "import_batch":
		h.importBatch(c, merchantID, platform, &req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "unsupported action: " + req.Action,
		})
	}
}

func (h *IntegrationHandler) test(c *gin.Context, merchantID string, platform models.Platform, req *actionRequest) {
	bundle, err := bundleFrom(platform, req)
	if err != nil {
		respondError(c, err)
		return
	}

	result := h.prober.Probe(c.Request.Context(), merchantID, bundle)
	if !result.Success {
		respondError(c, result.Err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "storeInfo": result.StoreInfo})
}

// save probes first with the supplied credentials, then persists them.
// Broken credentials never reach the store.
func (h *IntegrationHandler) save(c *gin.Context, merchantID string, platform models.Platform, req *actionRequest) {
	if req.StoreName == "" {
		respondError(c, broker.InvalidInputError("storeName"))
		return
	}
	bundle, err := bundleFrom(platform, req)
	if err != nil {
		respondError(c, err)
		return
	}

	result := h.prober.Probe(c.Request.Context(), merchantID, bundle)
	if !result.Success {
		respondError(c, result.Err)
		return
	}

	integration, serr := h.store.Save(merchantID, platform, req.StoreName, bundle.BaseURL, bundle.Secrets)
	if serr != nil {
		respondError(c, broker.AsError(serr))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Integration saved successfully",
		"integration": integration.Summary(),
		"storeInfo":   result.StoreInfo,
	})
}

func (h *IntegrationHandler) list(c *gin.Context, merchantID string, platform models.Platform) {
	summaries, err := h.store.List(merchantID, platform)
	if err != nil {
		respondError(c, broker.AsError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "integrations": summaries})
}

func (h *IntegrationHandler) disconnect(c *gin.Context, merchantID string, req *actionRequest) {
	if req.IntegrationID == "" {
		respondError(c, broker.InvalidInputError("integrationId"))
		return
	}
	if err := h.store.Deactivate(merchantID, req.IntegrationID); err != nil {
		respondError(c, broker.AsError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Integration disconnected"})
}

func (h *IntegrationHandler) fetchProducts(c *gin.Context, merchantID string, platform models.Platform, req *actionRequest) {
	if platform != models.PlatformWooCommerce {
		respondError(c, broker.InvalidInputError("platform"))
		return
	}

	page, err := h.fetcher.FetchPage(c.Request.Context(), merchantID, req.Page, req.PerPage, req.Currency)
	if err != nil {
		respondError(c, broker.AsError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"products": page.Items,
		"storeInfo": gin.H{
			"name":          page.StoreName,
			"url":           page.StoreURL,
			"totalProducts": page.TotalCount,
			"currency":      page.Currency,
		},
	})
}

func (h *IntegrationHandler) importProduct(c *gin.Context, merchantID string, platform models.Platform, req *actionRequest) {
	if platform != models.PlatformShopify {
		respondError(c, broker.InvalidInputError("platform"))
		return
	}
	if req.Product == nil {
		respondError(c, broker.InvalidInputError("product"))
		return
	}

	importReq, err := importRequestFrom(*req.Product, req)
	if err != nil {
		respondError(c, err)
		return
	}

	outcome := h.importer.ImportItem(c.Request.Context(), merchantID, importReq)
	status := http.StatusOK
	if !outcome.Success {
		status = statusFor(broker.Kind(outcome.ErrorKind))
	}
	c.JSON(status, outcome)
}

func (h *IntegrationHandler) importBatch(c *gin.Context, merchantID string, platform models.Platform, req *actionRequest) {
	if platform != models.PlatformShopify {
		respondError(c, broker.InvalidInputError("platform"))
		return
	}
	if len(req.Products) == 0 {
		respondError(c, broker.InvalidInputError("products"))
		return
	}

	reqs := make([]models.ImportRequest, 0, len(req.Products))
	for _, item := range req.Products {
		importReq, err := importRequestFrom(item, req)
		if err != nil {
			respondError(c, err)
			return
		}
		reqs = append(reqs, *importReq)
	}

	summary := h.importer.ImportBatch(c.Request.Context(), merchantID, reqs)
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

func bundleFrom(platform models.Platform, req *actionRequest) (*models.CredentialBundle, *broker.Error) {
	switch platform {
	case models.PlatformWooCommerce:
		if req.ConsumerKey == "" {
			return nil, broker.InvalidInputError("consumerKey")
		}
		if req.ConsumerSecret == "" {
			return nil, broker.InvalidInputError("consumerSecret")
		}
		return &models.CredentialBundle{
			Platform: platform,
			BaseURL:  req.StoreURL,
			Secrets: map[string]string{
				models.SecretConsumerKey:    req.ConsumerKey,
				models.SecretConsumerSecret: req.ConsumerSecret,
			},
		}, nil
	case models.PlatformShopify:
		if req.AccessToken == "" {
			return nil, broker.InvalidInputError("accessToken")
		}
		return &models.CredentialBundle{
			Platform: platform,
			BaseURL:  req.StoreURL,
			Secrets: map[string]string{
				models.SecretAccessToken: req.AccessToken,
			},
		}, nil
	}
	return nil, broker.InvalidInputError("platform")
}

func importRequestFrom(item models.CatalogItem, req *actionRequest) (*models.ImportRequest, *broker.Error) {
	if req.CamouflageTitle == "" {
		return nil, broker.InvalidInputError("camouflageTitle")
	}
	var image []byte
	if req.CamouflageImage != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.CamouflageImage)
		if err != nil {
			return nil, broker.InvalidInputError("camouflageImage")
		}
		image = decoded
	}
	return &models.ImportRequest{
		Item:            item,
		CamouflageTitle: req.CamouflageTitle,
		CamouflageImage: image,
	}, nil
}

func merchantFrom(c *gin.Context) string {
	if id := c.GetHeader("X-Merchant-ID"); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return DemoMerchantID
}

func respondError(c *gin.Context, err *broker.Error) {
	c.JSON(statusFor(err.Kind), gin.H{
		"success": false,
		"error":   err.Message,
		"kind":    err.Kind,
		"detail":  err.Detail,
	})
}

func statusFor(kind broker.Kind) int {
	switch kind {
	case broker.KindInvalidInput:
		return http.StatusBadRequest
	case broker.KindInvalidCredentials:
		return http.StatusUnauthorized
	case broker.KindInsufficientPermissions:
		return http.StatusForbidden
	case broker.KindAPINotFound:
		return http.StatusNotFound
	case broker.KindRemotePlatformError:
		return http.StatusBadGateway
	case broker.KindTransientNetworkError:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
