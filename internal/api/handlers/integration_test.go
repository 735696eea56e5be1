package handlers

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relist/internal/activitylog"
	"relist/internal/broker"
	"relist/internal/crypto"
	"relist/internal/database"
	"relist/internal/logger"
	"relist/internal/rates"
	"relist/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	key := make([]byte, crypto.KeySize)
	_, err = rand.Read(key)
	require.NoError(t, err)
	cipher, err := crypto.NewAESGCM(key)
	require.NoError(t, err)

	log := logger.New("error")
	activity := activitylog.New(db.DB, log)
	credStore := store.New(db.DB, cipher, activity)

	prober := broker.NewProber(log, activity)
	fetcher := broker.NewFetcher(credStore, rates.Fixed{Value: decimal.NewFromInt(1)}, log, activity)
	importer := broker.NewImporter(credStore, log, activity)

	h := NewIntegrationHandler(credStore, prober, fetcher, importer, log)
	lh := NewLogsHandler(activity, log)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/integrations/woocommerce", h.WooCommerce)
	v1.POST("/integrations/shopify", h.Shopify)
	v1.GET("/logs", lh.List)
	v1.DELETE("/logs", lh.Clear)
	return router
}

func postAction(t *testing.T, router *gin.Engine, path string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// mockWooStore answers the standard v3 products route.
func mockWooStore(t *testing.T, total int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WP-Total", fmt.Sprint(total))
		fmt.Fprint(w, `[{"id":1,"name":"Widget","sku":"W-1","regular_price":"10.00"}]`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDispatch_UnsupportedAction(t *testing.T) {
	router := newTestRouter(t)

	rec := postAction(t, router, "/api/v1/integrations/woocommerce",
		map[string]interface{}{"action": "reticulate"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "unsupported action")
}

func TestDispatch_InvalidJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/integrations/woocommerce",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTest_MissingCredentials(t *testing.T) {
	router := newTestRouter(t)

	rec := postAction(t, router, "/api/v1/integrations/woocommerce", map[string]interface{}{
		"action":   "test",
		"storeUrl": "https://shop.example.com",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "consumerKey")
}

func TestSaveThenList(t *testing.T) {
	router := newTestRouter(t)
	srv := mockWooStore(t, 5)

	rec := postAction(t, router, "/api/v1/integrations/woocommerce", map[string]interface{}{
		"action":         "save",
		"storeName":      "My Store",
		"storeUrl":       srv.URL,
		"consumerKey":    "ck_x",
		"consumerSecret": "cs_x",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	// The saved integration must come back without any secret field.
	assert.NotContains(t, rec.Body.String(), "ck_x")
	assert.NotContains(t, rec.Body.String(), "cs_x")

	rec = postAction(t, router, "/api/v1/integrations/woocommerce",
		map[string]interface{}{"action": "list"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	integrations := body["integrations"].([]interface{})
	require.Len(t, integrations, 1)
	first := integrations[0].(map[string]interface{})
	assert.Equal(t, "My Store", first["storeName"])
	assert.Equal(t, "connected", first["status"])
	assert.NotContains(t, rec.Body.String(), "ck_x")
}

func TestSave_ProbeFailureBlocksPersistence(t *testing.T) {
	router := newTestRouter(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	rec := postAction(t, router, "/api/v1/integrations/woocommerce", map[string]interface{}{
		"action":         "save",
		"storeName":      "My Store",
		"storeUrl":       srv.URL,
		"consumerKey":    "ck_bad",
		"consumerSecret": "cs_bad",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postAction(t, router, "/api/v1/integrations/woocommerce",
		map[string]interface{}{"action": "list"})
	body := decodeBody(t, rec)
	assert.Empty(t, body["integrations"], "rejected credentials must never be persisted")
}

func TestDisconnect(t *testing.T) {
	router := newTestRouter(t)
	srv := mockWooStore(t, 1)

	rec := postAction(t, router, "/api/v1/integrations/woocommerce", map[string]interface{}{
		"action":         "save",
		"storeName":      "My Store",
		"storeUrl":       srv.URL,
		"consumerKey":    "ck_x",
		"consumerSecret": "cs_x",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	integration := decodeBody(t, rec)["integration"].(map[string]interface{})

	rec = postAction(t, router, "/api/v1/integrations/woocommerce", map[string]interface{}{
		"action":        "disconnect",
		"integrationId": integration["id"],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = postAction(t, router, "/api/v1/integrations/woocommerce",
		map[string]interface{}{"action": "fetch_products", "page": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code,
		"a disconnected integration must not serve fetches")
}

func TestFetchProducts_RequiresIntegration(t *testing.T) {
	router := newTestRouter(t)

	rec := postAction(t, router, "/api/v1/integrations/woocommerce", map[string]interface{}{
		"action": "fetch_products",
		"page":   1,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "no connected WooCommerce integration")
}

func TestFetchProducts_AfterSave(t *testing.T) {
	router := newTestRouter(t)
	srv := mockWooStore(t, 5)

	rec := postAction(t, router, "/api/v1/integrations/woocommerce", map[string]interface{}{
		"action":         "save",
		"storeName":      "My Store",
		"storeUrl":       srv.URL,
		"consumerKey":    "ck_x",
		"consumerSecret": "cs_x",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postAction(t, router, "/api/v1/integrations/woocommerce", map[string]interface{}{
		"action": "fetch_products",
		"page":   1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	products := body["products"].([]interface{})
	require.Len(t, products, 1)
	storeInfo := body["storeInfo"].(map[string]interface{})
	assert.Equal(t, float64(5), storeInfo["totalProducts"])
}

func TestImportProduct_DemoFallback(t *testing.T) {
	router := newTestRouter(t)

	rec := postAction(t, router, "/api/v1/integrations/shopify", map[string]interface{}{
		"action":          "import_product",
		"product":         map[string]interface{}{"id": 1, "sku": "SKU-1", "name": "Name", "price": "10.00"},
		"camouflageTitle": "Cover",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["usedDemoFallback"])
}

func TestImportProduct_WrongPlatformRoute(t *testing.T) {
	router := newTestRouter(t)

	rec := postAction(t, router, "/api/v1/integrations/woocommerce", map[string]interface{}{
		"action":          "import_product",
		"product":         map[string]interface{}{"id": 1, "sku": "SKU-1"},
		"camouflageTitle": "Cover",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogs_ListAndClear(t *testing.T) {
	router := newTestRouter(t)
	srv := mockWooStore(t, 1)

	rec := postAction(t, router, "/api/v1/integrations/woocommerce", map[string]interface{}{
		"action":         "test",
		"storeUrl":       srv.URL,
		"consumerKey":    "ck_x",
		"consumerSecret": "cs_x",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)
	body := decodeBody(t, listRec)
	logs := body["logs"].([]interface{})
	assert.NotEmpty(t, logs)
	assert.NotContains(t, listRec.Body.String(), "ck_x")
	assert.NotContains(t, listRec.Body.String(), "cs_x")

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/logs", nil)
	clearRec := httptest.NewRecorder()
	router.ServeHTTP(clearRec, req)
	require.Equal(t, http.StatusOK, clearRec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil)
	listRec = httptest.NewRecorder()
	router.ServeHTTP(listRec, req)
	body = decodeBody(t, listRec)
	assert.Empty(t, body["logs"])
}
