package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"relist/internal/connectors"
	"relist/internal/logger"
)

// APIVersion pins the Admin REST API version every request uses.
const APIVersion = "2024-07"

// Client talks to one Shopify store over the Admin REST API. Unlike
// WooCommerce there is exactly one valid endpoint shape, so the base
// URL plus APIVersion fully determines every path.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *logger.Logger
}

func NewClient(baseURL, accessToken string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// BaseURL returns the normalized store URL.
func (c *Client) BaseURL() string { return c.baseURL }

// GetShop fetches shop.json; it doubles as the connectivity probe for
// the destination platform.
func (c *Client) GetShop(ctx context.Context) (*Shop, error) {
	var shopResp struct {
		Shop Shop `json:"shop"`
	}
	if err := c.do(ctx, http.MethodGet, "shop.json", nil, &shopResp); err != nil {
		return nil, err
	}
	return &shopResp.Shop, nil
}

// CountProducts fetches the store's total product count.
func (c *Client) CountProducts(ctx context.Context) (int, error) {
	var countResp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "products/count.json", nil, &countResp); err != nil {
		return 0, err
	}
	return countResp.Count, nil
}

// CreateProduct posts a new product and returns the created resource.
func (c *Client) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	payload := struct {
		Product Product `json:"product"`
	}{Product: *product}

	var created struct {
		Product Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "products.json", payload, &created); err != nil {
		return nil, err
	}
	return &created.Product, nil
}

// DeleteProduct removes a product. The importer only needs it for the
// placeholder-cleanup path, which is best-effort by contract.
func (c *Client) DeleteProduct(ctx context.Context, productID int64) error {
	path := fmt.Sprintf("products/%d.json", productID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	url := fmt.Sprintf("%s/admin/api/%s/%s", c.baseURL, APIVersion, path)

	var bodyReader io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &connectors.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       connectors.TruncateBody(body),
		}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return &connectors.ParseError{
				Snippet: connectors.TruncateBody(body),
				Cause:   err,
			}
		}
	}
	return nil
}
