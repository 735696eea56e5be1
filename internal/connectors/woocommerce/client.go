package woocommerce

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"relist/internal/connectors"
	"relist/internal/logger"
)

// TotalHeader is the response header WooCommerce sets to the total
// product count matching the query, regardless of pagination.
const TotalHeader = "X-WP-Total"

// MaxPerPage is the documented WooCommerce REST ceiling for per_page.
const MaxPerPage = 100

// Client talks to one WooCommerce store over its REST API using HTTP
// Basic auth built from the consumer key pair. The API root path is
// passed per call because WordPress installs expose it under several
// shapes; the broker's prober decides which one to use.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	logger         *logger.Logger
}

func NewClient(baseURL, consumerKey, consumerSecret string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// BaseURL returns the normalized store URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ProductsPage is one raw page plus the store's declared total.
type ProductsPage struct {
	Products []Product
	Total    int
}

// FetchProducts requests one page of published products from the given
// API root (e.g. "/wp-json/wc/v3"). A non-2xx status comes back as
// *connectors.HTTPError, a 200 with a non-JSON body as
// *connectors.ParseError.
func (c *Client) FetchProducts(ctx context.Context, apiPath string, page, perPage int) (*ProductsPage, error) {
	url := fmt.Sprintf("%s%s/products?per_page=%d&page=%d&status=publish", c.baseURL, apiPath, perPage, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &connectors.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       connectors.TruncateBody(body),
		}
	}

	// WordPress answers 200 with an HTML page when the REST route is
	// missing; only a JSON array counts as a WooCommerce response.
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, &connectors.ParseError{
			Snippet: connectors.TruncateBody(body),
			Cause:   fmt.Errorf("expected JSON array, got %q", firstBytes(trimmed)),
		}
	}

	var products []Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, &connectors.ParseError{
			Snippet: connectors.TruncateBody(body),
			Cause:   err,
		}
	}

	total := 0
	if v := resp.Header.Get(TotalHeader); v != "" {
		total, _ = strconv.Atoi(v)
	}

	return &ProductsPage{Products: products, Total: total}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	auth := base64.StdEncoding.EncodeToString([]byte(c.consumerKey + ":" + c.consumerSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "relist-integration/1.0")
}

func readBody(resp *http.Response) ([]byte, error) {
	const maxBody = 4 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func firstBytes(s string) string {
	if len(s) > 40 {
		return s[:40]
	}
	return s
}
