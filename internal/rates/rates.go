// Package rates looks up currency spot rates for best-effort price
// display. Lookup failure is an expected condition: callers fall back
// to a 1:1 rate and flag prices as unconverted.
package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"relist/internal/logger"
)

// Source returns the spot rate converting one unit of from into to.
type Source interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// Client fetches rates from an exchange-rate HTTP API shaped like
// open.er-api.com: GET {base}/latest/{from} returns a rates map keyed
// by currency code.
type Client struct {
	http   *resty.Client
	logger *logger.Logger
}

func NewClient(baseURL string, log *logger.Logger) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second)
	return &Client{http: http, logger: log}
}

type latestResponse struct {
	Result string                     `json:"result"`
	Base   string                     `json:"base_code"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

func (c *Client) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	var out latestResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/latest/" + from)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate lookup failed: %w", err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("rate lookup returned %d", resp.StatusCode())
	}

	rate, ok := out.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("no rate from %s to %s", from, to)
	}
	return rate, nil
}

// Fixed is a Source returning a constant rate. Tests and the 1:1
// fallback use it.
type Fixed struct {
	Value decimal.Decimal
}

func (f Fixed) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	return f.Value, nil
}
