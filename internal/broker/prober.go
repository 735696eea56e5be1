package broker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"relist/internal/activitylog"
	"relist/internal/connectors"
	"relist/internal/connectors/shopify"
	"relist/internal/connectors/woocommerce"
	"relist/internal/logger"
	"relist/internal/models"
)

const probeSource = "CONNECTIVITY_PROBE"

// wooCandidate is one guessable WooCommerce REST endpoint shape. The
// exact path depends on the WordPress permalink structure, install
// directory and API version, so the prober walks this list in order
// instead of assuming a single path.
type wooCandidate struct {
	Path       string
	APIVersion string
}

// wooCandidates is ordered most-likely-first: the standard v3 route,
// the v2 fallback, the plain-permalink index.php variant, then the
// pre-REST legacy API.
var wooCandidates = []wooCandidate{
	{Path: "/wp-json/wc/v3", APIVersion: "v3"},
	{Path: "/wp-json/wc/v2", APIVersion: "v2"},
	{Path: "/index.php/wp-json/wc/v3", APIVersion: "v3"},
	{Path: "/wc-api/v3", APIVersion: "legacy"},
}

// StoreInfo is the platform metadata a successful probe discovered.
type StoreInfo struct {
	StoreURL      string `json:"storeUrl"`
	StoreName     string `json:"name,omitempty"`
	ProductsCount int    `json:"productsCount"`
	APIVersion    string `json:"apiVersion,omitempty"`
	APIURL        string `json:"apiUrl,omitempty"`
	Currency      string `json:"currency,omitempty"`
	Plan          string `json:"plan,omitempty"`
	Status        string `json:"status"`
}

// ProbeResult is the discriminated outcome of one probe.
type ProbeResult struct {
	Success   bool       `json:"success"`
	StoreInfo *StoreInfo `json:"storeInfo,omitempty"`
	Err       *Error     `json:"-"`
}

// Prober performs read-only connectivity and authorization checks
// against a platform with freshly supplied, unpersisted credentials.
type Prober struct {
	logger   *logger.Logger
	activity *activitylog.Logger
}

func NewProber(log *logger.Logger, activity *activitylog.Logger) *Prober {
	return &Prober{logger: log, activity: activity}
}

// Probe validates baseURL, dispatches on platform and returns a
// normalized outcome. It never persists anything.
func (p *Prober) Probe(ctx context.Context, merchantID string, bundle *models.CredentialBundle) *ProbeResult {
	baseURL, err := NormalizeBaseURL(bundle.BaseURL)
	if err != nil {
		return &ProbeResult{Err: err}
	}

	var result *ProbeResult
	switch bundle.Platform {
	case models.PlatformWooCommerce:
		result = p.probeWooCommerce(ctx, merchantID, baseURL, bundle.Secrets)
	case models.PlatformShopify:
		result = p.probeShopify(ctx, merchantID, baseURL, bundle.Secrets)
	default:
		return &ProbeResult{Err: InvalidInputError("platform")}
	}

	if result.Success {
		p.activity.Append(merchantID, models.LogLevelSuccess, probeSource,
			fmt.Sprintf("Probe succeeded for %s", baseURL),
			map[string]interface{}{"platform": bundle.Platform, "storeUrl": baseURL})
	} else {
		p.activity.Append(merchantID, models.LogLevelError, probeSource,
			fmt.Sprintf("Probe failed for %s: %s", baseURL, result.Err.Message),
			map[string]interface{}{"platform": bundle.Platform, "storeUrl": baseURL, "kind": result.Err.Kind})
	}
	return result
}

// probeWooCommerce walks the candidate table. A 401/403 anywhere is
// terminal: wrong credentials stay wrong on every path. Anything else
// moves on to the next candidate.
func (p *Prober) probeWooCommerce(ctx context.Context, merchantID, baseURL string, secrets map[string]string) *ProbeResult {
	key, cSecret := secrets[models.SecretConsumerKey], secrets[models.SecretConsumerSecret]
	if key == "" {
		return &ProbeResult{Err: InvalidInputError(models.SecretConsumerKey)}
	}
	if cSecret == "" {
		return &ProbeResult{Err: InvalidInputError(models.SecretConsumerSecret)}
	}

	client := woocommerce.NewClient(baseURL, key, cSecret, p.logger)
	attempted := make([]string, 0, len(wooCandidates))

	for _, cand := range wooCandidates {
		attempted = append(attempted, cand.Path)
		p.activity.Append(merchantID, models.LogLevelDebug, probeSource,
			fmt.Sprintf("Trying candidate %s", cand.Path),
			map[string]interface{}{"storeUrl": baseURL, "apiVersion": cand.APIVersion})

		page, err := client.FetchProducts(ctx, cand.Path, 1, 1)
		if err == nil {
			return &ProbeResult{
				Success: true,
				StoreInfo: &StoreInfo{
					StoreURL:      baseURL,
					ProductsCount: page.Total,
					APIVersion:    cand.APIVersion,
					APIURL:        baseURL + cand.Path,
					Status:        "connected",
				},
			}
		}

		if terminal := classifyTerminal(err); terminal != nil {
			return &ProbeResult{Err: terminal}
		}

		p.logger.Debug("candidate %s failed: %v", cand.Path, err)
	}

	return &ProbeResult{Err: &Error{
		Kind:    KindAPINotFound,
		Message: "WooCommerce REST API not found. Check that WooCommerce is installed and active and that the REST API is enabled.",
		Detail:  "attempted paths: " + strings.Join(attempted, ", "),
	}}
}

// probeShopify hits the single canonical shop.json path. There are no
// alternative shapes to fall back to, so every failure is final.
func (p *Prober) probeShopify(ctx context.Context, merchantID, baseURL string, secrets map[string]string) *ProbeResult {
	token := secrets[models.SecretAccessToken]
	if token == "" {
		return &ProbeResult{Err: InvalidInputError(models.SecretAccessToken)}
	}

	client := shopify.NewClient(baseURL, token, p.logger)

	p.activity.Append(merchantID, models.LogLevelDebug, probeSource,
		"Requesting shop.json", map[string]interface{}{"storeUrl": baseURL})

	shop, err := client.GetShop(ctx)
	if err != nil {
		if terminal := classifyTerminal(err); terminal != nil {
			return &ProbeResult{Err: terminal}
		}
		return &ProbeResult{Err: classifyRemote(err)}
	}

	count, err := client.CountProducts(ctx)
	if err != nil {
		// Shop metadata was readable; a count failure degrades to zero
		// rather than failing the probe.
		p.logger.Warn("product count unavailable for %s: %v", baseURL, err)
		count = 0
	}

	return &ProbeResult{
		Success: true,
		StoreInfo: &StoreInfo{
			StoreURL:      baseURL,
			StoreName:     shop.Name,
			ProductsCount: count,
			Currency:      shop.Currency,
			Plan:          shop.PlanDisplayName,
			Status:        "connected",
		},
	}
}

// classifyTerminal maps 401/403 responses onto their terminal error
// kinds; any other failure returns nil so the caller can continue.
func classifyTerminal(err error) *Error {
	var httpErr *connectors.HTTPError
	if !errors.As(err, &httpErr) {
		return nil
	}
	switch {
	case httpErr.Unauthorized():
		return newError(KindInvalidCredentials,
			"Invalid credentials. Check the API key and secret.")
	case httpErr.Forbidden():
		return newError(KindInsufficientPermissions,
			"Access denied. Check that the API keys have the required permissions.")
	}
	return nil
}

// classifyRemote maps any client error onto the taxonomy for callers
// that have no further candidates to try.
func classifyRemote(err error) *Error {
	var httpErr *connectors.HTTPError
	if errors.As(err, &httpErr) {
		return &Error{
			Kind:    KindRemotePlatformError,
			Message: fmt.Sprintf("remote platform returned %d", httpErr.StatusCode),
			Detail:  truncate(httpErr.Body),
		}
	}
	var parseErr *connectors.ParseError
	if errors.As(err, &parseErr) {
		return &Error{
			Kind:    KindRemotePlatformError,
			Message: "remote platform returned an unexpected response",
			Detail:  truncate(parseErr.Snippet),
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return wrapError(KindTransientNetworkError, "request timed out", err)
	}
	return wrapError(KindTransientNetworkError, "could not reach the remote platform", err)
}
