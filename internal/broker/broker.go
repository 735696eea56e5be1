// Package broker implements the integration credential and
// remote-mutation broker: connectivity probing, paginated catalog
// fetching and the two-phase camouflage import against the remote
// commerce platforms.
package broker

import (
	"net/url"
	"strings"

	"relist/internal/models"
)

// CredentialSource is what the broker needs from the credential store.
// Implemented by store.CredentialStore; declared here so the broker
// does not depend on the persistence layer.
type CredentialSource interface {
	// ActiveIntegration returns the active integration for the pair,
	// or nil when the merchant has not connected the platform.
	ActiveIntegration(merchantID string, platform models.Platform) (*models.Integration, error)
	// LoadSecrets decrypts and returns the credential bundle.
	LoadSecrets(integrationID string) (*models.CredentialBundle, error)
}

// NormalizeBaseURL validates that a store URL carries an explicit
// http/https scheme and strips any trailing slash.
func NormalizeBaseURL(raw string) (string, *Error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "", newError(KindInvalidInput, "store URL must start with http:// or https://")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", newError(KindInvalidInput, "store URL is not a valid URL")
	}
	return strings.TrimRight(raw, "/"), nil
}
