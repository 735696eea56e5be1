package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Integration is one connected store for a merchant. The encrypted
// credential blob is write-only from the application's point of view:
// it is set on save and only ever read back by the credential store
// for decryption, never serialized to API responses.
type Integration struct {
	ID                   string    `json:"id" gorm:"type:uuid;primary_key"`
	MerchantID           string    `json:"merchant_id" gorm:"type:uuid;not null;index:idx_integrations_merchant_platform"`
	Platform             Platform  `json:"platform" gorm:"not null;index:idx_integrations_merchant_platform"`
	StoreName            string    `json:"store_name" gorm:"not null"`
	StoreURL             string    `json:"store_url" gorm:"not null"`
	EncryptedCredentials string    `json:"-" gorm:"not null"`
	IsActive             bool      `json:"is_active" gorm:"default:true"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type Platform string

const (
	PlatformWooCommerce Platform = "woocommerce"
	PlatformShopify     Platform = "shopify"
)

// Valid reports whether p is one of the two supported platforms.
func (p Platform) Valid() bool {
	return p == PlatformWooCommerce || p == PlatformShopify
}

func (i *Integration) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// IntegrationSummary is the non-secret view returned across the API
// boundary. LastSync mirrors the row's updated_at.
type IntegrationSummary struct {
	ID        string    `json:"id"`
	StoreName string    `json:"storeName"`
	StoreURL  string    `json:"storeUrl"`
	Status    string    `json:"status"`
	LastSync  time.Time `json:"lastSync"`
}

// Summary strips the secret blob and maps is_active onto the
// connected/disconnected status the dashboard shows.
func (i *Integration) Summary() IntegrationSummary {
	status := "disconnected"
	if i.IsActive {
		status = "connected"
	}
	return IntegrationSummary{
		ID:        i.ID,
		StoreName: i.StoreName,
		StoreURL:  i.StoreURL,
		Status:    status,
		LastSync:  i.UpdatedAt,
	}
}

// CredentialBundle holds the platform-specific secrets for one
// integration. It is encrypted as a whole before persistence and never
// crosses the API boundary after save.
type CredentialBundle struct {
	Platform Platform          `json:"platform"`
	BaseURL  string            `json:"baseUrl"`
	Secrets  map[string]string `json:"secrets"`
}

// Secret field names used inside CredentialBundle.Secrets.
const (
	SecretConsumerKey    = "consumerKey"
	SecretConsumerSecret = "consumerSecret"
	SecretAccessToken    = "accessToken"
)
