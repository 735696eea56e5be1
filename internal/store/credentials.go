package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"relist/internal/activitylog"
	"relist/internal/broker"
	"relist/internal/crypto"
	"relist/internal/models"
)

const logSource = "CREDENTIAL_STORE"

// CredentialStore owns the integrations table: one active row per
// (merchant, platform). The secret bundle is encrypted before it
// touches the database and decrypted only for the broker's internal
// use; nothing here ever returns plaintext secrets to a caller outside
// the broker.
type CredentialStore struct {
	db       *gorm.DB
	cipher   crypto.Cipher
	activity *activitylog.Logger
}

func New(db *gorm.DB, cipher crypto.Cipher, activity *activitylog.Logger) *CredentialStore {
	return &CredentialStore{db: db, cipher: cipher, activity: activity}
}

// Save encrypts the secret bundle and upserts the integration keyed by
// (merchant, platform). Re-saving replaces the previous bundle whole;
// there is no partial update.
func (s *CredentialStore) Save(merchantID string, platform models.Platform, storeName, baseURL string, secrets map[string]string) (*models.Integration, error) {
	if !platform.Valid() {
		return nil, broker.InvalidInputError("platform")
	}
	if storeName == "" {
		return nil, broker.InvalidInputError("storeName")
	}
	normalized, nerr := broker.NormalizeBaseURL(baseURL)
	if nerr != nil {
		return nil, nerr
	}
	for field, v := range secrets {
		if v == "" {
			return nil, broker.InvalidInputError(field)
		}
	}

	s.activity.Append(merchantID, models.LogLevelInfo, logSource,
		fmt.Sprintf("Saving %s integration for %s", platform, normalized),
		map[string]interface{}{"platform": platform, "storeUrl": normalized})

	bundle := models.CredentialBundle{
		Platform: platform,
		BaseURL:  normalized,
		Secrets:  secrets,
	}
	plaintext, err := json.Marshal(bundle)
	if err != nil {
		return nil, broker.PersistenceError("failed to encode credentials", err)
	}
	token, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, broker.PersistenceError("failed to encrypt credentials", err)
	}

	integration := models.Integration{
		MerchantID:           merchantID,
		Platform:             platform,
		StoreName:            storeName,
		StoreURL:             normalized,
		EncryptedCredentials: token,
		IsActive:             true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Integration
		err := tx.Where("merchant_id = ? AND platform = ?", merchantID, platform).
			First(&existing).Error
		switch {
		case err == nil:
			integration.ID = existing.ID
			integration.CreatedAt = existing.CreatedAt
			integration.UpdatedAt = time.Now().UTC()
			return tx.Save(&integration).Error
		case err == gorm.ErrRecordNotFound:
			return tx.Create(&integration).Error
		default:
			return err
		}
	})
	if err != nil {
		s.activity.Append(merchantID, models.LogLevelError, logSource,
			fmt.Sprintf("Failed to save %s integration", platform),
			map[string]interface{}{"storeUrl": normalized})
		return nil, broker.PersistenceError("failed to save integration", err)
	}

	s.activity.Append(merchantID, models.LogLevelSuccess, logSource,
		fmt.Sprintf("Saved %s integration %s", platform, integration.ID),
		map[string]interface{}{"integrationId": integration.ID, "storeUrl": normalized})

	return &integration, nil
}

// List returns the non-secret summaries for a merchant's integrations
// on one platform.
func (s *CredentialStore) List(merchantID string, platform models.Platform) ([]models.IntegrationSummary, error) {
	var rows []models.Integration
	err := s.db.Where("merchant_id = ? AND platform = ?", merchantID, platform).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, broker.PersistenceError("failed to list integrations", err)
	}

	summaries := make([]models.IntegrationSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, rows[i].Summary())
	}
	return summaries, nil
}

// ActiveIntegration returns the single active integration for a
// (merchant, platform) pair, or nil when none exists. Implements
// broker.CredentialSource.
func (s *CredentialStore) ActiveIntegration(merchantID string, platform models.Platform) (*models.Integration, error) {
	var integration models.Integration
	err := s.db.Where("merchant_id = ? AND platform = ? AND is_active = ?", merchantID, platform, true).
		Order("updated_at DESC").
		First(&integration).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, broker.PersistenceError("failed to look up integration", err)
	}
	return &integration, nil
}

// LoadSecrets decrypts the stored bundle for an integration. For
// broker-internal use only. Implements broker.CredentialSource.
func (s *CredentialStore) LoadSecrets(integrationID string) (*models.CredentialBundle, error) {
	var integration models.Integration
	err := s.db.First(&integration, "id = ?", integrationID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, broker.PersistenceError("integration not found", err)
	}
	if err != nil {
		return nil, broker.PersistenceError("failed to load integration", err)
	}

	plaintext, err := s.cipher.Decrypt(integration.EncryptedCredentials)
	if err != nil {
		s.activity.Append(integration.MerchantID, models.LogLevelError, logSource,
			"Failed to decrypt stored credentials",
			map[string]interface{}{"integrationId": integrationID})
		return nil, broker.DecryptionError(err)
	}

	var bundle models.CredentialBundle
	if err := json.Unmarshal(plaintext, &bundle); err != nil {
		return nil, broker.DecryptionError(err)
	}
	return &bundle, nil
}

// Deactivate flips an integration inactive without deleting the row.
func (s *CredentialStore) Deactivate(merchantID, integrationID string) error {
	res := s.db.Model(&models.Integration{}).
		Where("id = ? AND merchant_id = ?", integrationID, merchantID).
		Update("is_active", false)
	if res.Error != nil {
		return broker.PersistenceError("failed to deactivate integration", res.Error)
	}
	if res.RowsAffected == 0 {
		return broker.PersistenceError("integration not found", gorm.ErrRecordNotFound)
	}

	s.activity.Append(merchantID, models.LogLevelInfo, logSource,
		fmt.Sprintf("Deactivated integration %s", integrationID), nil)
	return nil
}
