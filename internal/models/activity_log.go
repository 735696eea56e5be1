package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLog is one append-only audit record. Rows are never updated
// or deleted by broker code; the dashboard's "clear logs" action is the
// only thing that removes them.
type ActivityLog struct {
	ID         string                 `json:"id" gorm:"type:uuid;primary_key"`
	MerchantID string                 `json:"merchant_id" gorm:"type:uuid;index"`
	Level      LogLevel               `json:"level" gorm:"not null"`
	Source     string                 `json:"source" gorm:"not null"`
	Message    string                 `json:"message" gorm:"not null"`
	Details    map[string]interface{} `json:"details,omitempty" gorm:"serializer:json"`
	CreatedAt  time.Time              `json:"created_at" gorm:"index"`
}

type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelSuccess LogLevel = "SUCCESS"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
	LogLevelDebug   LogLevel = "DEBUG"
)

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
