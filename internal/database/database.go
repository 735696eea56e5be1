package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"relist/internal/models"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	isSQLite := strings.HasPrefix(databaseURL, "sqlite://")

	if isSQLite {
		// SQLite for development and tests
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite {
		// SQLite has no TIMESTAMPTZ; let GORM derive the schema.
		err = db.AutoMigrate(&models.Integration{}, &models.ActivityLog{})
	} else {
		err = db.Exec(createTablesSQL).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS integrations (
	id UUID PRIMARY KEY,
	merchant_id UUID NOT NULL,
	platform TEXT NOT NULL,
	store_name TEXT NOT NULL,
	store_url TEXT NOT NULL,
	encrypted_credentials TEXT NOT NULL,
	is_active BOOLEAN DEFAULT true,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_integrations_merchant_platform
	ON integrations (merchant_id, platform);

CREATE TABLE IF NOT EXISTS activity_logs (
	id UUID PRIMARY KEY,
	merchant_id UUID,
	level TEXT NOT NULL,
	source TEXT NOT NULL,
	message TEXT NOT NULL,
	details JSONB,
	created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_activity_logs_created_at
	ON activity_logs (created_at);
`

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
