package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"canedrop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const shopSettingsKey = "shop_settings"

// SettingsRecord is one named JSON document in the app_settings table.
type SettingsRecord struct {
	Name      string `gorm:"primaryKey;type:varchar(64)"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (SettingsRecord) TableName() string { return "app_settings" }

// GORMSettingsStore keeps ShopSettings as a single JSON document under a fixed name.
type GORMSettingsStore struct {
	db *gorm.DB
}

// NewGORMSettingsStore creates a new instance of GORMSettingsStore.
func NewGORMSettingsStore(db *gorm.DB) *GORMSettingsStore {
	return &GORMSettingsStore{db: db}
}

// Load reads the settings document.
func (s *GORMSettingsStore) Load(ctx context.Context) (*models.ShopSettings, error) {
	var rec SettingsRecord
	if err := s.db.WithContext(ctx).First(&rec, "name = ?", shopSettingsKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shop settings: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load shop settings: %w", err)
	}

	var settings models.ShopSettings
	if err := json.Unmarshal([]byte(rec.Value), &settings); err != nil {
		return nil, fmt.Errorf("failed to decode shop settings: %w", err)
	}
	return &settings, nil
}

// Save replaces the settings document.
func (s *GORMSettingsStore) Save(ctx context.Context, settings *models.ShopSettings) error {
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode shop settings: %w", err)
	}

	rec := SettingsRecord{Name: shopSettingsKey, Value: string(data), UpdatedAt: settings.UpdatedAt}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save shop settings: %w", err)
	}
	return nil
}
