package repositories

import (
	"context"

	"canedrop/internal/models"
)

// SettingsStore holds the one and only ShopSettings document.
// There is no id: a store either has the document or returns ErrNotFound.
type SettingsStore interface {
	Load(ctx context.Context) (*models.ShopSettings, error)
	Save(ctx context.Context, settings *models.ShopSettings) error
}
