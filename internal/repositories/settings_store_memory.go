package repositories

import (
	"context"
	"fmt"
	"sync"

	"canedrop/internal/models"
)

// MemorySettingsStore holds ShopSettings in memory.
type MemorySettingsStore struct {
	settings *models.ShopSettings
	mu       sync.RWMutex
}

// NewMemorySettingsStore creates an empty MemorySettingsStore.
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{}
}

// Load returns a copy of the stored settings.
func (s *MemorySettingsStore) Load(_ context.Context) (*models.ShopSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, fmt.Errorf("shop settings: %w", ErrNotFound)
	}
	out := *s.settings
	out.WorkingDays = append([]string(nil), s.settings.WorkingDays...)
	return &out, nil
}

// Save replaces the stored settings.
func (s *MemorySettingsStore) Save(_ context.Context, settings *models.ShopSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *settings
	stored.WorkingDays = append([]string(nil), settings.WorkingDays...)
	s.settings = &stored
	return nil
}
