package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"canedrop/internal/models"

	"github.com/google/uuid"
)

// MemoryFeedbackRepository is an in-memory implementation of FeedbackRepository.
type MemoryFeedbackRepository struct {
	items []models.Feedback
	mu    sync.RWMutex
}

// NewMemoryFeedbackRepository creates a new instance of MemoryFeedbackRepository.
func NewMemoryFeedbackRepository() *MemoryFeedbackRepository {
	return &MemoryFeedbackRepository{}
}

// Create stores a feedback message.
func (r *MemoryFeedbackRepository) Create(_ context.Context, feedback *models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}
	r.items = append(r.items, *feedback)
	return nil
}

// List returns all feedback, newest first.
func (r *MemoryFeedbackRepository) List(_ context.Context) ([]models.Feedback, error) {
	r.mu.RLock()
	out := make([]models.Feedback, len(r.items))
	copy(out, r.items)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
