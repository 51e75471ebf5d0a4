package repositories

import (
	"context"

	"canedrop/internal/models"
)

// FeedbackRepository defines the interface for feedback data access.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	// List returns all feedback, newest first.
	List(ctx context.Context) ([]models.Feedback, error)
}
