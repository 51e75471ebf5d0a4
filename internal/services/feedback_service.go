package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"canedrop/internal/logger"
	"canedrop/internal/models"
	"canedrop/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeedbackService stores messages from the public contact form.
type FeedbackService struct {
	repo repositories.FeedbackRepository
	now  func() time.Time
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(repo repositories.FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo, now: time.Now}
}

// FeedbackInput is the contact form body.
type FeedbackInput struct {
	Email   string `json:"email" validate:"required,email,max=255"`
	Message string `json:"message" validate:"required,min=10,max=2000"`
}

// Submit records a feedback message. No account is needed.
func (s *FeedbackService) Submit(ctx context.Context, in FeedbackInput) (*models.Feedback, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	feedback := &models.Feedback{
		ID:        uuid.New().String(),
		Email:     in.Email,
		Message:   in.Message,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	logger.FromCtx(ctx).Info("feedback received", zap.String("feedback_id", feedback.ID))
	return feedback, nil
}

// List returns all feedback, newest first. Owner only.
func (s *FeedbackService) List(ctx context.Context, principal models.Principal) ([]models.Feedback, error) {
	if err := authorize(principal, models.CapViewFeedback); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return items, nil
}
