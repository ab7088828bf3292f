package service

import (
	"context"
	"fmt"
	"time"

	apperrors "homesite/internal/errors"
	"homesite/internal/model"
	"homesite/internal/repository"
)

// FeedbackService handles the public review board.
type FeedbackService interface {
	CreateFeedback(ctx context.Context, name, text string, rating int) (*model.Feedback, error)
	ListFeedback(ctx context.Context) ([]model.Feedback, error)
}

type feedbackService struct {
	repo repository.FeedbackRepository
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(repo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{repo: repo}
}

func (s *feedbackService) CreateFeedback(ctx context.Context, name, text string, rating int) (*model.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.ErrInvalidRating
	}

	feedback := &model.Feedback{
		Name:       name,
		Text:       text,
		Rating:     rating,
		DatePosted: time.Now(),
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("%w: create feedback: %v", ErrStoreUnavailable, err)
	}
	return feedback, nil
}

func (s *feedbackService) ListFeedback(ctx context.Context) ([]model.Feedback, error) {
	reviews, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list feedback: %v", ErrStoreUnavailable, err)
	}
	return reviews, nil
}
