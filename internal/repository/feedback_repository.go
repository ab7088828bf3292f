package repository

import (
	"context"

	"gorm.io/gorm"

	"homesite/internal/model"
)

// FeedbackRepository defines feedback persistence operations.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *model.Feedback) error
	List(ctx context.Context) ([]model.Feedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository builds a GORM-backed repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *model.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) List(ctx context.Context) ([]model.Feedback, error) {
	var reviews []model.Feedback
	if err := r.db.WithContext(ctx).Order("date_posted DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
