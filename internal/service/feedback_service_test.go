package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "homesite/internal/errors"
	"homesite/internal/model"
)

// MockFeedbackRepository is a mock implementation of FeedbackRepository.
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, feedback *model.Feedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

func (m *MockFeedbackRepository) List(ctx context.Context) ([]model.Feedback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Feedback), args.Error(1)
}

func TestFeedbackService_CreateFeedback(t *testing.T) {
	mockRepo := new(MockFeedbackRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Feedback")).Return(nil)

	svc := NewFeedbackService(mockRepo)
	review, err := svc.CreateFeedback(context.Background(), "alice", "great site", 5)

	require.NoError(t, err)
	assert.Equal(t, "alice", review.Name)
	assert.Equal(t, 5, review.Rating)
	assert.False(t, review.DatePosted.IsZero())
	mockRepo.AssertExpectations(t)
}

func TestFeedbackService_CreateFeedbackRatingBounds(t *testing.T) {
	mockRepo := new(MockFeedbackRepository)
	svc := NewFeedbackService(mockRepo)
	ctx := context.Background()

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.CreateFeedback(ctx, "alice", "text", rating)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRating)
	}
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFeedbackService_ListFeedback(t *testing.T) {
	mockRepo := new(MockFeedbackRepository)
	mockRepo.On("List", mock.Anything).Return([]model.Feedback{
		{ID: 2, Name: "bob", Rating: 4},
		{ID: 1, Name: "alice", Rating: 5},
	}, nil)

	svc := NewFeedbackService(mockRepo)
	reviews, err := svc.ListFeedback(context.Background())

	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	mockRepo.AssertExpectations(t)
}
