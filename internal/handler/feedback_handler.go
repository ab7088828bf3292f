package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"homesite/internal/errors"
	"homesite/internal/service"
)

// FeedbackHandler handles the public review board.
type FeedbackHandler struct {
	feedback service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(feedback service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// FeedbackRequest represents a new review.
type FeedbackRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// ListFeedback godoc
// @Summary List all reviews, newest first
// @Tags feedback
// @Produce json
// @Success 200 {array} model.Feedback
// @Failure 500 {object} errors.ErrorResponse
// @Router /reviews [get]
func (h *FeedbackHandler) ListFeedback(c echo.Context) error {
	reviews, err := h.feedback.ListFeedback(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to list reviews",
			Code:  "FEEDBACK_LIST_FAILED",
		})
	}
	return c.JSON(http.StatusOK, reviews)
}

// CreateFeedback godoc
// @Summary Post a review
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body FeedbackRequest true "Review payload"
// @Success 201 {object} model.Feedback
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /reviews [post]
func (h *FeedbackHandler) CreateFeedback(c echo.Context) error {
	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	review, err := h.feedback.CreateFeedback(c.Request().Context(), req.Name, req.Text, req.Rating)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, review)
}
