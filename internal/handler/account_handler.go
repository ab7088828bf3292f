package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"homesite/internal/errors"
	"homesite/internal/middleware"
	"homesite/internal/service"
)

// AccountHandler handles the authenticated user's own account.
type AccountHandler struct {
	identity service.IdentityService
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(identity service.IdentityService) *AccountHandler {
	return &AccountHandler{identity: identity}
}

// UpdateAccountRequest represents a profile update request.
type UpdateAccountRequest struct {
	Username  string `json:"username" validate:"required,username"`
	Email     string `json:"email" validate:"required,email"`
	AboutMe   string `json:"about_me" validate:"max=240"`
	ImageFile string `json:"image_file" validate:"omitempty,max=64"`
}

// GetAccount godoc
// @Summary Get the current user's account
// @Tags account
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /account [get]
func (h *AccountHandler) GetAccount(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateAccount godoc
// @Summary Update the current user's profile
// @Tags account
// @Accept json
// @Produce json
// @Param request body UpdateAccountRequest true "Profile fields"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /account [put]
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.identity.UpdateAccount(c.Request().Context(), user, req.Username, req.Email, req.AboutMe, req.ImageFile)
	if err != nil {
		switch err {
		case service.ErrDuplicateUsername:
			return echo.NewHTTPError(http.StatusConflict, errors.ErrorResponse{
				Error: err.Error(),
				Code:  "DUPLICATE_USERNAME",
			})
		case service.ErrDuplicateEmail:
			return echo.NewHTTPError(http.StatusConflict, errors.ErrorResponse{
				Error: err.Error(),
				Code:  "DUPLICATE_EMAIL",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to update account",
			Code:  "ACCOUNT_UPDATE_FAILED",
		})
	}

	return c.JSON(http.StatusOK, updated)
}
