package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"homesite/internal/errors"
	"homesite/internal/model"
	"homesite/internal/service"
)

// UserHandler handles the public user directory.
type UserHandler struct {
	identity service.IdentityService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(identity service.IdentityService) *UserHandler {
	return &UserHandler{identity: identity}
}

// UserListResponse represents the user directory.
type UserListResponse struct {
	Users      []model.User `json:"users"`
	TotalUsers int64        `json:"total_users"`
}

// ListUsers godoc
// @Summary List all users
// @Tags users
// @Produce json
// @Success 200 {object} UserListResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, total, err := h.identity.ListUsers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to list users",
			Code:  "USER_LIST_FAILED",
		})
	}
	return c.JSON(http.StatusOK, UserListResponse{
		Users:      users,
		TotalUsers: total,
	})
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	user, err := h.identity.GetUser(c.Request().Context(), uint(id))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, user)
}
