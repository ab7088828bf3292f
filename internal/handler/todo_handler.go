package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"homesite/internal/errors"
	"homesite/internal/service"
)

// TodoHandler handles the shared todo board.
type TodoHandler struct {
	todos service.TodoService
}

// NewTodoHandler creates a new todo handler.
func NewTodoHandler(todos service.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// TodoRequest represents a new todo entry.
type TodoRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=250"`
}

// ListTodos godoc
// @Summary List all todos
// @Tags todos
// @Produce json
// @Success 200 {array} model.Todo
// @Failure 500 {object} errors.ErrorResponse
// @Router /todos [get]
func (h *TodoHandler) ListTodos(c echo.Context) error {
	todos, err := h.todos.ListTodos(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to list todos",
			Code:  "TODO_LIST_FAILED",
		})
	}
	return c.JSON(http.StatusOK, todos)
}

// CreateTodo godoc
// @Summary Add a todo
// @Tags todos
// @Accept json
// @Produce json
// @Param request body TodoRequest true "Todo payload"
// @Success 201 {object} model.Todo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /todos [post]
func (h *TodoHandler) CreateTodo(c echo.Context) error {
	var req TodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	todo, err := h.todos.CreateTodo(c.Request().Context(), req.Title, req.Description)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to create todo",
			Code:  "TODO_CREATE_FAILED",
		})
	}
	return c.JSON(http.StatusCreated, todo)
}

// ToggleTodo godoc
// @Summary Toggle a todo's completion flag
// @Tags todos
// @Produce json
// @Param id path int true "Todo ID"
// @Success 200 {object} model.Todo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /todos/{id}/toggle [patch]
func (h *TodoHandler) ToggleTodo(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	todo, err := h.todos.ToggleTodo(c.Request().Context(), uint(id))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, todo)
}

// DeleteTodo godoc
// @Summary Delete a todo
// @Tags todos
// @Produce json
// @Param id path int true "Todo ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.todos.DeleteTodo(c.Request().Context(), uint(id)); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "todo deleted successfully",
	})
}
