package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"homesite/internal/auth"
)

// CookieHandler backs the cookie-inspection demo page: list the cookies the
// browser sent, set one, delete one or all of them.
type CookieHandler struct{}

// NewCookieHandler creates a new cookie handler.
func NewCookieHandler() *CookieHandler {
	return &CookieHandler{}
}

// CookieEntry represents one cookie on the request.
type CookieEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AddCookieRequest represents a cookie to set.
type AddCookieRequest struct {
	Key    string `json:"key" validate:"required"`
	Value  string `json:"value" validate:"required"`
	Expiry int    `json:"expiry" validate:"required,gt=0"` // seconds
}

// ListCookies godoc
// @Summary List the cookies sent with this request
// @Tags cookies
// @Produce json
// @Success 200 {array} CookieEntry
// @Failure 401 {object} errors.ErrorResponse
// @Router /cookies [get]
func (h *CookieHandler) ListCookies(c echo.Context) error {
	cookies := c.Cookies()
	entries := make([]CookieEntry, 0, len(cookies))
	for _, cookie := range cookies {
		entries = append(entries, CookieEntry{Name: cookie.Name, Value: cookie.Value})
	}
	return c.JSON(http.StatusOK, entries)
}

// AddCookie godoc
// @Summary Set a cookie with an expiry
// @Tags cookies
// @Accept json
// @Produce json
// @Param request body AddCookieRequest true "Cookie to set"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /cookies [post]
func (h *CookieHandler) AddCookie(c echo.Context) error {
	var req AddCookieRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	c.SetCookie(&http.Cookie{
		Name:   req.Key,
		Value:  req.Value,
		Path:   "/",
		MaxAge: req.Expiry,
	})
	return c.JSON(http.StatusOK, map[string]string{
		"message": "cookie added",
	})
}

// DeleteCookie godoc
// @Summary Delete one cookie by name
// @Tags cookies
// @Produce json
// @Param name path string true "Cookie name"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /cookies/{name} [delete]
func (h *CookieHandler) DeleteCookie(c echo.Context) error {
	name := c.Param("name")
	c.SetCookie(&http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return c.JSON(http.StatusOK, map[string]string{
		"message": "cookie deleted",
	})
}

// DeleteAllCookies godoc
// @Summary Delete every cookie on the request
// @Tags cookies
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /cookies [delete]
func (h *CookieHandler) DeleteAllCookies(c echo.Context) error {
	for _, cookie := range c.Cookies() {
		// Expiring the session cookie here would silently log the caller out.
		if cookie.Name == auth.SessionCookieName {
			continue
		}
		c.SetCookie(&http.Cookie{
			Name:   cookie.Name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "all cookies deleted",
	})
}
