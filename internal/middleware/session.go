package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"homesite/internal/auth"
	"homesite/internal/model"
	"homesite/internal/service"
)

const (
	currentUserKey = "currentUser"
	sessionIDKey   = "sessionID"
)

// TokenFromRequest extracts the session token from the session cookie or, for
// non-browser clients, from a bearer Authorization header. Empty when absent.
func TokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// ResolveSession resolves the request's session token once and attaches the
// user to the echo context. Requests with no usable token proceed anonymously;
// this middleware never rejects.
func ResolveSession(identity service.IdentityService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c)
			if token == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			user, sessionID, err := identity.Resolve(ctx, token)
			if err != nil || user == nil {
				return next(c)
			}

			c.Set(currentUserKey, user)
			c.Set(sessionIDKey, sessionID)
			identity.TouchLastSeen(ctx, user)
			return next(c)
		}
	}
}

// RequireUser rejects anonymous requests with 401. Must run after
// ResolveSession.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user for this request, or nil.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(currentUserKey).(*model.User)
	return user
}

// CurrentSessionID returns the session ID (token JTI) for this request, or "".
func CurrentSessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}
