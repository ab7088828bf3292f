package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"homesite/internal/auth"
)

func TestAuthHandlerSessionCookie(t *testing.T) {
	h := NewAuthHandler(nil, 30*24*time.Hour, false)

	t.Run("plain login dies with the browser session", func(t *testing.T) {
		cookie := h.sessionCookie("tok", false)
		assert.Equal(t, auth.SessionCookieName, cookie.Name)
		assert.Equal(t, "tok", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.False(t, cookie.Secure)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Zero(t, cookie.MaxAge)
	})

	t.Run("remember-me pins the cookie down", func(t *testing.T) {
		cookie := h.sessionCookie("tok", true)
		assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	})

	t.Run("secure deployments mark every session cookie Secure", func(t *testing.T) {
		secure := NewAuthHandler(nil, time.Hour, true)
		assert.True(t, secure.sessionCookie("tok", false).Secure)
		assert.True(t, secure.expiredSessionCookie().Secure)
	})

	t.Run("logout cookie expires immediately", func(t *testing.T) {
		cookie := h.expiredSessionCookie()
		assert.Equal(t, auth.SessionCookieName, cookie.Name)
		assert.Empty(t, cookie.Value)
		assert.Equal(t, -1, cookie.MaxAge)
	})
}
