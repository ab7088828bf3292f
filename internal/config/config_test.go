package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RememberTTL)
	assert.False(t, cfg.RevokeSessionsOnPasswordChange)
	assert.False(t, cfg.SecureCookies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("REMEMBER_TTL", "168h")
	t.Setenv("REVOKE_SESSIONS_ON_PASSWORD_CHANGE", "true")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RememberTTL)
	assert.True(t, cfg.RevokeSessionsOnPasswordChange)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 0, cfg.RedisDB)
}
