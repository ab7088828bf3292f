package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	MySQLDSN   string
	RedisAddr  string
	RedisDB    int
	RedisPass  string

	// SessionSecret signs session tokens. Must be set to something real in production.
	SessionSecret string
	// SessionTTL is the lifetime of a plain login session.
	SessionTTL time.Duration
	// RememberTTL is the extended lifetime used when the client asks to be remembered.
	RememberTTL time.Duration
	// RevokeSessionsOnPasswordChange controls whether a password change kills the
	// user's other active sessions.
	RevokeSessionsOnPasswordChange bool
	// SecureCookies marks the session cookie Secure. Turn on behind HTTPS.
	SecureCookies bool

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is read first; real environment variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:                     getEnv("SERVER_PORT", "8080"),
		MySQLDSN:                       getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/homesite?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:                      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:                        getEnvInt("REDIS_DB", 0),
		RedisPass:                      os.Getenv("REDIS_PASSWORD"),
		SessionSecret:                  getEnv("SESSION_SECRET", "change-me"),
		SessionTTL:                     getEnvDuration("SESSION_TTL", 2*time.Hour),
		RememberTTL:                    getEnvDuration("REMEMBER_TTL", 30*24*time.Hour),
		RevokeSessionsOnPasswordChange: getEnvBool("REVOKE_SESSIONS_ON_PASSWORD_CHANGE", false),
		SecureCookies:                  getEnvBool("COOKIE_SECURE", false),
		SwaggerHost:                    os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
