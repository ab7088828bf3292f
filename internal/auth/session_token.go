package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie browsers carry the session token in.
const SessionCookieName = "session_token"

// SessionClaims are carried inside a signed session token. The token is opaque
// to clients; the JTI is the handle for the server-side session record.
type SessionClaims struct {
	UserID   uint `json:"user_id"`
	Remember bool `json:"remember,omitempty"`
	jwt.RegisteredClaims
}

// TokenService mints and validates signed session tokens.
type TokenService struct {
	secret      []byte
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

// NewTokenService creates a token service. sessionTTL applies to plain logins,
// rememberTTL to "remember me" logins.
func NewTokenService(secret string, sessionTTL, rememberTTL time.Duration) *TokenService {
	return &TokenService{
		secret:      []byte(secret),
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}
}

// TTL returns the session lifetime for the given remember flag.
func (s *TokenService) TTL(remember bool) time.Duration {
	if remember {
		return s.rememberTTL
	}
	return s.sessionTTL
}

// Mint generates a signed session token for the user. The session ID (JTI) is
// returned separately so the caller can record it in the session store.
func (s *TokenService) Mint(userID uint, remember bool) (token string, sessionID string, err error) {
	sessionID = uuid.New().String()
	now := time.Now()
	claims := &SessionClaims{
		UserID:   userID,
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL(remember))),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = tokenObj.SignedString(s.secret)
	return token, sessionID, err
}

// Parse validates a session token's signature and expiry and returns its claims.
func (s *TokenService) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("token has no session ID")
	}
	return claims, nil
}
