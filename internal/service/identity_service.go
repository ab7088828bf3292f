package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"homesite/internal/auth"
	"homesite/internal/cache"
	apperrors "homesite/internal/errors"
	"homesite/internal/model"
	"homesite/internal/repository"
)

const bcryptCost = 10

const userCacheTTL = 5 * time.Minute

var (
	// ErrInvalidCredentials is returned on login failure. It deliberately does
	// not say whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrIncorrectPassword is returned when a password change presents the
	// wrong current password.
	ErrIncorrectPassword = errors.New("incorrect current password")
	// ErrStoreUnavailable wraps any underlying persistence failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// mysqlDuplicateEntry is the MySQL error number for unique index violations.
const mysqlDuplicateEntry = 1062

// IdentityService owns user records, credential verification and session
// lifecycle. Callers hand it already syntax-validated field values; it still
// re-checks uniqueness itself because validation and insertion are not atomic.
type IdentityService interface {
	// Register creates a user from validated fields. The database unique
	// indexes are the authority on uniqueness; of two racing registrations at
	// most one succeeds.
	Register(ctx context.Context, username, email, password string) (*model.User, error)

	// VerifyCredentials returns the matching user, or (nil, nil) for both an
	// unknown email and a wrong password. Callers cannot tell the two apart.
	VerifyCredentials(ctx context.Context, email, password string) (*model.User, error)

	// Login verifies credentials and establishes a session.
	Login(ctx context.Context, email, password string, remember bool) (token string, user *model.User, err error)

	// Logout terminates the session carried by token. Idempotent; an already
	// invalid token is a no-op.
	Logout(ctx context.Context, token string) error

	// Resolve maps a session token back to its user and session ID. Absent,
	// expired, tampered and revoked tokens all come back as (nil, "", nil):
	// the request simply proceeds anonymously.
	Resolve(ctx context.Context, token string) (*model.User, string, error)

	// ChangePassword overwrites the stored hash after re-verifying the
	// current password. keepSessionID names the caller's own session, spared
	// when the revocation policy is on.
	ChangePassword(ctx context.Context, user *model.User, current, newPassword, keepSessionID string) error

	// TouchLastSeen bumps last_seen, best effort. Failures are logged, never
	// surfaced.
	TouchLastSeen(ctx context.Context, user *model.User)

	// UpdateAccount changes profile fields, guarding username/email
	// uniqueness the same way Register does.
	UpdateAccount(ctx context.Context, user *model.User, username, email, aboutMe, imageFile string) (*model.User, error)

	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, int64, error)
}

type identityService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenService
	sessions auth.SessionStore
	cache    *cache.Client

	revokeOnPasswordChange bool
}

// NewIdentityService builds an IdentityService.
func NewIdentityService(
	userRepo repository.UserRepository,
	tokens *auth.TokenService,
	sessions auth.SessionStore,
	cacheClient *cache.Client,
	revokeOnPasswordChange bool,
) IdentityService {
	return &identityService{
		userRepo:               userRepo,
		tokens:                 tokens,
		sessions:               sessions,
		cache:                  cacheClient,
		revokeOnPasswordChange: revokeOnPasswordChange,
	}
}

func (s *identityService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// Register creates a new user with a hashed password.
func (s *identityService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	// Fast-path pre-checks so callers get a precise validation message. Not
	// sufficient on their own: a concurrent registration can race past them.
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: check username: %v", ErrStoreUnavailable, err)
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: check email: %v", ErrStoreUnavailable, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		ImageFile:    model.DefaultImageFile,
		LastSeen:     time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The insert lost a race the pre-checks did not see. The unique index
		// is the authority, so map its verdict back to a duplicate error.
		if dup := mapDuplicateKey(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("%w: create user: %v", ErrStoreUnavailable, err)
	}

	return user, nil
}

// VerifyCredentials checks an email/password pair against the store.
func (s *identityService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find user: %v", ErrStoreUnavailable, err)
	}

	// bcrypt's comparison is constant time; a mismatch looks exactly like an
	// unknown email to the caller.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	return user, nil
}

// Login verifies credentials and mints a session token.
func (s *identityService) Login(ctx context.Context, email, password string, remember bool) (string, *model.User, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	token, sessionID, err := s.tokens.Mint(user.ID, remember)
	if err != nil {
		return "", nil, fmt.Errorf("mint session token: %w", err)
	}
	if err := s.sessions.Save(ctx, sessionID, user.ID, s.tokens.TTL(remember)); err != nil {
		return "", nil, fmt.Errorf("%w: save session: %v", ErrStoreUnavailable, err)
	}

	return token, user, nil
}

// Logout terminates the session named by token.
func (s *identityService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		// Invalid or expired token: nothing to terminate.
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("%w: delete session: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Resolve maps a session token back to its user, degrading to anonymous on
// every failure mode.
func (s *identityService) Resolve(ctx context.Context, token string) (*model.User, string, error) {
	if token == "" {
		return nil, "", nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, "", nil
	}

	userID, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if !errors.Is(err, auth.ErrSessionNotFound) {
			log.Printf("resolve session %s: %v", claims.ID, err)
		}
		return nil, "", nil
	}
	if userID != claims.UserID {
		return nil, "", nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("resolve user %d: %v", userID, err)
		}
		return nil, "", nil
	}
	return user, claims.ID, nil
}

// ChangePassword re-verifies the current password, then overwrites the hash.
func (s *identityService) ChangePassword(ctx context.Context, user *model.User, current, newPassword, keepSessionID string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrIncorrectPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return fmt.Errorf("%w: update password: %v", ErrStoreUnavailable, err)
	}
	user.PasswordHash = string(hashed)
	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))

	if s.revokeOnPasswordChange {
		if err := s.sessions.DeleteAllForUser(ctx, user.ID, keepSessionID); err != nil {
			// The password is already changed; revocation is a policy extra.
			log.Printf("revoke sessions for user %d: %v", user.ID, err)
		}
	}
	return nil
}

// TouchLastSeen records activity for the user. Liveness tracking is best
// effort: a failed write must never turn into a failed request.
func (s *identityService) TouchLastSeen(ctx context.Context, user *model.User) {
	now := time.Now()
	if err := s.userRepo.UpdateLastSeen(ctx, user.ID, now); err != nil {
		log.Printf("touch last_seen for user %d: %v", user.ID, err)
		return
	}
	user.LastSeen = now
	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
}

// UpdateAccount changes profile fields with the same uniqueness guard as
// Register for username and email.
func (s *identityService) UpdateAccount(ctx context.Context, user *model.User, username, email, aboutMe, imageFile string) (*model.User, error) {
	if username != user.Username {
		if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
			return nil, ErrDuplicateUsername
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: check username: %v", ErrStoreUnavailable, err)
		}
	}
	if email != user.Email {
		if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
			return nil, ErrDuplicateEmail
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: check email: %v", ErrStoreUnavailable, err)
		}
	}

	user.Username = username
	user.Email = email
	user.AboutMe = aboutMe
	if imageFile != "" {
		user.ImageFile = imageFile
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if dup := mapDuplicateKey(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("%w: update user: %v", ErrStoreUnavailable, err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))

	return user, nil
}

// GetUser fetches a user, via the read cache when possible.
func (s *identityService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %v", ErrStoreUnavailable, err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// ListUsers returns all users and the total count.
func (s *identityService) ListUsers(ctx context.Context) ([]model.User, int64, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list users: %v", ErrStoreUnavailable, err)
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: count users: %v", ErrStoreUnavailable, err)
	}
	return users, total, nil
}

// mapDuplicateKey translates a MySQL unique index violation into the matching
// domain error, or returns nil for anything else.
func mapDuplicateKey(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlDuplicateEntry {
		return nil
	}
	// The violation message names the index, e.g. "Duplicate entry 'bob' for
	// key 'users.idx_users_username'".
	switch {
	case strings.Contains(mysqlErr.Message, "username"):
		return ErrDuplicateUsername
	case strings.Contains(mysqlErr.Message, "email"):
		return ErrDuplicateEmail
	default:
		return ErrDuplicateUsername
	}
}
