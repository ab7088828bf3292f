package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"homesite/internal/auth"
	"homesite/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastSeen(ctx context.Context, id uint, seen time.Time) error {
	args := m.Called(ctx, id, seen)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// fakeSessionStore is an in-memory SessionStore for roundtrip scenarios.
type fakeSessionStore struct {
	sessions map[string]uint
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]uint)}
}

func (f *fakeSessionStore) Save(_ context.Context, sessionID string, userID uint, _ time.Duration) error {
	f.sessions[sessionID] = userID
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, sessionID string) (uint, error) {
	userID, ok := f.sessions[sessionID]
	if !ok {
		return 0, auth.ErrSessionNotFound
	}
	return userID, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeSessionStore) DeleteAllForUser(_ context.Context, userID uint, keepSessionID string) error {
	for id, uid := range f.sessions {
		if uid == userID && id != keepSessionID {
			delete(f.sessions, id)
		}
	}
	return nil
}

func newTestTokens() *auth.TokenService {
	return auth.NewTokenService("test-secret", 2*time.Hour, 30*24*time.Hour)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestIdentityService_Register(t *testing.T) {
	duplicateEmailInsert := &mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry 'alice@x.com' for key 'users.idx_users_email'",
	}

	tests := []struct {
		name          string
		username      string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			username: "alice",
			email:    "alice@x.com",
			password: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "alice@x.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "username already taken",
			username: "bob",
			email:    "bob@x.com",
			password: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "bob").Return(&model.User{Username: "bob"}, nil)
			},
			expectedError: ErrDuplicateUsername,
		},
		{
			name:     "email already registered",
			username: "carol",
			email:    "taken@x.com",
			password: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "carol").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "taken@x.com").Return(&model.User{Email: "taken@x.com"}, nil)
			},
			expectedError: ErrDuplicateEmail,
		},
		{
			name:     "concurrent registration races past the pre-checks",
			username: "alice",
			email:    "alice@x.com",
			password: "secret1",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "alice@x.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(duplicateEmailInsert)
			},
			expectedError: ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewIdentityService(mockRepo, newTestTokens(), newFakeSessionStore(), nil, false)
			user, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.username, user.Username)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, model.DefaultImageFile, user.ImageFile)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.password)))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestIdentityService_VerifyCredentials(t *testing.T) {
	hash := hashOf(t, "secret1")

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "alice@x.com").Return(&model.User{
		ID:           1,
		Email:        "alice@x.com",
		PasswordHash: hash,
	}, nil)
	mockRepo.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, gorm.ErrRecordNotFound)

	svc := NewIdentityService(mockRepo, newTestTokens(), newFakeSessionStore(), nil, false)
	ctx := context.Background()

	user, err := svc.VerifyCredentials(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, uint(1), user.ID)

	// Wrong password and unknown email must be indistinguishable.
	wrongPass, errPass := svc.VerifyCredentials(ctx, "alice@x.com", "not-it")
	unknown, errEmail := svc.VerifyCredentials(ctx, "ghost@x.com", "anything")
	assert.Nil(t, wrongPass)
	assert.NoError(t, errPass)
	assert.Nil(t, unknown)
	assert.NoError(t, errEmail)
}

func TestIdentityService_VerifyCredentialsStoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "alice@x.com").Return(nil, assert.AnError)

	svc := NewIdentityService(mockRepo, newTestTokens(), newFakeSessionStore(), nil, false)

	user, err := svc.VerifyCredentials(context.Background(), "alice@x.com", "secret1")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestIdentityService_LoginLogoutRoundtrip(t *testing.T) {
	hash := hashOf(t, "secret1")
	alice := &model.User{ID: 7, Username: "alice", Email: "alice@x.com", PasswordHash: hash}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "alice@x.com").Return(alice, nil)
	mockRepo.On("FindByID", mock.Anything, uint(7)).Return(alice, nil)

	sessions := newFakeSessionStore()
	svc := NewIdentityService(mockRepo, newTestTokens(), sessions, nil, false)
	ctx := context.Background()

	// Wrong password: anonymized failure, no session.
	_, _, err := svc.Login(ctx, "alice@x.com", "wrong", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, sessions.sessions)

	token, user, err := svc.Login(ctx, "alice@x.com", "secret1", false)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotEmpty(t, token)

	resolved, sessionID, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, alice.ID, resolved.ID)
	assert.NotEmpty(t, sessionID)

	require.NoError(t, svc.Logout(ctx, token))

	gone, goneID, err := svc.Resolve(ctx, token)
	assert.NoError(t, err)
	assert.Nil(t, gone)
	assert.Empty(t, goneID)

	// Terminating an already dead session is a no-op, not an error.
	assert.NoError(t, svc.Logout(ctx, token))
}

func TestIdentityService_ResolveDegradesToAnonymous(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewIdentityService(mockRepo, newTestTokens(), newFakeSessionStore(), nil, false)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		user, sessionID, err := svc.Resolve(ctx, token)
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.Empty(t, sessionID)
	}

	// A validly signed token from another deployment is rejected too.
	foreign := auth.NewTokenService("other-secret", time.Hour, time.Hour)
	token, _, err := foreign.Mint(7, false)
	require.NoError(t, err)
	user, sessionID, err := svc.Resolve(ctx, token)
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.Empty(t, sessionID)

	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestIdentityService_ChangePassword(t *testing.T) {
	t.Run("incorrect current password leaves the hash untouched", func(t *testing.T) {
		hash := hashOf(t, "correct")
		alice := &model.User{ID: 7, PasswordHash: hash}

		mockRepo := new(MockUserRepository)
		svc := NewIdentityService(mockRepo, newTestTokens(), newFakeSessionStore(), nil, false)

		err := svc.ChangePassword(context.Background(), alice, "wrong", "newpass", "")
		assert.ErrorIs(t, err, ErrIncorrectPassword)
		assert.Equal(t, hash, alice.PasswordHash)
		mockRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("correct current password overwrites the hash", func(t *testing.T) {
		hash := hashOf(t, "correct")
		alice := &model.User{ID: 7, Email: "alice@x.com", PasswordHash: hash}

		mockRepo := new(MockUserRepository)
		mockRepo.On("UpdatePassword", mock.Anything, uint(7), mock.AnythingOfType("string")).Return(nil)
		mockRepo.On("FindByEmail", mock.Anything, "alice@x.com").Return(alice, nil)

		svc := NewIdentityService(mockRepo, newTestTokens(), newFakeSessionStore(), nil, false)
		ctx := context.Background()

		require.NoError(t, svc.ChangePassword(ctx, alice, "correct", "newpass", ""))

		// The new password verifies, the old one no longer does.
		user, err := svc.VerifyCredentials(ctx, "alice@x.com", "newpass")
		require.NoError(t, err)
		assert.NotNil(t, user)
		old, err := svc.VerifyCredentials(ctx, "alice@x.com", "correct")
		require.NoError(t, err)
		assert.Nil(t, old)

		mockRepo.AssertExpectations(t)
	})

	t.Run("revocation policy kills the user's other sessions", func(t *testing.T) {
		hash := hashOf(t, "correct")
		alice := &model.User{ID: 7, PasswordHash: hash}

		mockRepo := new(MockUserRepository)
		mockRepo.On("UpdatePassword", mock.Anything, uint(7), mock.AnythingOfType("string")).Return(nil)

		sessions := newFakeSessionStore()
		ctx := context.Background()
		require.NoError(t, sessions.Save(ctx, "current", 7, time.Hour))
		require.NoError(t, sessions.Save(ctx, "other-device", 7, time.Hour))
		require.NoError(t, sessions.Save(ctx, "someone-else", 9, time.Hour))

		svc := NewIdentityService(mockRepo, newTestTokens(), sessions, nil, true)
		require.NoError(t, svc.ChangePassword(ctx, alice, "correct", "newpass", "current"))

		_, err := sessions.Get(ctx, "other-device")
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)
		_, err = sessions.Get(ctx, "current")
		assert.NoError(t, err)
		_, err = sessions.Get(ctx, "someone-else")
		assert.NoError(t, err)
	})
}

func TestIdentityService_TouchLastSeen(t *testing.T) {
	t.Run("success moves last_seen forward", func(t *testing.T) {
		was := time.Now().Add(-time.Hour)
		alice := &model.User{ID: 7, LastSeen: was}

		mockRepo := new(MockUserRepository)
		mockRepo.On("UpdateLastSeen", mock.Anything, uint(7), mock.AnythingOfType("time.Time")).Return(nil)

		svc := NewIdentityService(mockRepo, newTestTokens(), newFakeSessionStore(), nil, false)
		svc.TouchLastSeen(context.Background(), alice)

		assert.True(t, alice.LastSeen.After(was))
		mockRepo.AssertExpectations(t)
	})

	t.Run("persistence failure is swallowed", func(t *testing.T) {
		was := time.Now().Add(-time.Hour)
		alice := &model.User{ID: 7, LastSeen: was}

		mockRepo := new(MockUserRepository)
		mockRepo.On("UpdateLastSeen", mock.Anything, uint(7), mock.AnythingOfType("time.Time")).Return(assert.AnError)

		svc := NewIdentityService(mockRepo, newTestTokens(), newFakeSessionStore(), nil, false)
		svc.TouchLastSeen(context.Background(), alice)

		assert.Equal(t, was, alice.LastSeen)
	})
}

func TestIdentityService_UpdateAccount(t *testing.T) {
	alice := &model.User{ID: 7, Username: "alice", Email: "alice@x.com", AboutMe: ""}

	t.Run("taking someone else's username is rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByUsername", mock.Anything, "bob").Return(&model.User{ID: 9, Username: "bob"}, nil)

		svc := NewIdentityService(mockRepo, newTestTokens(), newFakeSessionStore(), nil, false)
		updated, err := svc.UpdateAccount(context.Background(), alice, "bob", "alice@x.com", "hi", "")
		assert.ErrorIs(t, err, ErrDuplicateUsername)
		assert.Nil(t, updated)
	})

	t.Run("keeping your own username skips the uniqueness check", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewIdentityService(mockRepo, newTestTokens(), newFakeSessionStore(), nil, false)
		updated, err := svc.UpdateAccount(context.Background(), alice, "alice", "alice@x.com", "new about", "")
		require.NoError(t, err)
		assert.Equal(t, "new about", updated.AboutMe)
		mockRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
	})
}
