package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, email, phone *string, passwordHash string) (string, error) {
	args := m.Called(ctx, email, phone, passwordHash)
	return args.String(0), args.Error(1)
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) GetUserByPhone(ctx context.Context, phone string) (*types.UserAuth, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockAuthRepo) ConsumeRefreshToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

var testJWT = config.JWTConfig{
	SecretKey:       "test-access-secret",
	Issuer:          "test-issuer",
	Audience:        "test-audience",
	AccessTokenTTL:  15 * time.Minute,
	RefreshTokenTTL: 7 * 24 * time.Hour,
}

func newTestService(repo AuthRepo) *AuthServiceImpl {
	return NewAuthService(repo, &config.Config{JWT: testJWT}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("needs email or phone", func(t *testing.T) {
		_, err := newTestService(new(MockAuthRepo)).Signup(ctx, types.SignupRequest{Password: "pw"})
		assert.ErrorIs(t, err, ErrIdentifierRequired)
		assert.ErrorIs(t, err, api.ErrInvalidInput)
	})

	t.Run("needs password", func(t *testing.T) {
		_, err := newTestService(new(MockAuthRepo)).Signup(ctx, types.SignupRequest{Email: "a@b.c"})
		assert.ErrorIs(t, err, ErrPasswordRequired)
	})

	t.Run("existing email", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "a@b.c").Return(&types.UserAuth{ID: "u1"}, nil).Once()

		_, err := newTestService(repo).Signup(ctx, types.SignupRequest{Email: "a@b.c", Password: "pw"})
		assert.ErrorIs(t, err, ErrUserExists)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("existing phone", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByPhone", mock.Anything, "+911").Return(&types.UserAuth{ID: "u1"}, nil).Once()

		_, err := newTestService(repo).Signup(ctx, types.SignupRequest{Phone: "+911", Password: "pw"})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("race on insert", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "a@b.c").Return(nil, api.ErrNotFound).Once()
		repo.On("CreateUser", mock.Anything, mock.Anything, (*string)(nil), mock.AnythingOfType("string")).
			Return("", api.ErrConflict).Once()

		_, err := newTestService(repo).Signup(ctx, types.SignupRequest{Email: "a@b.c", Password: "pw"})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("success", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "a@b.c").Return(nil, api.ErrNotFound).Once()
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(e *string) bool { return e != nil && *e == "a@b.c" }),
			(*string)(nil), mock.MatchedBy(func(h string) bool {
				return bcrypt.CompareHashAndPassword([]byte(h), []byte("pw")) == nil
			})).Return("u1", nil).Once()
		repo.On("StoreRefreshToken", mock.Anything, "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		pair, err := newTestService(repo).Signup(ctx, types.SignupRequest{Email: " a@b.c ", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "bearer", pair.TokenType)
		assert.NotEmpty(t, pair.RefreshToken)

		claims, err := ParseAccessToken(pair.AccessToken, []byte(testJWT.SecretKey), testJWT)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.Subject)
		assert.Equal(t, "u1", claims.UserID)
		repo.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &types.UserAuth{ID: "u1", PasswordHash: string(hash)}

	t.Run("email takes precedence over phone", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "a@b.c").Return(user, nil).Once()
		repo.On("StoreRefreshToken", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil).Once()

		pair, err := newTestService(repo).Login(ctx, types.LoginRequest{Email: "a@b.c", Phone: "+911", Password: "correct"})
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		repo.AssertNotCalled(t, "GetUserByPhone", mock.Anything, mock.Anything)
	})

	t.Run("by phone", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByPhone", mock.Anything, "+911").Return(user, nil).Once()
		repo.On("StoreRefreshToken", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := newTestService(repo).Login(ctx, types.LoginRequest{Phone: "+911", Password: "correct"})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "a@b.c").Return(user, nil).Once()

		_, err := newTestService(repo).Login(ctx, types.LoginRequest{Email: "a@b.c", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByEmail", mock.Anything, "x@b.c").Return(nil, api.ErrNotFound).Once()

		_, err := newTestService(repo).Login(ctx, types.LoginRequest{Email: "x@b.c", Password: "pw"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("no identifier", func(t *testing.T) {
		_, err := newTestService(new(MockAuthRepo)).Login(ctx, types.LoginRequest{Password: "pw"})
		assert.ErrorIs(t, err, ErrIdentifierRequired)
	})
}

func TestRefreshSession(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("ConsumeRefreshToken", mock.Anything, "old").Return("u1", nil).Once()
		repo.On("StoreRefreshToken", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil).Once()

		pair, err := newTestService(repo).RefreshSession(ctx, "old")
		require.NoError(t, err)
		assert.NotEqual(t, "old", pair.RefreshToken)
		repo.AssertExpectations(t)
	})

	t.Run("invalid", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("ConsumeRefreshToken", mock.Anything, "bad").Return("", api.ErrUnauthenticated).Once()

		_, err := newTestService(repo).RefreshSession(ctx, "bad")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
		repo.AssertNotCalled(t, "StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second use of the same token fails", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("ConsumeRefreshToken", mock.Anything, "old").Return("u1", nil).Once()
		repo.On("ConsumeRefreshToken", mock.Anything, "old").Return("", api.ErrUnauthenticated).Once()
		repo.On("StoreRefreshToken", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil).Once()
		svc := newTestService(repo)

		_, err := svc.RefreshSession(ctx, "old")
		require.NoError(t, err)
		_, err = svc.RefreshSession(ctx, "old")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
		repo.AssertExpectations(t)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := newTestService(new(MockAuthRepo)).RefreshSession(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestMe(t *testing.T) {
	repo := new(MockAuthRepo)
	id := uuid.New()
	repo.On("GetUserByID", mock.Anything, id.String()).Return(&types.User{ID: id, LocationAwareness: true}, nil).Once()

	profile, err := newTestService(repo).Me(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)
	assert.Equal(t, json.RawMessage("{}"), profile.Preferences)
	assert.NotNil(t, profile.Dislikes)
	assert.True(t, profile.LocationAwareness)
}

func TestGenerateAccessToken_Expired(t *testing.T) {
	tok, err := GenerateAccessToken("u1", testJWT, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ParseAccessToken(tok, []byte(testJWT.SecretKey), testJWT)
	assert.Error(t, err)
}
