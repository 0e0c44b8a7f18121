package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/dark-devil9/UrNav/app/observability/metrics"
	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	defaultAccessTokenTTL  = 60 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	tokenTypeBearer        = "bearer"
)

var (
	ErrIdentifierRequired = fmt.Errorf("email or phone required: %w", api.ErrInvalidInput)
	ErrPasswordRequired   = fmt.Errorf("password required: %w", api.ErrInvalidInput)
	ErrUserExists         = fmt.Errorf("user already exists: %w", api.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", api.ErrUnauthenticated)
)

var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	Signup(ctx context.Context, req types.SignupRequest) (*types.TokenPair, error)
	Login(ctx context.Context, req types.LoginRequest) (*types.TokenPair, error)
	RefreshSession(ctx context.Context, refreshToken string) (*types.TokenPair, error)
	Me(ctx context.Context, userID string) (*types.UserProfile, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	jwtCfg config.JWTConfig
}

func NewAuthService(repo AuthRepo, cfg *config.Config, logger *slog.Logger) *AuthServiceImpl {
	jwtCfg := cfg.JWT
	if jwtCfg.AccessTokenTTL <= 0 {
		jwtCfg.AccessTokenTTL = defaultAccessTokenTTL
	}
	if jwtCfg.RefreshTokenTTL <= 0 {
		jwtCfg.RefreshTokenTTL = defaultRefreshTokenTTL
	}
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

// Signup creates the account and signs the user in straight away.
func (s *AuthServiceImpl) Signup(ctx context.Context, req types.SignupRequest) (*types.TokenPair, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Signup")
	defer span.End()
	l := s.logger.With(slog.String("method", "Signup"))

	email, phone := strings.TrimSpace(req.Email), strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return nil, ErrIdentifierRequired
	}
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}

	// only check the identifiers that were provided so NULLs never collide
	if email != "" {
		if err := s.ensureAbsent(ctx, s.repo.GetUserByEmail, email); err != nil {
			return nil, err
		}
	}
	if phone != "" {
		if err := s.ensureAbsent(ctx, s.repo.GetUserByPhone, phone); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.repo.CreateUser(ctx, nilIfEmpty(email), nilIfEmpty(phone), string(hash))
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			return nil, ErrUserExists
		}
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create user failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", userID))
	metrics.Get().AuthSignupsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "User signed up", slog.String("userID", userID))

	return s.generateTokens(ctx, userID)
}

func (s *AuthServiceImpl) ensureAbsent(ctx context.Context, lookup func(context.Context, string) (*types.UserAuth, error), value string) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return ErrUserExists
	case errors.Is(err, api.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check existing user: %w", err)
	}
}

// Login looks the user up by email when given, otherwise by phone.
func (s *AuthServiceImpl) Login(ctx context.Context, req types.LoginRequest) (*types.TokenPair, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()
	l := s.logger.With(slog.String("method", "Login"))

	email, phone := strings.TrimSpace(req.Email), strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return nil, ErrIdentifierRequired
	}

	var (
		user *types.UserAuth
		err  error
	)
	if email != "" {
		user, err = s.repo.GetUserByEmail(ctx, email)
	} else {
		user, err = s.repo.GetUserByPhone(ctx, phone)
	}
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.ErrorContext(ctx, "Failed to fetch user", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		l.WarnContext(ctx, "Password mismatch", slog.String("userID", user.ID))
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(ctx, user.ID)
}

// RefreshSession rotates the refresh token: the old one is revoked.
func (s *AuthServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (*types.TokenPair, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "RefreshSession")
	defer span.End()

	if refreshToken == "" {
		return nil, ErrInvalidCredentials
	}
	userID, err := s.repo.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.generateTokens(ctx, userID)
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*types.UserProfile, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Me", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *AuthServiceImpl) generateTokens(ctx context.Context, userID string) (*types.TokenPair, error) {
	access, err := GenerateAccessToken(userID, s.jwtCfg, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh := uuid.NewString()
	if err := s.repo.StoreRefreshToken(ctx, userID, refresh, time.Now().Add(s.jwtCfg.RefreshTokenTTL)); err != nil {
		return nil, err
	}
	return &types.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: tokenTypeBearer}, nil
}

// GenerateAccessToken signs an HS256 token whose subject is the user id.
func GenerateAccessToken(userID string, cfg config.JWTConfig, now time.Time) (string, error) {
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}
	claims := types.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
