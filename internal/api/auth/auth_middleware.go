package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

type contextKey string

const UserIDKey contextKey = "userID"

var (
	errMissingHeader = errors.New("authorization header required")
	errHeaderFormat  = errors.New("authorization header format must be Bearer {token}")
)

// Authenticate rejects requests without a valid access token.
func Authenticate(logger *slog.Logger, jwtCfg config.JWTConfig) func(next http.Handler) http.Handler {
	secretKey := []byte(jwtCfg.SecretKey)
	if len(secretKey) == 0 {
		logger.Error("FATAL: JWT Secret Key is not configured!")
		panic("JWT Secret Key cannot be empty")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			claims, err := claimsFromRequest(r, secretKey, jwtCfg)
			if err != nil {
				l.WarnContext(ctx, "Authentication failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, authErrorMessage(err))
				return
			}

			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			l.DebugContext(ctx, "Authentication successful, claims added to context", slog.String("userID", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate attaches the user id when a valid token is present
// and lets every other request through anonymously.
func OptionalAuthenticate(logger *slog.Logger, jwtCfg config.JWTConfig) func(next http.Handler) http.Handler {
	secretKey := []byte(jwtCfg.SecretKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secretKey) == 0 || r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := claimsFromRequest(r, secretKey, jwtCfg)
			if err != nil {
				logger.DebugContext(r.Context(), "Ignoring invalid optional token", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func claimsFromRequest(r *http.Request, secretKey []byte, jwtCfg config.JWTConfig) (*types.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errMissingHeader
	}
	headerParts := strings.SplitN(authHeader, " ", 2)
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		return nil, errHeaderFormat
	}
	return ParseAccessToken(strings.TrimSpace(headerParts[1]), secretKey, jwtCfg)
}

// ParseAccessToken validates signature, expiry, issuer and audience.
func ParseAccessToken(tokenString string, secretKey []byte, jwtCfg config.JWTConfig) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return nil, jwt.ErrTokenExpired
	}
	if claims.Issuer != jwtCfg.Issuer {
		return nil, jwt.ErrTokenInvalidIssuer
	}
	if jwtCfg.Audience != "" && !api.VerifyAudience(claims.Audience, jwtCfg.Audience) {
		return nil, jwt.ErrTokenInvalidAudience
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, errMissingHeader):
		return "Not authenticated"
	case errors.Is(err, errHeaderFormat):
		return "Invalid auth header"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "Malformed token"
	case errors.Is(err, jwt.ErrSignatureInvalid), errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "Invalid token signature"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "Invalid token issuer"
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return "Invalid token audience"
	default:
		return "Invalid token"
	}
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
