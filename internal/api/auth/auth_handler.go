package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

type AuthHandler struct {
	AuthService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		AuthService: authService,
	}
}

// writeAuthError maps service errors onto the status codes clients expect.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	switch {
	case errors.Is(err, ErrIdentifierRequired):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Email or phone required")
	case errors.Is(err, ErrPasswordRequired):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Password required")
	case errors.Is(err, api.ErrConflict):
		api.ErrorResponse(w, r, http.StatusBadRequest, "User already exists")
	case errors.Is(err, ErrInvalidCredentials):
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, api.ErrUnauthenticated):
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired refresh token")
	default:
		span.SetStatus(codes.Error, "internal error")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// Signup godoc
// @Summary      Sign up
// @Description  Creates an account from an email or phone and a password and returns a token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.SignupRequest true "Credentials"
// @Success      200 {object} types.TokenPair
// @Failure      400 {object} api.Response "Email or phone required / User already exists"
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Signup", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/signup"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "Signup"))

	var req types.SignupRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid signup body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.AuthService.Signup(ctx, req)
	if err != nil {
		l.WarnContext(ctx, "Signup failed", slog.Any("error", err))
		h.writeAuthError(w, r, span, err)
		return
	}
	span.SetStatus(codes.Ok, "")
	api.WriteJSONResponse(w, r, http.StatusOK, pair)
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges email or phone plus password for a token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.LoginRequest true "Credentials"
// @Success      200 {object} types.TokenPair
// @Failure      400 {object} api.Response "Email or phone required"
// @Failure      401 {object} api.Response "Invalid credentials"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/login"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid login body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.AuthService.Login(ctx, req)
	if err != nil {
		l.WarnContext(ctx, "Login failed", slog.Any("error", err))
		h.writeAuthError(w, r, span, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, pair)
}

// RefreshSession godoc
// @Summary      Refresh tokens
// @Description  Rotates a refresh token into a new token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RefreshRequest true "Refresh token"
// @Success      200 {object} types.TokenPair
// @Failure      401 {object} api.Response "Invalid or expired refresh token"
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "RefreshSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/refresh"),
	))
	defer span.End()

	var req types.RefreshRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.AuthService.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		h.logger.WarnContext(ctx, "Refresh failed", slog.Any("error", err))
		h.writeAuthError(w, r, span, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, pair)
}

// Me godoc
// @Summary      Current user
// @Description  Returns the authenticated user's profile and stored memory.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.UserProfile
// @Failure      401 {object} api.Response "Not authenticated / User not found"
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Me", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/me"),
	))
	defer span.End()

	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	profile, err := h.AuthService.Me(ctx, userID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "User not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to load profile", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve user profile")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, profile)
}
