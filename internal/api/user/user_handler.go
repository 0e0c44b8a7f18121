package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/api/auth"
	"github.com/dark-devil9/UrNav/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	UpdatePreferences(w http.ResponseWriter, r *http.Request)
	UpdateDislikes(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	ResetMemory(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	if logger == nil {
		panic("PANIC: Attempting to create HandlerImpl with nil logger!")
	}
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// currentUser reads the id the Authenticate middleware put on the context.
func (h *HandlerImpl) currentUser(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		l.WarnContext(r.Context(), "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authenticated")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.WarnContext(r.Context(), "Invalid user ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidAction):
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid action")
	case errors.Is(err, api.ErrInvalidInput):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, api.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusUnauthorized, "User not found")
	default:
		api.ErrorResponse(w, r, http.StatusInternalServerError, fallback)
	}
}

func startHandlerSpan(r *http.Request, name, route string) (trace.Span, *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return span, r.WithContext(ctx)
}

// UpdatePreferences godoc
// @Summary      Save preferences
// @Description  Replaces the authenticated user's preferences document.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body body types.PreferencesUpdate true "Preferences"
// @Success      200 {object} types.StatusMessage
// @Failure      400 {object} api.Response "Invalid Input"
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /users/preferences [put]
func (h *HandlerImpl) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "UpdatePreferences", "/users/preferences")
	defer span.End()
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdatePreferences"))

	userID, ok := h.currentUser(w, r, l)
	if !ok {
		return
	}

	var body types.PreferencesUpdate
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.userService.UpdatePreferences(ctx, userID, body.Preferences); err != nil {
		span.RecordError(err)
		h.writeError(w, r, err, "Failed to save preferences")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.StatusMessage{Status: "ok", Message: "Preference saved"})
}

// UpdateDislikes godoc
// @Summary      Add or remove a disliked place
// @Description  action must be "add" or "remove". Disliked places are filtered out of search results.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body body types.DislikeUpdate true "Dislike update"
// @Success      200 {object} types.StatusMessage
// @Failure      400 {object} api.Response "Invalid action"
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /users/dislikes [put]
func (h *HandlerImpl) UpdateDislikes(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "UpdateDislikes", "/users/dislikes")
	defer span.End()
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateDislikes"))

	userID, ok := h.currentUser(w, r, l)
	if !ok {
		return
	}

	var body types.DislikeUpdate
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.userService.UpdateDislikes(ctx, userID, body); err != nil {
		span.RecordError(err)
		h.writeError(w, r, err, "Failed to update dislikes")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.StatusMessage{Status: "ok", Message: "Updated"})
}

// History godoc
// @Summary      Day plan history
// @Description  Lists the authenticated user's saved day plans, newest first.
// @Tags         Users
// @Produce      json
// @Success      200 {object} types.HistoryResponse
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /users/history [get]
func (h *HandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "History", "/users/history")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "History"))

	userID, ok := h.currentUser(w, r, l)
	if !ok {
		return
	}

	history, err := h.userService.History(r.Context(), userID)
	if err != nil {
		l.ErrorContext(r.Context(), "Failed to load history", slog.Any("error", err))
		span.RecordError(err)
		h.writeError(w, r, err, "Failed to load history")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, history)
}

// ResetMemory godoc
// @Summary      Reset memory
// @Description  Clears preferences and dislikes and deletes the plan history.
// @Tags         Users
// @Produce      json
// @Success      200 {object} types.StatusMessage
// @Failure      401 {object} api.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /users/memory/reset [delete]
func (h *HandlerImpl) ResetMemory(w http.ResponseWriter, r *http.Request) {
	span, r := startHandlerSpan(r, "ResetMemory", "/users/memory/reset")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "ResetMemory"))

	userID, ok := h.currentUser(w, r, l)
	if !ok {
		return
	}

	if err := h.userService.ResetMemory(r.Context(), userID); err != nil {
		span.RecordError(err)
		h.writeError(w, r, err, "Failed to reset memory")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.StatusMessage{Status: "ok", Message: "Memory reset"})
}
