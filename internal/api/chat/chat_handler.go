package chat

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Chat(w http.ResponseWriter, r *http.Request)
	GetUserInfo(w http.ResponseWriter, r *http.Request)
	ClearConversation(w http.ResponseWriter, r *http.Request)
	Health(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	chatService ChatService
	logger      *slog.Logger
}

func NewHandlerImpl(chatService ChatService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		chatService: chatService,
		logger:      logger,
	}
}

func startSpan(r *http.Request, name, route string) (trace.Span, *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return span, r.WithContext(ctx)
}

// Chat godoc
// @Summary      Talk to the assistant
// @Description  Answers travel questions with nearby places and keeps small talk going. A user id is generated when none is sent.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request body types.ChatRequest true "Message and location"
// @Success      200 {object} types.ChatResponse
// @Failure      400 {object} api.Response "Missing message or location"
// @Failure      429 {object} api.Response "Too many requests"
// @Router       /chat [post]
func (h *HandlerImpl) Chat(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "Chat", "/chat")
	defer span.End()
	l := h.logger.With(slog.String("HandlerImpl", "Chat"))

	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Message is required")
		return
	}
	if req.Location == nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Location information is required")
		return
	}
	if req.Location.Lat == nil || req.Location.Lon == nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid location coordinates")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
		l.DebugContext(r.Context(), "Generated chat user id", slog.String("user_id", userID))
	}

	reply := h.chatService.ProcessMessage(r.Context(), userID, req.Message, *req.Location)
	api.WriteJSONResponse(w, r, http.StatusOK, types.ChatResponse{
		Response: reply,
		UserID:   userID,
		UserInfo: h.chatService.UserInfo(r.Context(), userID),
	})
}

// GetUserInfo godoc
// @Summary      What the assistant remembers about a user
// @Tags         Chat
// @Produce      json
// @Param        userID path string true "Chat user id"
// @Success      200 {object} types.ChatUserResponse
// @Router       /chat/user/{userID} [get]
func (h *HandlerImpl) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "GetUserInfo", "/chat/user/{userID}")
	defer span.End()

	userID := chi.URLParam(r, "userID")
	api.WriteJSONResponse(w, r, http.StatusOK, types.ChatUserResponse{
		UserID:   userID,
		UserInfo: h.chatService.UserInfo(r.Context(), userID),
	})
}

// ClearConversation godoc
// @Summary      Forget a conversation
// @Tags         Chat
// @Produce      json
// @Param        userID path string true "Chat user id"
// @Success      200 {object} types.ChatClearResponse
// @Router       /chat/user/{userID} [delete]
func (h *HandlerImpl) ClearConversation(w http.ResponseWriter, r *http.Request) {
	span, r := startSpan(r, "ClearConversation", "/chat/user/{userID}")
	defer span.End()

	userID := chi.URLParam(r, "userID")
	h.chatService.ClearConversation(r.Context(), userID)
	api.WriteJSONResponse(w, r, http.StatusOK, types.ChatClearResponse{
		Message: "Conversation cleared successfully",
		UserID:  userID,
	})
}

// Health godoc
// @Summary      Chat health
// @Tags         Chat
// @Produce      json
// @Success      200 {object} types.ChatHealthResponse
// @Router       /chat/health [get]
func (h *HandlerImpl) Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, types.ChatHealthResponse{
		Status:    "healthy",
		Service:   "chat",
		Timestamp: time.Now().UTC(),
	})
}
