package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/api/auth"
	"github.com/dark-devil9/UrNav/internal/api/chat"
	"github.com/dark-devil9/UrNav/internal/api/foursquare/foursquaretest"
	generativeAI "github.com/dark-devil9/UrNav/internal/api/generative_ai"
	"github.com/dark-devil9/UrNav/internal/api/modes"
	"github.com/dark-devil9/UrNav/internal/api/places"
	"github.com/dark-devil9/UrNav/internal/api/routes"
	"github.com/dark-devil9/UrNav/internal/api/user"
)

func newTestRouter(chatRate int) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtCfg := config.JWTConfig{SecretKey: "router-test-secret", AccessTokenTTL: time.Hour}
	assistant := generativeAI.NewAssistant(nil, config.LLMConfig{}, logger)
	chatService := chat.NewChatService(new(foursquaretest.MockProvider), assistant, chat.NewConversationStore(time.Hour, 10), logger)

	return SetupRouter(&Config{
		AuthHandler:                    auth.NewAuthHandler(nil, logger),
		UserHandler:                    user.NewHandlerImpl(nil, logger),
		ModesHandler:                   modes.NewHandlerImpl(nil, logger),
		PlacesHandler:                  places.NewHandlerImpl(nil, logger),
		RoutesHandler:                  routes.NewHandlerImpl(routes.NewRoutesService(), logger),
		ChatHandler:                    chat.NewHandlerImpl(chatService, logger),
		AuthenticateMiddleware:         auth.Authenticate(logger, jwtCfg),
		OptionalAuthenticateMiddleware: auth.OptionalAuthenticate(logger, jwtCfg),
		ChatRequestsPerMin:             chatRate,
		Logger:                         logger,
	})
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := newTestRouter(0)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/routes/optimize", strings.NewReader(`{"stops":[]}`)))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chat/health/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"healthy"`)
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	router := newTestRouter(0)
	for _, target := range []string{"/users/history", "/auth/me", "/places/explore?lat=1&lon=2", "/places/abc"} {
		t.Run(target, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRouter_ChatIsRateLimited(t *testing.T) {
	router := newTestRouter(1)
	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"thanks","location":{"lat":26.9,"lon":75.8}}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	require.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
