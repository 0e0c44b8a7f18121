package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appLogger "github.com/dark-devil9/UrNav/app/logger"
	_ "github.com/dark-devil9/UrNav/docs"
	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/api/auth"
	"github.com/dark-devil9/UrNav/internal/api/chat"
	"github.com/dark-devil9/UrNav/internal/api/modes"
	"github.com/dark-devil9/UrNav/internal/api/places"
	"github.com/dark-devil9/UrNav/internal/api/routes"
	"github.com/dark-devil9/UrNav/internal/api/user"
)

const (
	defaultTimeout        = 60 * time.Second
	defaultChatRatePerMin = 30
	corsMaxAge            = 300
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler   *auth.AuthHandler
	UserHandler   *user.HandlerImpl
	ModesHandler  *modes.HandlerImpl
	PlacesHandler *places.HandlerImpl
	RoutesHandler *routes.HandlerImpl
	ChatHandler   *chat.HandlerImpl

	// Authenticate rejects requests without a valid access token.
	// OptionalAuthenticate only attaches the user when a token is present.
	AuthenticateMiddleware         func(http.Handler) http.Handler
	OptionalAuthenticateMiddleware func(http.Handler) http.Handler

	AllowedOrigins     []string
	Timeout            time.Duration
	ChatRequestsPerMin int
	Logger             *slog.Logger
}

// SetupRouter builds the full HTTP surface, server-wide middleware included.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	chatRate := cfg.ChatRequestsPerMin
	if chatRate <= 0 {
		chatRate = defaultChatRatePerMin
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5, "application/json"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", cfg.AuthHandler.Signup)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.RefreshSession)
		r.With(cfg.AuthenticateMiddleware).Get("/me", cfg.AuthHandler.Me)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(cfg.AuthenticateMiddleware)
		r.Put("/preferences", cfg.UserHandler.UpdatePreferences)
		r.Put("/dislikes", cfg.UserHandler.UpdateDislikes)
		r.Get("/history", cfg.UserHandler.History)
		r.Delete("/memory/reset", cfg.UserHandler.ResetMemory)
	})

	r.Route("/places", func(r chi.Router) {
		r.Use(cfg.OptionalAuthenticateMiddleware)
		r.Get("/search", cfg.PlacesHandler.Search)
		r.Get("/geocode", cfg.PlacesHandler.Geocode)
		r.Get("/match", cfg.PlacesHandler.Match)
		r.With(cfg.AuthenticateMiddleware).Get("/explore", cfg.PlacesHandler.Explore)
		r.With(cfg.AuthenticateMiddleware).Get("/{placeID}", cfg.PlacesHandler.Details)
		r.Get("/{placeID}/photos", cfg.PlacesHandler.Photos)
		r.Get("/{placeID}/tips", cfg.PlacesHandler.Tips)
	})

	r.Route("/modes", func(r chi.Router) {
		r.With(cfg.OptionalAuthenticateMiddleware).Post("/plan-day", cfg.ModesHandler.PlanDay)
		r.Post("/plan-day/complete", cfg.ModesHandler.CompleteTask)
		r.Get("/plan-day/status", cfg.ModesHandler.TaskStatus)
		r.Get("/free-places", cfg.ModesHandler.FreePlaces)
		r.Post("/meet-friend", cfg.ModesHandler.MeetFriend)
		r.Get("/explorer", cfg.ModesHandler.Explorer)
	})

	r.Post("/routes/optimize", cfg.RoutesHandler.Optimize)

	r.Route("/chat", func(r chi.Router) {
		r.Get("/health", cfg.ChatHandler.Health)
		r.Get("/user/{userID}", cfg.ChatHandler.GetUserInfo)
		r.Delete("/user/{userID}", cfg.ChatHandler.ClearConversation)
		r.With(httprate.Limit(chatRate, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				api.ErrorResponse(w, r, http.StatusTooManyRequests, "Too many chat messages, slow down")
			}),
		)).Post("/", cfg.ChatHandler.Chat)
	})

	return r
}
