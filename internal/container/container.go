package container

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/dark-devil9/UrNav/app/db"
	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/api/auth"
	"github.com/dark-devil9/UrNav/internal/api/chat"
	"github.com/dark-devil9/UrNav/internal/api/foursquare"
	generativeAI "github.com/dark-devil9/UrNav/internal/api/generative_ai"
	"github.com/dark-devil9/UrNav/internal/api/modes"
	"github.com/dark-devil9/UrNav/internal/api/places"
	"github.com/dark-devil9/UrNav/internal/api/routes"
	"github.com/dark-devil9/UrNav/internal/api/user"
	"github.com/dark-devil9/UrNav/internal/types"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	Pool          *pgxpool.Pool
	AuthHandler   *auth.AuthHandler
	UserHandler   *user.HandlerImpl
	ModesHandler  *modes.HandlerImpl
	PlacesHandler *places.HandlerImpl
	RoutesHandler *routes.HandlerImpl
	ChatHandler   *chat.HandlerImpl
}

// NewContainer wires repositories, services and handlers around an open pool.
// Without a Gemini key the assistant runs on heuristics.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Container, error) {
	var gen generativeAI.Generator
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.LLM, logger)
	switch {
	case errors.Is(err, generativeAI.ErrNotConfigured):
		logger.Warn("LLM not configured, using heuristic replies")
	case err != nil:
		logger.Error("Failed to initialise LLM client", slog.Any("error", err))
		return nil, err
	default:
		gen = aiClient
	}
	assistant := generativeAI.NewAssistant(gen, cfg.LLM, logger)

	provider := foursquare.NewClient(cfg.Foursquare, logger)
	if cfg.Foursquare.APIKey == "" {
		logger.Warn("FOURSQUARE_API_KEY not set, place lookups will serve demo data")
	}

	// auth
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, cfg, logger)
	authHandler := auth.NewAuthHandler(authService, logger)

	// users
	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewUserService(userRepo, logger)
	userHandler := user.NewHandlerImpl(userService, logger)

	// modes
	taskManager := modes.NewTaskManager(cfg.Planner.SessionTTL)
	origin := types.LatLng{Lat: cfg.Planner.DefaultOrigin.Lat, Lng: cfg.Planner.DefaultOrigin.Lng}
	modesService := modes.NewModesService(provider, assistant, taskManager, userService, origin, logger)
	modesHandler := modes.NewHandlerImpl(modesService, logger)

	// places
	placesService := places.NewPlacesService(provider, userService, logger)
	placesHandler := places.NewHandlerImpl(placesService, logger)

	routesHandler := routes.NewHandlerImpl(routes.NewRoutesService(), logger)

	// chat
	store := chat.NewConversationStore(cfg.Chat.ConversationTTL, cfg.Chat.HistoryLimit)
	chatService := chat.NewChatService(provider, assistant, store, logger)
	chatHandler := chat.NewHandlerImpl(chatService, logger)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		Pool:          pool,
		AuthHandler:   authHandler,
		UserHandler:   userHandler,
		ModesHandler:  modesHandler,
		PlacesHandler: placesHandler,
		RoutesHandler: routesHandler,
		ChatHandler:   chatHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
