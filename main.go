package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	database "github.com/dark-devil9/UrNav/app/db"
	appLogger "github.com/dark-devil9/UrNav/app/logger"
	"github.com/dark-devil9/UrNav/app/tracer"
	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/api/auth"
	"github.com/dark-devil9/UrNav/internal/container"
	"github.com/dark-devil9/UrNav/internal/router"
)

const serviceName = "urnav-api"

// @title           UrNav API
// @version         0.1.0
// @description     Location-aware planner, place search and travel chat.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Use standard log until slog is configured, in case godotenv fails
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := appLogger.New(os.Getenv("APP_ENV"), os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTelemetry, err := tracer.InitTracingAndMetrics(serviceName, cfg.Handlers.Prometheus.Port, logger)
	if err != nil {
		logger.Error("Failed to initialise telemetry", slog.Any("error", err))
		os.Exit(1)
	}

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	// Run migrations *before* initializing the main pool
	if err = database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}

	c, err := container.NewContainer(ctx, &cfg, pool, logger)
	if err != nil {
		logger.Error("Failed to build dependencies", slog.Any("error", err))
		pool.Close()
		os.Exit(1)
	}
	defer c.Close()

	if !c.WaitForDB(ctx) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	mainRouter := router.SetupRouter(&router.Config{
		AuthHandler:                    c.AuthHandler,
		UserHandler:                    c.UserHandler,
		ModesHandler:                   c.ModesHandler,
		PlacesHandler:                  c.PlacesHandler,
		RoutesHandler:                  c.RoutesHandler,
		ChatHandler:                    c.ChatHandler,
		AuthenticateMiddleware:         auth.Authenticate(logger, cfg.JWT),
		OptionalAuthenticateMiddleware: auth.OptionalAuthenticate(logger, cfg.JWT),
		AllowedOrigins:                 cfg.Server.AllowedOrigins,
		Timeout:                        cfg.Server.Timeout,
		ChatRequestsPerMin:             cfg.Chat.RequestsPerMinute,
		Logger:                         logger,
	})

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mainRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second, // chat replies wait on the LLM
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error("Telemetry shutdown failed", slog.Any("error", err))
	}

	logger.Info("Application shut down complete.")
}
