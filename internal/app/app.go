// Package app assembles the stores, services, realtime core and HTTP router
// from a loaded configuration.
package app

import (
	"log/slog"

	"task-rooms-api/internal/auth"
	"task-rooms-api/internal/config"
	"task-rooms-api/internal/handlers"
	"task-rooms-api/internal/realtime"
	"task-rooms-api/internal/roomcode"
	"task-rooms-api/internal/routes"
	"task-rooms-api/internal/service"
	"task-rooms-api/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App is the wired application. Registry is exposed so the caller can close
// live connections on shutdown.
type App struct {
	Engine   *gin.Engine
	Registry *realtime.Registry
	Tokens   *auth.TokenService
}

// New wires every component over db. bcryptCost 0 selects the library
// default.
func New(cfg *config.Config, db *gorm.DB, bcryptCost int, logger *slog.Logger) *App {
	gormStore := store.NewGormStore(db)
	rooms := store.NewCachedRooms(gormStore, cfg.Rooms.CacheTTL)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	var google auth.OAuthProvider
	if cfg.Google.Enabled() {
		google = auth.NewGoogleOAuth(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	} else {
		logger.Info("google login disabled, no client id configured")
	}

	registry := realtime.NewRegistry(logger)
	dispatcher := realtime.NewDispatcher(registry, logger)

	roomService := service.NewRoomService(rooms, roomcode.NewGenerator(rooms, cfg.Rooms.MaxAttempts), dispatcher, logger)
	taskService := service.NewTaskService(gormStore, roomService, dispatcher, logger)
	authService := service.NewAuthService(gormStore, auth.NewBcryptHasher(bcryptCost), tokens, google, logger)

	binder := realtime.NewBinder(registry, tokens, logger)
	router := realtime.NewRouter(registry, binder, roomService, logger)

	engine := routes.SetupRoutes(routes.Deps{
		Auth:           handlers.NewAuthHandler(authService, cfg.Google.FrontendURL),
		Tasks:          handlers.NewTaskHandler(taskService),
		Rooms:          handlers.NewRoomHandler(roomService),
		WebSocket:      handlers.NewWebSocketHandler(registry, router, cfg.Realtime, cfg.Server.AllowedOrigins, logger),
		Verifier:       tokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	return &App{Engine: engine, Registry: registry, Tokens: tokens}
}
