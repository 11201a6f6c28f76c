package routes

import (
	"log/slog"
	"net/http"

	"task-rooms-api/internal/handlers"
	"task-rooms-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Deps carries the handlers and cross-cutting pieces the router mounts.
type Deps struct {
	Auth           *handlers.AuthHandler
	Tasks          *handlers.TaskHandler
	Rooms          *handlers.RoomHandler
	WebSocket      *handlers.WebSocketHandler
	Verifier       middleware.TokenVerifier
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(deps Deps) *gin.Engine {
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestLogger(deps.Logger))
	ginRouter.Use(middleware.CORS(middleware.NewOriginPolicy(deps.AllowedOrigins)))

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Rooms API is running",
		})
	})

	// Realtime channel; clients authenticate in-band
	ginRouter.GET("/ws", deps.WebSocket.Serve)

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", deps.Auth.Register)
		api.POST("/login", deps.Auth.Login)
		api.GET("/auth/google/login", deps.Auth.GoogleLogin)
		api.GET("/auth/google/callback", deps.Auth.GoogleCallback)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(deps.Verifier))
	{
		// Task endpoints
		protectedRoutes.GET("/tasks", deps.Tasks.GetTasks)
		protectedRoutes.GET("/tasks/:id", deps.Tasks.GetTaskByID)
		protectedRoutes.POST("/tasks", deps.Tasks.CreateTask)
		protectedRoutes.PUT("/tasks/:id", deps.Tasks.UpdateTask)
		protectedRoutes.PATCH("/tasks/:id/status", deps.Tasks.UpdateTaskStatus)
		protectedRoutes.DELETE("/tasks/:id", deps.Tasks.DeleteTask)
		protectedRoutes.GET("/stats", deps.Tasks.GetStats)
		// Room endpoints
		protectedRoutes.POST("/rooms", deps.Rooms.CreateRoom)
		protectedRoutes.POST("/rooms/join", deps.Rooms.JoinRoom)
		protectedRoutes.GET("/rooms/:code/members", deps.Rooms.GetMembers)
	}

	return ginRouter
}
