package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/farellandr/linkup/config"
	"github.com/farellandr/linkup/internal/handlers"
	"github.com/farellandr/linkup/internal/middleware"
	"github.com/farellandr/linkup/internal/repository/postgres"
	"github.com/farellandr/linkup/internal/services"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	r := gin.Default()

	setupRoutes(r, db, redisClient, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) {
	eventRepo := postgres.NewEventRepository(db)
	userRepo := postgres.NewUserRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	userConnRepo := postgres.NewUserConnectionRepository(db)
	participantConnRepo := postgres.NewParticipantConnectionRepository(db)

	notifier := services.NewRedisNotifier(redisClient)
	identity := services.NewIdentityResolver(userRepo, participantRepo)
	eventService := services.NewEventService(eventRepo, participantRepo)
	admissionService := services.NewAdmissionService(eventRepo, userRepo, participantRepo, notifier, logger)
	connectionService := services.NewConnectionService(eventRepo, userRepo, participantRepo, userConnRepo, participantConnRepo, identity)

	authHandler := handlers.NewAuthHandler(userRepo)
	eventHandler := handlers.NewEventHandler(eventService, participantRepo)
	joinHandler := handlers.NewJoinHandler(admissionService)
	connectionHandler := handlers.NewConnectionHandler(connectionService)
	streamHandler := handlers.NewStreamHandler(eventService, redisClient)

	public := r.Group("/v1")
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", eventHandler.ListEvents)
			eventPublic.GET("/:id", eventHandler.GetEvent)
			eventPublic.GET("/code/:code", eventHandler.GetEventByJoinCode)
			eventPublic.GET("/:id/qr", eventHandler.GetEventQR)
			eventPublic.GET("/:id/participants", eventHandler.ListParticipants)
			eventPublic.GET("/:id/stream", streamHandler.StreamJoins)

			eventPublic.POST("/:id/join", joinHandler.JoinEvent)
			eventPublic.POST("/:id/join-guest", joinHandler.JoinEventAsGuest)

			userConns := eventPublic.Group("/:id/connections/users")
			{
				userConns.POST("", connectionHandler.CreateUserConnection)
				userConns.POST("/email", connectionHandler.CreateUserConnectionByEmail)
				userConns.GET("", connectionHandler.ListUserConnections)
				userConns.DELETE("/:connection_id", connectionHandler.DeleteUserConnection)
			}

			participantConns := eventPublic.Group("/:id/connections/participants")
			{
				participantConns.POST("", connectionHandler.CreateParticipantConnection)
				participantConns.POST("/email", connectionHandler.CreateParticipantConnectionByEmail)
				participantConns.GET("", connectionHandler.ListParticipantConnections)
				participantConns.DELETE("/:connection_id", connectionHandler.DeleteParticipantConnection)
			}
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", authHandler.Profile)

		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("", eventHandler.CreateEvent)
			eventProtected.PUT("/:id", eventHandler.UpdateEvent)
			eventProtected.PATCH("/:id/state", eventHandler.UpdateEventState)
			eventProtected.DELETE("/:id", eventHandler.DeleteEvent)
		}
	}
}
