package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/auth"
	"messenger-service/internal/config"
	"messenger-service/internal/db"
	"messenger-service/internal/handlers"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
	"messenger-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing := telemetry.SetupTracing(context.Background(), cfg.OTLPEndpoint, "messenger-service", cfg.Environment)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracer shutdown: %v", err)
		}
	}()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(auditPublisher))
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit.messenger", "messenger-service", cfg.Environment)
	observability.SetPublisher(auditPublisher)

	verifier := auth.NewVerifier(cfg.JWTSecret)

	userRepo := repositories.NewUserRepo(database)
	friendRepo := repositories.NewFriendRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub()

	userHandler := handlers.NewUserHandler(userRepo)
	friendHandler := handlers.NewFriendHandler(friendRepo, hub, auditEmitter)
	messageHandler := handlers.NewMessageHandler(messageRepo, hub, auditEmitter)
	notifyWS := ws.NewNotifyWebSocketHandler(hub)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("messenger-service"))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID", "X-Device-Id"},
		AllowCredentials: true,
	}))

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.GET("/users", userHandler.ListUsers)
	router.GET("/friends", authMiddleware, friendHandler.ListFriends)
	router.GET("/friends/requests", authMiddleware, friendHandler.ListPendingRequests)
	router.POST("/friends/requests", authMiddleware, friendHandler.SendRequest)
	router.POST("/friends/requests/accept", authMiddleware, friendHandler.AcceptRequest)
	router.POST("/friends/requests/decline", authMiddleware, friendHandler.DeclineRequest)
	router.GET("/messages", authMiddleware, messageHandler.ListConversation)
	router.POST("/messages", authMiddleware, messageHandler.SendMessage)

	router.GET("/ws", notifyWS.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, auditEmitter, cfg.Debug)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
