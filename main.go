package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"klink-backend/internal/assistant"
	"klink-backend/internal/config"
	"klink-backend/internal/db"
	"klink-backend/internal/events"
	"klink-backend/internal/handlers"
	"klink-backend/internal/language"
	"klink-backend/internal/observability"
	"klink-backend/internal/presence"
	"klink-backend/internal/push"
	"klink-backend/internal/rabbitmq"
	"klink-backend/internal/repositories"
	"klink-backend/internal/telemetry"
	"klink-backend/internal/translation"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	presenceStore, err := presence.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer presenceStore.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, "audit.delivery", "klink-backend", cfg.Env)

	userRepo := repositories.NewUserRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	translateClient := language.NewClient(cfg.TranslateAPIURL, cfg.TranslateAPIKey)
	resolver := language.NewResolver(translateClient, translateClient, userRepo)
	orchestrator := translation.NewOrchestrator(resolver, translateClient, translateClient, messageRepo, audit)

	oracle := presence.NewOracle(presenceStore)
	sender := push.NewFCMSender(cfg.FCMSendURL, cfg.FCMAuthToken)
	dispatcher := push.NewDispatcher(userRepo, oracle, sender)

	assistantClient := assistant.NewClient(cfg.OpenAIAPIURL, cfg.OpenAIAPIKey)

	notificationHandler := handlers.NewNotificationHandler(dispatcher, audit)
	translationHandler := handlers.NewTranslationHandler(orchestrator)
	assistantHandler := handlers.NewAssistantHandler(assistantClient)

	if cfg.AMQPURL != "" {
		consumer, err := events.NewConsumer(cfg.AMQPURL, cfg.AMQPExchange, cfg.MessageQueue, orchestrator)
		if err != nil {
			log.Fatalf("failed to start event consumer: %v", err)
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("event consumer stopped: %v", err)
			}
		}()
	} else {
		log.Printf("amqp disabled, message.created events will not be consumed")
	}

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())

	router.POST("/rpc/notifications/send", notificationHandler.Send)
	router.POST("/rpc/translations/on-demand", translationHandler.TranslateOnDemand)
	router.POST("/rpc/assistant/chat", assistantHandler.Chat)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
