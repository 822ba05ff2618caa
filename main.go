// File: main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/config"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/cron"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/database"
	appointmentRepoPkg "github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/database/repository/appointment"
	chatlogRepoPkg "github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/database/repository/chatlog"
	knowledgeRepoPkg "github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/database/repository/knowledge"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/handlers"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/routes"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/services/assistant"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/services/booking"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/services/notification"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/services/retrieval"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/services/scraper"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	ctx := context.Background()
	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize gemini client: %v", err)
	}
	defer genaiClient.Close()

	// Knowledge base: persistent vector index with a cached embedding func.
	embedFunc := retrieval.NewGeminiEmbedding(genaiClient, config.AppConfig.EmbeddingModel, utils.GetCacheClient(), logger)
	knowledgeIndex, err := retrieval.OpenIndex(config.AppConfig.VectorIndexPath, embedFunc)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to open vector index: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	appointmentRepo := appointmentRepoPkg.NewMongoAppointmentRepo()
	chatlogRepo := chatlogRepoPkg.NewMongoChatLogRepo()
	knowledgeRepo := knowledgeRepoPkg.NewMongoKnowledgeRepo()

	// services.
	retriever := retrieval.NewRetriever(knowledgeIndex, logger)
	completer := assistant.NewGeminiCompleter(genaiClient, config.AppConfig.GeminiModel)
	notifier := notification.NewEmailNotificationService(logger)
	scheduler := booking.NewSchedulingService(appointmentRepo, notifier, logger)

	sessionTTL := time.Duration(config.AppConfig.SessionTTLHours) * time.Hour
	sessionStore := assistant.NewMemorySessionStore(sessionTTL, logger)
	sessionStore.StartJanitor(10 * time.Minute)

	assistantService := assistant.NewAssistantService(
		sessionStore,
		retriever,
		completer,
		scheduler,
		chatlogRepo,
		config.AppConfig.CompanyName,
		config.AppConfig.NotifyEmail,
		logger,
	)

	// Ingestion pipeline and its background worker.
	pipeline := scraper.NewPipeline(scraper.NewSitemapScraper(logger), knowledgeRepo, knowledgeIndex, logger)
	if err := pipeline.RebuildIfEmpty(ctx); err != nil {
		logger.Sugar().Warnf("main: vector index rebuild failed: %v", err)
	}
	cron.InitScrapeWorker(pipeline)

	assistantHandler := handlers.NewAssistantHandler(assistantService)
	adminHandler := handlers.NewAdminHandler(sessionStore)

	// Register routes with the assembled handlers.
	routes.RegisterRoutes(router, assistantHandler, adminHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
