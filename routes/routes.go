package routes

import (
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/handlers"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAssistantRoutes registers the conversational endpoints.
func RegisterAssistantRoutes(r *gin.Engine, ah *handlers.AssistantHandler) {
	api := r.Group("/api/assistant")
	{
		api.Use(middleware.RateLimitMiddleware())
		api.POST("/chat", ah.ChatHandler)
		api.GET("/common-questions", ah.CommonQuestionsHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for session and knowledge maintenance.
func RegisterAdminRoutes(r *gin.Engine, adh *handlers.AdminHandler) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.GET("/sessions", adh.ListSessionsHandler)
		adminGroup.DELETE("/sessions", adh.ClearAllSessionsHandler)
		adminGroup.DELETE("/sessions/:id", adh.ClearSessionHandler)
		adminGroup.POST("/scrape", adh.TriggerScrapeHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, ah *handlers.AssistantHandler, adh *handlers.AdminHandler) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAssistantRoutes(r, ah)
	RegisterAdminRoutes(r, adh)
	RegisterHealthRoute(r)
}
