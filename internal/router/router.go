package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ozdemiry/nutrition-api/internal/ai"
	"github.com/ozdemiry/nutrition-api/internal/config"
	"github.com/ozdemiry/nutrition-api/internal/handlers"
	"github.com/ozdemiry/nutrition-api/internal/logger"
	"github.com/ozdemiry/nutrition-api/internal/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(cfg *config.Config, search ai.SearchProvider, extractor ai.ExtractionProvider) *gin.Engine {
	// Create default Gin router
	r := gin.Default()

	// The API is open to any frontend origin, matching the original service.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())

	// Nutrition routes setup
	nutritionService := service.NewNutritionService(cfg, search, extractor)
	nutritionHandler := handlers.NewNutritionHandler(nutritionService)

	// Look up nutrition facts for a food name
	r.GET("/nutrition/:food_name", nutritionHandler.GetNutrition)
	// Liveness probe
	r.GET("/health", nutritionHandler.HealthCheck)

	return r
}
