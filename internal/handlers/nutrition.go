package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ozdemiry/nutrition-api/internal/logger"
	"github.com/ozdemiry/nutrition-api/internal/service"
	"go.uber.org/zap"
)

// NutritionHandler handles nutrition lookup requests.
type NutritionHandler struct {
	Service *service.NutritionService
}

// NewNutritionHandler creates a new NutritionHandler.
func NewNutritionHandler(nutritionService *service.NutritionService) *NutritionHandler {
	return &NutritionHandler{Service: nutritionService}
}

// GetNutrition handles GET /nutrition/:food_name?language=tr|en.
// Validated and unvalidated records both map to 200; a Failed outcome maps
// to 404 and internal failures to 500, always as {"detail": ...} JSON.
func (h *NutritionHandler) GetNutrition(c *gin.Context) {
	foodName := c.Param("food_name")
	language := c.DefaultQuery("language", "tr")

	outcome, err := h.Service.Acquire(c.Request.Context(), foodName, language)
	if err != nil {
		logger.Get().Error("nutrition acquisition failed",
			zap.String("food", foodName),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Unexpected error: " + err.Error()})
		return
	}

	switch outcome.Status {
	case service.StatusValidated, service.StatusUnvalidated:
		c.JSON(http.StatusOK, outcome.Record)
	default:
		c.JSON(http.StatusNotFound, gin.H{"detail": outcome.Reason})
	}
}

// HealthCheck handles GET /health. Constant response, no side effects.
func (h *NutritionHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
