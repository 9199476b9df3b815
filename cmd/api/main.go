package main

import (
	"errors"
	"os"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/ozdemiry/nutrition-api/internal/ai"
	"github.com/ozdemiry/nutrition-api/internal/config"
	"github.com/ozdemiry/nutrition-api/internal/logger"
	"github.com/ozdemiry/nutrition-api/internal/router"
	"go.uber.org/zap"
)

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the API.
func main() {
	defer logger.Sync()

	// Load the config
	var cfg *config.Config
	if c, err := config.LoadConfig(); err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	} else {
		cfg = c
	}

	// Check that all ENV variables are set
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}

	// Load locale prompts from YAML, falling back to the compiled-in set
	if prompts, err := config.LoadPrompts(cfg.EnvVars.PromptsPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Get().Fatal("failed to load prompts", zap.Error(err))
		}
		logger.Get().Info("prompts file not found, using built-in prompts",
			zap.String("path", cfg.EnvVars.PromptsPath))
		cfg.Prompts = config.DefaultPrompts()
	} else {
		cfg.Prompts = prompts
	}

	// Collaborator setup
	search := ai.NewWebSearchProvider(cfg.EnvVars.BraveSearchKey, cfg.EnvVars.GoogleSearchKey, cfg.EnvVars.GoogleSearchCX)
	var extractor ai.ExtractionProvider
	switch cfg.EnvVars.ExtractionProvider {
	case "openai":
		if cfg.EnvVars.OpenAIAPIKey == "" {
			logger.Get().Fatal("$OPENAI_API_KEY must be set when EXTRACTION_PROVIDER=openai")
		}
		extractor = ai.NewOpenAIExtractor(cfg.EnvVars.OpenAIAPIKey)
	case "anthropic":
		extractor = ai.NewAnthropicExtractor(cfg.EnvVars.AnthropicAPIKey)
	default:
		logger.Get().Fatal("unknown extraction provider", zap.String("provider", cfg.EnvVars.ExtractionProvider))
	}

	// Create a new gin router
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(cfg, search, extractor)

	// Run the server
	logger.Get().Info("starting server", zap.String("port", cfg.EnvVars.Port))
	r.Run(":" + cfg.EnvVars.Port)
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}
