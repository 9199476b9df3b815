package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ozdemiry/nutrition-api/internal/ai"
	"github.com/ozdemiry/nutrition-api/internal/config"
	"github.com/ozdemiry/nutrition-api/internal/logger"
	"github.com/ozdemiry/nutrition-api/internal/models"
	"go.uber.org/zap"
)

const (
	// searchResultCount is deliberately larger than maxCandidates so the
	// filter has losses to absorb.
	searchResultCount = 5
	// maxCandidates bounds how many filtered URLs are attempted per request.
	maxCandidates = 3
	// attemptTimeout bounds one fetch-and-extract attempt for one URL.
	attemptTimeout = 45 * time.Second
)

// OutcomeStatus tags the result of one acquisition run.
type OutcomeStatus int

const (
	// StatusValidated means a record with at least one substantive nutrient
	// field was found.
	StatusValidated OutcomeStatus = iota
	// StatusUnvalidated means a record was parsed but every nutrient field
	// holds the missing-value sentinel.
	StatusUnvalidated
	// StatusFailed means no candidate yielded a record at all.
	StatusFailed
)

// Outcome is the result of one acquisition run. Exactly one of Record
// (Validated/Unvalidated) or Reason (Failed) is meaningful.
type Outcome struct {
	Status OutcomeStatus
	Record *models.NutritionRecord
	Reason string
}

// Failure reasons surfaced as 404 details.
const (
	ReasonNoSuitablePages = "no suitable pages found"
	ReasonNoExtraction    = "no source yielded nutrition data"
)

// NutritionService runs the acquisition loop: build query, search, filter,
// iterate candidates with per-attempt timeouts, validate, select best.
type NutritionService struct {
	Cfg       *config.Config
	Search    ai.SearchProvider
	Extractor ai.ExtractionProvider
}

// NewNutritionService creates a new NutritionService.
func NewNutritionService(cfg *config.Config, search ai.SearchProvider, extractor ai.ExtractionProvider) *NutritionService {
	return &NutritionService{
		Cfg:       cfg,
		Search:    search,
		Extractor: extractor,
	}
}

// Acquire produces the best available nutrition record for a food name.
// A returned error is an internal failure (500); domain failures (nothing
// found) come back as a Failed outcome instead.
func (s *NutritionService) Acquire(ctx context.Context, foodName string, language string) (Outcome, error) {
	log := logger.With(zap.String("food", foodName), zap.String("language", language))

	loc := s.Cfg.Prompts.Locale(language)
	query, err := loc.BuildQuery(foodName)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to build search query: %w", err)
	}

	results, err := s.Search.Search(ctx, query, searchResultCount)
	if err != nil {
		return Outcome{}, fmt.Errorf("web search failed: %w", err)
	}

	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}

	candidates := filterCandidates(urls)
	if len(candidates) == 0 {
		log.Info("no suitable candidate pages after filtering", zap.Int("search_results", len(results)))
		return Outcome{Status: StatusFailed, Reason: ReasonNoSuitablePages}, nil
	}

	session, err := s.Extractor.NewSession(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to open extraction session: %w", err)
	}
	defer session.Close()

	// lastParsed is the most recent successfully parsed record; it becomes
	// the response when no candidate validates.
	var lastParsed *models.NutritionRecord

	for i, candidate := range candidates {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		result, err := session.Extract(attemptCtx, candidate, loc.Instruction)
		cancel()
		if err != nil {
			// Per-candidate failures are swallowed; move on, never retry.
			log.Warn("extraction attempt failed",
				zap.Int("attempt", i+1),
				zap.String("url", candidate),
				zap.Error(err),
			)
			continue
		}

		record := recordFromExtraction(result, candidate)
		lastParsed = record

		if record.HasSubstantiveField(loc.Sentinel) {
			log.Info("validated nutrition record found",
				zap.Int("attempt", i+1),
				zap.String("url", candidate),
			)
			return Outcome{Status: StatusValidated, Record: record}, nil
		}
	}

	if lastParsed != nil {
		log.Info("returning unvalidated nutrition record", zap.String("url", lastParsed.SourceURL))
		return Outcome{Status: StatusUnvalidated, Record: lastParsed}, nil
	}

	log.Info("all extraction attempts failed", zap.Int("candidates", len(candidates)))
	return Outcome{Status: StatusFailed, Reason: ReasonNoExtraction}, nil
}

// recordFromExtraction converts a provider result into the response model
// and attaches the source URL.
func recordFromExtraction(result *ai.ExtractionResult, sourceURL string) *models.NutritionRecord {
	return &models.NutritionRecord{
		Calories:        result.Calories,
		Protein:         result.Protein,
		Sugar:           result.Sugar,
		Carbohydrates:   result.Carbohydrates,
		Fat:             result.Fat,
		ServingSize:     result.ServingSize,
		Allergens:       result.Allergens,
		VitaminMinerals: result.VitaminMinerals,
		SourceURL:       sourceURL,
	}
}
