package testutil

import (
	"github.com/ozdemiry/nutrition-api/internal/ai"
	"github.com/ozdemiry/nutrition-api/internal/config"
	"github.com/ozdemiry/nutrition-api/internal/models"
)

// TestConfig creates a config with the compiled-in prompt set, suitable for
// exercising the acquisition loop without touching the environment.
func TestConfig() *config.Config {
	return &config.Config{
		Prompts: config.DefaultPrompts(),
	}
}

// TestExtractionResult creates an extraction result with realistic values.
func TestExtractionResult() *ai.ExtractionResult {
	return &ai.ExtractionResult{
		Calories:      "52 kcal",
		Protein:       "0.3 g",
		Sugar:         "10.4 g",
		Carbohydrates: "13.8 g",
		Fat:           "0.2 g",
		ServingSize:   "100 g",
		Allergens:     []string{},
		VitaminMinerals: map[string]string{
			"Vitamin C": "4.6 mg",
			"Potassium": "107 mg",
		},
	}
}

// SentinelExtractionResult creates a result where every nutrient field holds
// the given missing-value sentinel.
func SentinelExtractionResult(sentinel string) *ai.ExtractionResult {
	return &ai.ExtractionResult{
		Calories:      sentinel,
		Protein:       sentinel,
		Sugar:         sentinel,
		Carbohydrates: sentinel,
		Fat:           sentinel,
		ServingSize:   sentinel,
		Allergens:     []string{},
	}
}

// SearchResultsFor wraps plain URLs in ai.SearchResult values.
func SearchResultsFor(urls ...string) []ai.SearchResult {
	results := make([]ai.SearchResult, 0, len(urls))
	for _, u := range urls {
		results = append(results, ai.SearchResult{URL: u})
	}
	return results
}

// TestRecord creates a populated NutritionRecord.
func TestRecord() *models.NutritionRecord {
	return &models.NutritionRecord{
		Calories:      "52 kcal",
		Protein:       "0.3 g",
		Sugar:         "10.4 g",
		Carbohydrates: "13.8 g",
		Fat:           "0.2 g",
		ServingSize:   "100 g",
		SourceURL:     "https://example.com/apple-nutrition",
	}
}
