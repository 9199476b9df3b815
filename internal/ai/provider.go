package ai

import "context"

// SearchProvider handles web search for candidate nutrition pages
// (Brave + Google fallback).
type SearchProvider interface {
	Search(ctx context.Context, query string, count int) ([]SearchResult, error)
}

// ExtractionProvider opens extraction sessions. One session is acquired per
// incoming request and reused across that request's candidate URLs.
type ExtractionProvider interface {
	NewSession(ctx context.Context) (ExtractionSession, error)
}

// ExtractionSession fetches a page and asks the LLM to extract structured
// nutrition facts from it. Close must be called when the request is done,
// regardless of how many candidates were attempted.
type ExtractionSession interface {
	Extract(ctx context.Context, url string, instruction string) (*ExtractionResult, error)
	Close() error
}

// SearchResult is a single web search result.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"source_url"`
	Source      string `json:"source_domain"`
	Description string `json:"description"`
}

// ExtractionResult is the structured output of one extraction attempt.
// Field names and the missing-value sentinel are fixed by the extraction
// instruction; the JSON tags must match the schema the instruction names.
type ExtractionResult struct {
	Calories        string            `json:"calories"`
	Protein         string            `json:"protein"`
	Sugar           string            `json:"sugar"`
	Carbohydrates   string            `json:"carbohydrates"`
	Fat             string            `json:"fat"`
	ServingSize     string            `json:"serving_size"`
	Allergens       []string          `json:"allergens"`
	VitaminMinerals map[string]string `json:"vitamin_minerals"`
}

// nutritionToolName is the tool/function both LLM providers force the model
// to call.
const nutritionToolName = "record_nutrition"

// nutritionSchemaProperties describes the record_nutrition input schema.
// Shared by the Claude tool definition and the OpenAI function definition.
func nutritionSchemaProperties() map[string]interface{} {
	return map[string]interface{}{
		"calories": map[string]interface{}{
			"type":        "string",
			"description": "Calorie value with unit, e.g. '47 kcal'",
		},
		"protein": map[string]interface{}{
			"type":        "string",
			"description": "Protein amount with unit, e.g. '3 g'",
		},
		"sugar": map[string]interface{}{
			"type":        "string",
			"description": "Sugar amount with unit",
		},
		"carbohydrates": map[string]interface{}{
			"type":        "string",
			"description": "Carbohydrate amount with unit",
		},
		"fat": map[string]interface{}{
			"type":        "string",
			"description": "Fat amount with unit",
		},
		"serving_size": map[string]interface{}{
			"type":        "string",
			"description": "Serving size the values refer to, e.g. '100 g'",
		},
		"allergens": map[string]interface{}{
			"type":        "array",
			"description": "Allergens listed on the page; empty list if none",
			"items":       map[string]interface{}{"type": "string"},
		},
		"vitamin_minerals": map[string]interface{}{
			"type":                 "object",
			"description":          "Vitamin and mineral name to amount string",
			"additionalProperties": map[string]interface{}{"type": "string"},
		},
	}
}
