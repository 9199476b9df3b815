package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/ozdemiry/nutrition-api/internal/fetch"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// OpenAIExtractor implements ExtractionProvider using OpenAI function calling.
// Selected with EXTRACTION_PROVIDER=openai.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

// NewOpenAIExtractor creates an extraction provider backed by GPT-4o mini.
func NewOpenAIExtractor(apiKey string) *OpenAIExtractor {
	return &OpenAIExtractor{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
}

// NewSession opens an extraction session scoped to one request.
func (p *OpenAIExtractor) NewSession(ctx context.Context) (ExtractionSession, error) {
	return &openAISession{
		client: p.client,
		model:  p.model,
		pages:  fetch.NewClient(pageFetchTimeout),
	}, nil
}

type openAISession struct {
	client *openai.Client
	model  string
	pages  *fetch.Client
}

func (s *openAISession) Extract(ctx context.Context, url string, instruction string) (*ExtractionResult, error) {
	pageText, err := s.pages.PageText(ctx, url)
	if err != nil {
		return nil, err
	}

	functionDef := openai.FunctionDefinition{
		Name:       nutritionToolName,
		Parameters: nutritionFunctionSchema(),
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: pageText},
		},
		Temperature: 0,
		N:           1,
		Functions:   []openai.FunctionDefinition{functionDef},
		FunctionCall: &openai.FunctionCall{
			Name: functionDef.Name,
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.FunctionCall == nil {
		return nil, errors.New("openai response has no function call")
	}

	args := resp.Choices[0].Message.FunctionCall.Arguments
	if args == "" {
		return nil, errors.New("openai function call returned empty arguments")
	}

	return parseExtractionPayload([]byte(args))
}

func (s *openAISession) Close() error {
	s.pages.Close()
	return nil
}

// nutritionFunctionSchema mirrors the record_nutrition tool schema in the
// go-openai jsonschema types.
func nutritionFunctionSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"calories":      {Type: jsonschema.String, Description: "Calorie value with unit, e.g. '47 kcal'"},
			"protein":       {Type: jsonschema.String, Description: "Protein amount with unit, e.g. '3 g'"},
			"sugar":         {Type: jsonschema.String, Description: "Sugar amount with unit"},
			"carbohydrates": {Type: jsonschema.String, Description: "Carbohydrate amount with unit"},
			"fat":           {Type: jsonschema.String, Description: "Fat amount with unit"},
			"serving_size":  {Type: jsonschema.String, Description: "Serving size the values refer to, e.g. '100 g'"},
			"allergens": {
				Type:        jsonschema.Array,
				Description: "Allergens listed on the page; empty list if none",
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
			"vitamin_minerals": {
				Type:        jsonschema.Object,
				Description: "Vitamin and mineral name to amount string",
			},
		},
	}
}
