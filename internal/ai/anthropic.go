package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ozdemiry/nutrition-api/internal/fetch"
	"github.com/ozdemiry/nutrition-api/internal/util"
)

const pageFetchTimeout = 20 * time.Second

// AnthropicExtractor implements ExtractionProvider using Claude tool use.
type AnthropicExtractor struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicExtractor creates an extraction provider backed by the Haiku
// model. Extraction is a high-volume, low-stakes task; the cheap model is
// sufficient.
func NewAnthropicExtractor(apiKey string) *AnthropicExtractor {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicExtractor{
		client: client,
		model:  anthropic.Model("claude-haiku-4-5-20251001"),
	}
}

// NewSession opens an extraction session scoped to one request. The page
// client it holds is reused for every candidate URL of that request.
func (p *AnthropicExtractor) NewSession(ctx context.Context) (ExtractionSession, error) {
	return &anthropicSession{
		client: p.client,
		model:  p.model,
		pages:  fetch.NewClient(pageFetchTimeout),
	}, nil
}

type anthropicSession struct {
	client anthropic.Client
	model  anthropic.Model
	pages  *fetch.Client
}

// Extract fetches the page and asks Claude to record its nutrition facts.
// A failure here is always per-candidate; the caller moves on to the next
// URL without retrying this one.
func (s *anthropicSession) Extract(ctx context.Context, url string, instruction string) (*ExtractionResult, error) {
	pageText, err := s.pages.PageText(ctx, url)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: instruction},
		},
		Messages: []anthropic.MessageParam{
			newUserMessage(anthropic.NewTextBlock(pageText)),
		},
		Tools: []anthropic.ToolUnionParam{nutritionTool()},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfToolChoiceTool: &anthropic.ToolChoiceToolParam{
				Name: nutritionToolName,
			},
		},
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	return extractionFromToolUse(resp)
}

func (s *anthropicSession) Close() error {
	s.pages.Close()
	return nil
}

// nutritionTool builds the Claude tool definition for structured nutrition output.
func nutritionTool() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        nutritionToolName,
			Description: anthropic.String("Record the nutrition facts extracted from the page as a single structured object."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Type:       "object",
				Properties: nutritionSchemaProperties(),
			},
		},
	}
}

// extractionFromToolUse parses the tool-use content block returned by Claude.
func extractionFromToolUse(msg *anthropic.Message) (*ExtractionResult, error) {
	for _, block := range msg.Content {
		if block.Type == "tool_use" {
			raw, err := json.Marshal(block.Input)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal tool input: %w", err)
			}
			return parseExtractionPayload(raw)
		}
	}
	return nil, errors.New("no tool_use block found in Claude response")
}

// parseExtractionPayload normalizes a raw payload (object or list) into a
// single ExtractionResult. Shared by both LLM providers.
func parseExtractionPayload(raw []byte) (*ExtractionResult, error) {
	normalized, err := util.NormalizeRecordPayload(raw)
	if err != nil {
		return nil, err
	}

	var result ExtractionResult
	if err := util.DeserializeFromJSONString(string(normalized), &result); err != nil {
		return nil, fmt.Errorf("failed to parse extraction result: %w", err)
	}
	return &result, nil
}

func newUserMessage(blocks ...anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.MessageParam{
		Role:    anthropic.MessageParamRoleUser,
		Content: blocks,
	}
}
