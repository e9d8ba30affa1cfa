package checker

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dshills/prosecheck/internal/segment"
)

// LLMCheckerName is the scheduling category of the LLM grammar checker.
const LLMCheckerName = "grammar-llm"

const llmSystemPrompt = `You are a grammar and style checker. You receive a JSON
object with a "segments" array; each segment has an id and text. Report issues
as JSON: {"suggestions":[{"segment":<id>,"text":<exact flagged text>,
"suggestion":<replacement>,"start":<0-based byte offset in the segment>,
"end":<exclusive end offset>,"type":"grammar"|"style","description":<short reason>}]}.
Offsets are relative to the segment text. Return {"suggestions":[]} when there
are no issues.`

// llmResponseSchema constrains the model to the checker wire shape.
var llmResponseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"suggestions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"segment":     map[string]any{"type": "integer"},
					"text":        map[string]any{"type": "string"},
					"suggestion":  map[string]any{"type": "string"},
					"start":       map[string]any{"type": "integer"},
					"end":         map[string]any{"type": "integer"},
					"type":        map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
				},
				"required":             []string{"segment", "text", "suggestion", "start", "end", "type", "description"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"suggestions"},
	"additionalProperties": false,
}

// LLMChecker produces grammar and style suggestions from a language model
// with a JSON-schema-constrained response. Entries that fail the strict wire
// validation are dropped like any other checker response.
type LLMChecker struct {
	client openai.Client
	model  string
}

// LLMConfig configures the LLM checker.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewLLMChecker creates an LLM-backed grammar checker.
func NewLLMChecker(cfg LLMConfig) (*LLMChecker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm checker: API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &LLMChecker{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Name implements Checker.
func (c *LLMChecker) Name() string { return LLMCheckerName }

// Kind implements Checker.
func (c *LLMChecker) Kind() Kind { return KindGrammar }

// Check implements Checker.
func (c *LLMChecker) Check(ctx context.Context, units []segment.Unit) ([]RawSuggestion, error) {
	if len(units) == 0 {
		return nil, nil
	}

	payload, err := encodeRequest(units)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(llmSystemPrompt),
			openai.UserMessage(string(payload)),
		},
		MaxTokens:   openai.Int(2000),
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "checker_response",
					Schema: llmResponseSchema,
					Strict: openai.Bool(true),
				},
			},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("llm chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrDecodeResponse)
	}

	suggestions, _, err := decodeResponse([]byte(resp.Choices[0].Message.Content), units)
	return suggestions, err
}
