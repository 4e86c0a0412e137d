// Package assistant resolves a conversation into a typed intent:
// create an event, ask a clarifying question, or just chat. All
// natural-language and ambiguity handling is pushed into a single
// schema-constrained model call.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/xaenox/calbot/internal/models"
	"github.com/xaenox/calbot/internal/timeref"
)

var intentSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"action": {
			Type:        jsonschema.String,
			Enum:        []string{"create_event", "ask_clarification", "chat"},
			Description: "What action to take",
		},
		"message": {
			Type:        jsonschema.String,
			Description: "Response message to send to the user",
		},
		"event": {
			Type:        jsonschema.Object,
			Description: "Event details (only when action is create_event)",
			Properties: map[string]jsonschema.Definition{
				"title":          {Type: jsonschema.String, Description: "Event title"},
				"start_datetime": {Type: jsonschema.String, Description: "ISO 8601 start datetime"},
				"end_datetime":   {Type: jsonschema.String, Description: "ISO 8601 end datetime"},
				"location":       {Type: jsonschema.String, Description: "Event location (optional)"},
				"description":    {Type: jsonschema.String, Description: "Event description (optional)"},
			},
		},
	},
	Required: []string{"action", "message"},
}

type Resolver struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewResolver(client *openai.Client, model string, maxTokens int, temperature float64, logger *zap.Logger) *Resolver {
	return &Resolver{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Resolve invokes the model once with the assembled prompt and the
// intent schema, returning its validated decision.
func (r *Resolver) Resolve(ctx context.Context, ref timeref.Reference, history []models.Turn, imageJSON string) (*models.Intent, error) {
	prompt := BuildPrompt(ref, history, imageJSON)

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   r.maxTokens,
		Temperature: float32(r.temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "resolved_intent",
				Schema: intentSchema,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get model response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model response has no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	intent, err := ParseIntent(content)
	if err != nil {
		r.logger.Error("failed to parse model response",
			zap.Error(err),
			zap.String("response", content))
		return nil, err
	}

	return intent, nil
}
