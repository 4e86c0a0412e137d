// Package vision turns a photographed invitation or notice into
// structured event-candidate fields using a vision-capable model.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/xaenox/calbot/internal/models"
)

const extractionPrompt = `Extract event information from this image. ` +
	`It may be an invitation, a save-the-date, a school notice, a schedule ` +
	`screenshot, or a handwritten note, in English or Hebrew. Fill in every ` +
	`field you can read; leave the rest empty.`

var extractionSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"event_name":  {Type: jsonschema.String, Description: "Name or title of the event"},
		"date":        {Type: jsonschema.String, Description: "Date of the event"},
		"time":        {Type: jsonschema.String, Description: "Time of the event"},
		"end_time":    {Type: jsonschema.String, Description: "End time if visible"},
		"location":    {Type: jsonschema.String, Description: "Location or venue"},
		"description": {Type: jsonschema.String, Description: "Any other details about the event"},
		"all_text":    {Type: jsonschema.String, Description: "All text visible in the image"},
	},
}

type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewExtractor(client *openai.Client, model string, logger *zap.Logger) *Extractor {
	return &Extractor{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Extract runs the vision model against the stored image URL and
// returns the structured candidate fields.
func (e *Extractor) Extract(ctx context.Context, imageURL string) (*models.ImageData, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: extractionPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "extracted_event",
				Schema: extractionSchema,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extraction response has no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	data, err := decodeExtraction([]byte(content))
	if err != nil {
		e.logger.Error("failed to parse extraction response",
			zap.Error(err),
			zap.String("response", content))
		return nil, err
	}

	return data, nil
}

// decodeExtraction normalizes the two response shapes the upstream
// service produces: a flat payload, or the payload nested one level
// under {status, output}. Both shapes must always be accepted.
func decodeExtraction(raw []byte) (*models.ImageData, error) {
	var envelope struct {
		Status string          `json:"status"`
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse extraction payload: %w", err)
	}
	if len(envelope.Output) > 0 {
		raw = envelope.Output
	}

	data := &models.ImageData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse extraction payload: %w", err)
	}
	return data, nil
}
