package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Classifier scores one email field for phishing likelihood using OpenAI.
// Each instance is bound to one field role so the three pipeline models
// stay independent.
type Classifier struct {
	client        *openai.Client
	modelName     string
	role          string
	maxTokens     int
	temperature   float32
	maxTextSize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// scoreResponse is the structured verdict requested from the model
type scoreResponse struct {
	Score float64 `json:"score"`
}

const promptFormat = `You are a phishing detection system. Score the following %s.
Respond with a JSON object containing:
- score: number between 0 and 1 (probability that this %s belongs to a phishing email)

%s:
%s

Respond only with the JSON object and nothing else.`

// NewClassifier creates a classifier bound to one field role
func NewClassifier(
	client *openai.Client,
	modelName string,
	role string,
	maxTokens int,
	temperature float32,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Classifier {
	return &Classifier{
		client:        client,
		modelName:     modelName,
		role:          role,
		maxTokens:     maxTokens,
		temperature:   temperature,
		maxTextSize:   maxTextSize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Classify implements core.TextClassifier
func (c *Classifier) Classify(ctx context.Context, text string) (float64, error) {
	prepared := c.textProcessor.Prepare(text, c.maxTextSize)
	prompt := fmt.Sprintf(promptFormat, c.role, c.role, c.role, prepared)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a phishing detection system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("%w: openai chat completion: %v", core.ErrCapabilityUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("%w: empty response from OpenAI", core.ErrCapabilityUnavailable)
	}

	score, err := parseScore(resp.Choices[0].Message.Content)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrCapabilityUnavailable, err)
	}

	c.logger.Debug("OpenAI classification",
		zap.String("role", c.role),
		zap.Float64("score", score))

	return score, nil
}

// parseScore extracts the JSON verdict from the model output, tolerating
// text around the JSON object
func parseScore(responseText string) (float64, error) {
	var parsed scoreResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		jsonStart, jsonEnd := -1, -1
		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}
		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}
		if jsonStart < 0 || jsonStart >= jsonEnd {
			return 0, fmt.Errorf("failed to extract JSON from model response")
		}
		if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &parsed); err != nil {
			return 0, fmt.Errorf("failed to parse model response as JSON: %v", err)
		}
	}

	score := parsed.Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}
