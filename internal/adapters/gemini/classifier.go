package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/utils"
	"go.uber.org/zap"
)

// Classifier scores one email field for phishing likelihood using Google
// Gemini. Each instance is bound to one field role.
type Classifier struct {
	model         *genai.GenerativeModel
	modelName     string
	role          string
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
	model *genai.GenerativeModel,
	modelName string,
	role string,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Classifier {
	return &Classifier{
		model:         model,
		modelName:     modelName,
		role:          role,
		maxTextSize:   maxTextSize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Classify implements core.TextClassifier
func (c *Classifier) Classify(ctx context.Context, text string) (float64, error) {
	prepared := c.textProcessor.Prepare(text, c.maxTextSize)
	prompt := fmt.Sprintf(promptFormat, c.role, c.role, c.role, prepared)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return 0, fmt.Errorf("%w: gemini generate content: %v", core.ErrCapabilityUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return 0, fmt.Errorf("%w: empty response from Gemini", core.ErrCapabilityUnavailable)
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			responseText += string(textPart)
		}
	}

	score, err := parseScore(responseText)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrCapabilityUnavailable, err)
	}

	c.logger.Debug("Gemini classification",
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
