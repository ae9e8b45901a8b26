package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/utils"
	"go.uber.org/zap"
)

// Classifier scores one email field for phishing likelihood using Amazon
// Bedrock. Each instance is bound to one field role.
type Classifier struct {
	client        *bedrockruntime.Client
	modelID       string
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
	client *bedrockruntime.Client,
	modelID string,
	role string,
	maxTokens int,
	temperature float32,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Classifier {
	return &Classifier{
		client:        client,
		modelID:       modelID,
		role:          role,
		maxTokens:     maxTokens,
		temperature:   temperature,
		maxTextSize:   maxTextSize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

func (c *Classifier) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.")
}

func (c *Classifier) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}

// Classify implements core.TextClassifier
func (c *Classifier) Classify(ctx context.Context, text string) (float64, error) {
	prepared := c.textProcessor.Prepare(text, c.maxTextSize)
	prompt := fmt.Sprintf(promptFormat, c.role, c.role, c.role, prepared)

	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
		})
	}
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: bedrock invoke model: %v", core.ErrCapabilityUnavailable, err)
	}

	responseText, err := c.extractText(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrCapabilityUnavailable, err)
	}

	score, err := parseScore(responseText)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrCapabilityUnavailable, err)
	}

	c.logger.Debug("Bedrock classification",
		zap.String("role", c.role),
		zap.Float64("score", score))

	return score, nil
}

// extractText pulls the model output text out of the provider-specific
// response envelope
func (c *Classifier) extractText(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %v", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %v", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %v", err)
	}
	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	default:
		return string(body), nil
	}
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
