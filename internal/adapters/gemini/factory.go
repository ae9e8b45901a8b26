package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Factory creates the Gemini-backed classifier set
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Gemini factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifierSet builds the three field-bound classifiers over one
// shared Gemini client
func (f *Factory) CreateClassifierSet() (*core.ClassifierSet, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(geminiCfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(geminiCfg.ModelName)
	model.SetTemperature(geminiCfg.Temperature)
	model.SetMaxOutputTokens(int32(geminiCfg.MaxTokens))

	bind := func(role string) *Classifier {
		return NewClassifier(
			model,
			geminiCfg.ModelName,
			role,
			geminiCfg.MaxTextSize,
			f.logger,
			f.textProcessor,
		)
	}

	return &core.ClassifierSet{
		Body:    bind("email body"),
		Sender:  bind("sender address"),
		Subject: bind("subject line"),
	}, nil
}
