package openai

import (
	"fmt"

	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates the OpenAI-backed classifier set
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new OpenAI factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifierSet builds the three field-bound classifiers over one
// shared API client
func (f *Factory) CreateClassifierSet() (*core.ClassifierSet, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is not configured")
	}

	client := openai.NewClient(openaiCfg.APIKey)

	bind := func(role string) *Classifier {
		return NewClassifier(
			client,
			openaiCfg.ModelName,
			role,
			openaiCfg.MaxTokens,
			openaiCfg.Temperature,
			openaiCfg.MaxTextSize,
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
