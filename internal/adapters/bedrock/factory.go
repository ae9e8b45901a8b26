package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/utils"
	"go.uber.org/zap"
)

// Factory creates the Bedrock-backed classifier set
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifierSet builds the three field-bound classifiers over one
// shared Bedrock runtime client
func (f *Factory) CreateClassifierSet() (*core.ClassifierSet, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)

	bind := func(role string) *Classifier {
		return NewClassifier(
			client,
			bedrockCfg.ModelID,
			role,
			bedrockCfg.MaxTokens,
			bedrockCfg.Temperature,
			bedrockCfg.MaxTextSize,
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
