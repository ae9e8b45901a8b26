package onnx

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/mailrisk/analyzer/internal/capability"
	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/utils"
	"go.uber.org/zap"
)

// Factory creates the locally-hosted classifier set. Model bundles take
// seconds to load, so the load runs in the background and the returned
// classifiers fail with a capability error until it completes.
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new local model factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifierSet returns lazy handles to the three models and starts
// the bundle load; tracker transitions to ready when all three are up
func (f *Factory) CreateClassifierSet(tracker *capability.Tracker) (*core.ClassifierSet, error) {
	onnxCfg := f.cfg.GetONNX()

	body := f.newLazyClassifier("body", onnxCfg.MaxTextSize)
	sender := f.newLazyClassifier("sender", onnxCfg.MaxTextSize)
	subject := f.newLazyClassifier("subject", onnxCfg.MaxTextSize)

	go f.loadBundles(tracker, onnxCfg, body, sender, subject)

	return &core.ClassifierSet{
		Body:    body,
		Sender:  sender,
		Subject: subject,
	}, nil
}

func (f *Factory) loadBundles(tracker *capability.Tracker, cfg config.ONNXConfig, body, sender, subject *lazyClassifier) {
	bundles := []struct {
		classifier *lazyClassifier
		dir        string
	}{
		{body, cfg.BodyBundle},
		{sender, cfg.SenderBundle},
		{subject, cfg.SubjectBundle},
	}

	for _, b := range bundles {
		f.logger.Info("Loading classification model bundle",
			zap.String("role", b.classifier.role),
			zap.String("bundle", b.dir))

		model, err := LoadModel(b.dir, cfg.SequenceLength)
		if err != nil {
			f.logger.Error("Failed to load model bundle",
				zap.String("role", b.classifier.role),
				zap.String("bundle", b.dir),
				zap.Error(err))
			tracker.MarkFailed(err)
			return
		}
		b.classifier.model.Store(model)
	}

	tracker.MarkReady()
	f.logger.Info("All classification model bundles loaded")
}

func (f *Factory) newLazyClassifier(role string, maxTextSize int) *lazyClassifier {
	return &lazyClassifier{
		role:          role,
		maxTextSize:   maxTextSize,
		textProcessor: f.textProcessor,
	}
}

// lazyClassifier delegates to its model once loaded; before that every
// call fails with a distinguishable capability error
type lazyClassifier struct {
	role          string
	maxTextSize   int
	textProcessor *utils.TextProcessor
	model         atomic.Pointer[Model]
}

// Classify implements core.TextClassifier
func (l *lazyClassifier) Classify(ctx context.Context, text string) (float64, error) {
	model := l.model.Load()
	if model == nil {
		return 0, fmt.Errorf("%w: %s model still initializing", core.ErrCapabilityUnavailable, l.role)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	score, err := model.Score(l.textProcessor.Prepare(text, l.maxTextSize))
	if err != nil {
		return 0, fmt.Errorf("%w: %s model inference: %v", core.ErrCapabilityUnavailable, l.role, err)
	}
	return score, nil
}
