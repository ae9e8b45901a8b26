package factory

import (
	"fmt"

	"github.com/mailrisk/analyzer/internal/adapters/bedrock"
	"github.com/mailrisk/analyzer/internal/adapters/cache"
	"github.com/mailrisk/analyzer/internal/adapters/gemini"
	"github.com/mailrisk/analyzer/internal/adapters/onnx"
	"github.com/mailrisk/analyzer/internal/adapters/openai"
	"github.com/mailrisk/analyzer/internal/capability"
	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/utils"
	"go.uber.org/zap"
)

// ClassifierFactory creates the classification capability
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	cacheFactory  *CacheFactory
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(
	cfg *config.Config,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	cacheFactory *CacheFactory,
) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		cacheFactory:  cacheFactory,
	}
}

// CreateClassifierSet creates the classifier set for the configured
// provider and registers its readiness tracker. Remote providers are
// ready once constructed; the local provider becomes ready when its
// model bundles finish loading.
func (f *ClassifierFactory) CreateClassifierSet(registry *capability.Registry) (*core.ClassifierSet, error) {
	provider := f.cfg.GetClassifier().Provider
	tracker := capability.NewTracker("classifier:" + provider)
	registry.Register(tracker)

	var set *core.ClassifierSet
	var err error

	switch provider {
	case "openai":
		set, err = openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifierSet()
	case "gemini":
		set, err = gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifierSet()
	case "bedrock":
		set, err = bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifierSet()
	case "onnx":
		// The onnx factory owns the tracker transition
		return onnx.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifierSet(tracker)
	default:
		err = fmt.Errorf("unsupported classifier provider: %s", provider)
	}

	if err != nil {
		tracker.MarkFailed(err)
		return nil, err
	}
	tracker.MarkReady()

	if f.cacheFactory.IsCacheEnabled() {
		set, err = f.wrapWithCache(provider, set)
		if err != nil {
			return nil, err
		}
	}

	return set, nil
}

// wrapWithCache decorates each classifier with the score cache so repeat
// submissions of the same text skip the backend
func (f *ClassifierFactory) wrapWithCache(provider string, set *core.ClassifierSet) (*core.ClassifierSet, error) {
	scoreCache, err := f.cacheFactory.CreateScoreCache()
	if err != nil {
		return nil, fmt.Errorf("failed to create score cache: %w", err)
	}
	ttl, err := f.cacheFactory.GetCacheTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}

	wrap := func(inner core.TextClassifier, role string) core.TextClassifier {
		return cache.NewCachingClassifier(inner, scoreCache, provider+":"+role, ttl, f.logger)
	}

	f.logger.Info("Classification score caching enabled",
		zap.String("provider", provider),
		zap.Duration("ttl", ttl))

	return &core.ClassifierSet{
		Body:    wrap(set.Body, "body"),
		Sender:  wrap(set.Sender, "sender"),
		Subject: wrap(set.Subject, "subject"),
	}, nil
}
