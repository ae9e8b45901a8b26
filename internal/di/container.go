package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mailrisk/analyzer/internal/capability"
	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/factory"
	"github.com/mailrisk/analyzer/internal/logging"
	"github.com/mailrisk/analyzer/internal/ports"
	"github.com/mailrisk/analyzer/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register capability registry
	if err := container.Provide(capability.NewRegistry); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewScannerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGatewayFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register classifier set
	if err := container.Provide(func(f *factory.ClassifierFactory, registry *capability.Registry) (*core.ClassifierSet, error) {
		return f.CreateClassifierSet(registry)
	}); err != nil {
		return nil, err
	}

	// Register attachment scanner (nil when the capability is disabled)
	if err := container.Provide(func(f *factory.ScannerFactory) core.AttachmentScanner {
		return f.CreateScanner()
	}); err != nil {
		return nil, err
	}

	// Register detector set
	if err := container.Provide(func(
		cfg *config.Config,
		set *core.ClassifierSet,
		scanner core.AttachmentScanner,
		logger *zap.Logger,
	) []core.Detector {
		trustedDomains := cfg.GetStringSlice("pipeline.trusted_domains")
		if len(trustedDomains) > 0 {
			logger.Info("Loaded trusted sender domains", zap.Strings("domains", trustedDomains))
		}
		return []core.Detector{
			core.NewContentDetector(set.Body, logger),
			core.NewSubjectDetector(set.Subject, logger),
			core.NewSenderDetector(set.Sender, trustedDomains, logger),
			core.NewURLDetector(logger),
			core.NewAttachmentDetector(scanner, logger),
		}
	}); err != nil {
		return nil, err
	}

	// Register orchestrator
	if err := container.Provide(func(
		cfg *config.Config,
		detectors []core.Detector,
		logger *zap.Logger,
	) (*core.Orchestrator, error) {
		detectorTimeout, err := cfg.GetDuration("pipeline.detector_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid detector timeout: %w", err)
		}
		deadlineMargin, err := cfg.GetDuration("pipeline.deadline_margin")
		if err != nil {
			return nil, fmt.Errorf("invalid deadline margin: %w", err)
		}
		return core.NewOrchestrator(detectors, detectorTimeout, deadlineMargin, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register aggregator
	if err := container.Provide(core.NewAggregator); err != nil {
		return nil, err
	}

	// Register analysis service
	if err := container.Provide(core.NewAnalysisService); err != nil {
		return nil, err
	}

	// Register gateways
	if err := container.Provide(func(f *factory.GatewayFactory, registry *capability.Registry) []ports.EmailGateway {
		return f.CreateGateways(registry)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
