package factory

import (
	"github.com/mailrisk/analyzer/internal/adapters/scanner"
	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"go.uber.org/zap"
)

// ScannerFactory creates the optional deep attachment scanner
type ScannerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewScannerFactory creates a new scanner factory
func NewScannerFactory(cfg *config.Config, logger *zap.Logger) *ScannerFactory {
	return &ScannerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateScanner creates the configured scanner, or nil when the
// capability is disabled. A nil scanner degrades detection depth, not
// pipeline correctness.
func (f *ScannerFactory) CreateScanner() core.AttachmentScanner {
	if !f.cfg.GetBool("scanner.enabled") {
		return nil
	}

	patterns := f.cfg.GetStringSlice("scanner.blocked_patterns")
	f.logger.Info("Attachment blocklist scanner enabled", zap.Strings("patterns", patterns))
	return scanner.NewBlocklistScanner(patterns, f.logger)
}
