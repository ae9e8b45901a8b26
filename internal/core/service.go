package core

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisService is the core entry point: one call runs the full pipeline
// over one email and returns the aggregated report. Detector-level failures
// are absorbed into the report as unavailable categories, so Analyze never
// fails for reasons inside the pipeline.
type AnalysisService struct {
	orchestrator *Orchestrator
	aggregator   *Aggregator
	logger       *zap.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(orchestrator *Orchestrator, aggregator *Aggregator, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		orchestrator: orchestrator,
		aggregator:   aggregator,
		logger:       logger,
	}
}

// Analyze runs the detector set against the email and reduces the findings
// into a risk report
func (s *AnalysisService) Analyze(ctx context.Context, email *Email) *RiskReport {
	processingID := uuid.NewString()

	actx := NewAnalysisContext(email)
	s.orchestrator.Run(ctx, actx)

	report := s.aggregator.Build(actx)
	report.ProcessingID = processingID

	s.logger.Info("Email analyzed",
		zap.String("processing_id", processingID),
		zap.Int("overall_score", report.OverallScore),
		zap.String("risk_band", string(report.Band)),
		zap.Int("evaluated_categories", actx.EvaluatedCount()))

	return report
}
