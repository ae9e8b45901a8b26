package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Orchestrator runs the detector set against one context. Detectors read
// only the immutable input and write disjoint slots, so they run
// concurrently. A failing detector is isolated: its slot becomes
// unavailable and every other detector still completes.
type Orchestrator struct {
	detectors       []Detector
	detectorTimeout time.Duration
	deadlineMargin  time.Duration
	logger          *zap.Logger
}

// NewOrchestrator creates a new pipeline orchestrator
func NewOrchestrator(detectors []Detector, detectorTimeout, deadlineMargin time.Duration, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		detectors:       detectors,
		detectorTimeout: detectorTimeout,
		deadlineMargin:  deadlineMargin,
		logger:          logger,
	}
}

// Run executes every detector exactly once and returns when all slots are
// written. There is no retry within a request: a failed detector is final.
func (o *Orchestrator) Run(ctx context.Context, actx *AnalysisContext) {
	// The request deadline is a safety margin over the slowest detector;
	// exceeding it still yields a best-effort report from completed slots.
	reqCtx, cancel := context.WithTimeout(ctx, o.detectorTimeout+o.deadlineMargin)
	defer cancel()

	var wg sync.WaitGroup
	for _, det := range o.detectors {
		// Detectors whose capability was never configured are skipped up
		// front; this is a distinct outcome from a runtime failure.
		if err := det.Available(); err != nil {
			actx.SetUnavailable(det.Category(), err.Error())
			o.logger.Info("Detector skipped",
				zap.String("category", det.Category().String()),
				zap.String("reason", err.Error()))
			continue
		}

		wg.Add(1)
		go func(det Detector) {
			defer wg.Done()
			o.runDetector(reqCtx, det, actx)
		}(det)
	}
	wg.Wait()
}

// runDetector evaluates one detector under its time budget, absorbing
// panics and errors into the unavailable state
func (o *Orchestrator) runDetector(ctx context.Context, det Detector, actx *AnalysisContext) {
	dctx, cancel := context.WithTimeout(ctx, o.detectorTimeout)
	defer cancel()

	type outcome struct {
		finding *Finding
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("detector panic: %v", r)}
			}
		}()
		finding, err := det.Evaluate(dctx, actx.Email)
		done <- outcome{finding: finding, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			reason := failureReason(out.err)
			actx.SetUnavailable(det.Category(), reason)
			o.logger.Warn("Detector failed",
				zap.String("category", det.Category().String()),
				zap.String("reason", reason),
				zap.Error(out.err))
			return
		}
		actx.SetFinding(det.Category(), out.finding)
	case <-dctx.Done():
		actx.SetUnavailable(det.Category(), "timeout")
		o.logger.Warn("Detector timed out",
			zap.String("category", det.Category().String()),
			zap.Duration("timeout", o.detectorTimeout))
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrCapabilityUnavailable):
		return err.Error()
	default:
		return err.Error()
	}
}
