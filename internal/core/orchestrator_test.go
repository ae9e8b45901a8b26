package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedDetector drives orchestrator behavior from a test scenario
type scriptedDetector struct {
	category  Category
	available error
	finding   *Finding
	err       error
	delay     time.Duration
	panics    bool
}

func (d *scriptedDetector) Category() Category { return d.category }
func (d *scriptedDetector) Available() error   { return d.available }

func (d *scriptedDetector) Evaluate(ctx context.Context, email *Email) (*Finding, error) {
	if d.panics {
		panic("scripted panic")
	}
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return d.finding, d.err
}

func urlFinding() *Finding {
	return &Finding{Category: CategoryURL, URL: &URLFinding{Flagged: []FlaggedURL{}}}
}

func contentFinding(p float64) *Finding {
	return &Finding{Category: CategoryContent, Content: &ContentFinding{Probability: p}}
}

func runOrchestrator(t *testing.T, detectors []Detector, timeout time.Duration) *AnalysisContext {
	t.Helper()
	actx := NewAnalysisContext(&Email{Subject: "s", Body: "b"})
	o := NewOrchestrator(detectors, timeout, time.Second, zap.NewNop())
	o.Run(context.Background(), actx)
	return actx
}

func TestOrchestratorWritesAllSlots(t *testing.T) {
	actx := runOrchestrator(t, []Detector{
		&scriptedDetector{category: CategoryContent, finding: contentFinding(0.3)},
		&scriptedDetector{category: CategoryURL, finding: urlFinding()},
	}, time.Second)

	finding, ok, _ := actx.Finding(CategoryContent)
	require.True(t, ok)
	assert.Equal(t, 0.3, finding.Content.Probability)

	_, ok, _ = actx.Finding(CategoryURL)
	assert.True(t, ok)
	assert.Equal(t, 2, actx.EvaluatedCount())
}

func TestOrchestratorIsolatesFailingDetector(t *testing.T) {
	actx := runOrchestrator(t, []Detector{
		&scriptedDetector{category: CategoryContent, err: errors.New("backend exploded")},
		&scriptedDetector{category: CategoryURL, finding: urlFinding()},
	}, time.Second)

	_, ok, reason := actx.Finding(CategoryContent)
	assert.False(t, ok)
	assert.Equal(t, "backend exploded", reason)

	_, ok, _ = actx.Finding(CategoryURL)
	assert.True(t, ok, "one detector failing must not affect the others")
}

func TestOrchestratorAbsorbsPanic(t *testing.T) {
	actx := runOrchestrator(t, []Detector{
		&scriptedDetector{category: CategoryContent, panics: true},
		&scriptedDetector{category: CategoryURL, finding: urlFinding()},
	}, time.Second)

	_, ok, reason := actx.Finding(CategoryContent)
	assert.False(t, ok)
	assert.Contains(t, reason, "detector panic")

	_, ok, _ = actx.Finding(CategoryURL)
	assert.True(t, ok)
}

func TestOrchestratorTimesOutSlowDetector(t *testing.T) {
	actx := runOrchestrator(t, []Detector{
		&scriptedDetector{category: CategoryContent, finding: contentFinding(0.9), delay: time.Second},
		&scriptedDetector{category: CategoryURL, finding: urlFinding()},
	}, 20*time.Millisecond)

	_, ok, reason := actx.Finding(CategoryContent)
	assert.False(t, ok)
	assert.Equal(t, "timeout", reason)

	_, ok, _ = actx.Finding(CategoryURL)
	assert.True(t, ok)
}

func TestOrchestratorSkipsUnconfiguredDetector(t *testing.T) {
	actx := runOrchestrator(t, []Detector{
		&scriptedDetector{category: CategoryContent, available: ErrNotConfigured},
		&scriptedDetector{category: CategoryURL, finding: urlFinding()},
	}, time.Second)

	_, ok, reason := actx.Finding(CategoryContent)
	assert.False(t, ok)
	assert.Equal(t, ErrNotConfigured.Error(), reason)
	assert.Equal(t, 1, actx.EvaluatedCount())
}

func TestAnalysisContextFirstWriteWins(t *testing.T) {
	actx := NewAnalysisContext(&Email{})

	actx.SetFinding(CategoryURL, urlFinding())
	actx.SetUnavailable(CategoryURL, "late timeout")

	finding, ok, reason := actx.Finding(CategoryURL)
	assert.True(t, ok)
	assert.NotNil(t, finding)
	assert.Empty(t, reason)
}

func TestAnalysisContextUnwrittenSlotIsUnavailable(t *testing.T) {
	actx := NewAnalysisContext(&Email{})

	_, ok, _ := actx.Finding(CategorySender)
	assert.False(t, ok)
	assert.Equal(t, 0, actx.EvaluatedCount())
}
