package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, classifier TextClassifier, trustedDomains []string) *AnalysisService {
	t.Helper()
	logger := zap.NewNop()
	detectors := []Detector{
		NewContentDetector(classifier, logger),
		NewSubjectDetector(classifier, logger),
		NewSenderDetector(classifier, trustedDomains, logger),
		NewURLDetector(logger),
		NewAttachmentDetector(nil, logger),
	}
	orchestrator := NewOrchestrator(detectors, 5*time.Second, time.Second, logger)
	return NewAnalysisService(orchestrator, NewAggregator(logger), logger)
}

func TestServicePhishingEmailEndToEnd(t *testing.T) {
	service := newTestService(t, &fakeClassifier{score: 0.85}, nil)

	report := service.Analyze(context.Background(), &Email{
		Subject: "URGENT: Your account will be closed",
		Body:    "Click here to verify your password: http://bit.ly/acct",
		From:    Address{Address: "security@examp1e-login.test"},
		To:      []string{"victim@example.com"},
	})

	assert.NotEmpty(t, report.ProcessingID)
	assert.False(t, report.AnalyzedAt.IsZero())

	require.True(t, report.Subject.Available)
	assert.Contains(t, report.Subject.Finding.Keywords, "urgent")
	assert.True(t, report.Subject.Finding.Suspicious)

	require.True(t, report.Content.Available)
	assert.Contains(t, report.Content.Finding.Keywords, "click here")

	require.True(t, report.URL.Available)
	require.Len(t, report.URL.Finding.Flagged, 1)
	assert.Contains(t, report.URL.Finding.Flagged[0].Reasons, URLReasonShortened)

	assert.Greater(t, report.OverallScore, 70)
	assert.Equal(t, RiskBandHigh, report.Band)
	assert.Contains(t, report.Security.Flags, FlagHighRisk)
}

func TestServiceBenignEmailEndToEnd(t *testing.T) {
	service := newTestService(t, &fakeClassifier{score: 0.05}, nil)

	report := service.Analyze(context.Background(), &Email{
		Subject: "Lunch on Friday?",
		Body:    "Does noon work for everyone?",
		From:    Address{Address: "colleague@example.com"},
		To:      []string{"team@example.com"},
	})

	assert.Less(t, report.OverallScore, 40)
	assert.Equal(t, RiskBandSafe, report.Band)
	assert.Empty(t, report.Security.Indicators)
	assert.Empty(t, report.Security.Flags)
}

func TestServiceClassifierOutageStillProducesReport(t *testing.T) {
	classifier := &fakeClassifier{err: ErrCapabilityUnavailable}
	service := newTestService(t, classifier, nil)

	report := service.Analyze(context.Background(), &Email{
		Subject: "hello",
		Body:    "see http://bit.ly/x",
		From:    Address{Address: "a@example.com"},
	})

	assert.False(t, report.Content.Available)
	assert.False(t, report.Subject.Available)
	assert.False(t, report.Sender.Available)
	require.True(t, report.URL.Available, "heuristic detectors survive a classifier outage")
	require.True(t, report.Attachment.Available)

	// URL weight renormalized over URL+attachment: 0.2/0.3*100 = 67
	assert.Equal(t, 67, report.OverallScore)
	assert.Equal(t, RiskBandMedium, report.Band)
}

func TestServiceUnconfiguredClassifierSkipsCategories(t *testing.T) {
	service := newTestService(t, nil, nil)

	report := service.Analyze(context.Background(), &Email{
		Subject: "hi",
		Body:    "plain text",
		From:    Address{Address: "a@example.com"},
	})

	assert.False(t, report.Content.Available)
	assert.Equal(t, ErrNotConfigured.Error(), report.Content.UnavailableReason)
	assert.True(t, report.URL.Available)
	assert.True(t, report.Attachment.Available)
}
