package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mailrisk/analyzer/internal/capability"
	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClassifier struct {
	score float64
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (float64, error) {
	return s.score, nil
}

func newTestServer(t *testing.T, score float64) *Server {
	t.Helper()
	logger := zap.NewNop()

	classifier := &stubClassifier{score: score}
	detectors := []core.Detector{
		core.NewContentDetector(classifier, logger),
		core.NewSubjectDetector(classifier, logger),
		core.NewSenderDetector(classifier, nil, logger),
		core.NewURLDetector(logger),
		core.NewAttachmentDetector(nil, logger),
	}

	orchestrator := core.NewOrchestrator(detectors, 5*time.Second, time.Second, logger)
	service := core.NewAnalysisService(orchestrator, core.NewAggregator(logger), logger)

	registry := capability.NewRegistry()
	tracker := capability.NewTracker("classifier")
	tracker.MarkReady()
	registry.Register(tracker)

	return NewServer(service, registry, config.ServerConfig{
		ListenAddress: "127.0.0.1:0",
		MaxBatchSize:  5,
	}, logger)
}

func TestAnalyzeReturnsReport(t *testing.T) {
	srv := newTestServer(t, 0.9)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	body := `{
		"subject": "URGENT: verify your account",
		"body": "Click here to verify: http://bit.ly/x1",
		"from": "support@examp1e-login.com",
		"to": ["victim@example.com"]
	}`

	resp, err := http.Post(ts.URL+"/analyze", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report core.RiskReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))

	assert.NotEmpty(t, report.ProcessingID)
	assert.True(t, report.Subject.Available)
	assert.True(t, report.URL.Available)
	assert.NotEmpty(t, report.URL.Finding.Flagged)
	assert.Greater(t, report.OverallScore, 70)
	assert.Equal(t, core.RiskBandHigh, report.Band)
	assert.Contains(t, report.Security.Flags, core.FlagHighRisk)
}

func TestAnalyzeAcceptsSingleRecipientString(t *testing.T) {
	srv := newTestServer(t, 0.1)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	body := `{"subject": "hi", "body": "see you tomorrow", "from": "a@example.com", "to": "b@example.com"}`

	resp, err := http.Post(ts.URL+"/analyze", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report core.RiskReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 1, report.Recipients.ToCount)
}

func TestAnalyzeRejectsInvalidJSON(t *testing.T) {
	srv := newTestServer(t, 0.5)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/analyze", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeRejectsEmptyEmail(t *testing.T) {
	srv := newTestServer(t, 0.5)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/analyze", "application/json", strings.NewReader(`{"subject": "", "body": "  "}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatchIsolatesItemFailures(t *testing.T) {
	srv := newTestServer(t, 0.2)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	body := `{"emails": [
		{"subject": "meeting notes", "body": "agenda attached", "from": "a@example.com"},
		{"subject": "", "body": ""},
		{"subject": "lunch", "body": "noon?", "from": "b@example.com"}
	]}`

	resp, err := http.Post(ts.URL+"/analyze/batch", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var batch batchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&batch))

	require.Len(t, batch.Results, 3)
	assert.NotNil(t, batch.Results[0].Report)
	assert.Empty(t, batch.Results[0].Error)
	assert.Nil(t, batch.Results[1].Report)
	assert.NotEmpty(t, batch.Results[1].Error)
	assert.NotNil(t, batch.Results[2].Report)
}

func TestBatchRejectsOversizedBatch(t *testing.T) {
	srv := newTestServer(t, 0.2)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	items := make([]string, 6)
	for i := range items {
		items[i] = `{"subject": "s", "body": "b", "from": "a@example.com"}`
	}
	body := `{"emails": [` + strings.Join(items, ",") + `]}`

	resp, err := http.Post(ts.URL+"/analyze/batch", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthReportsReady(t *testing.T) {
	srv := newTestServer(t, 0.2)
	srv.startedAt = time.Now()
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.True(t, health.Ready)
	assert.Equal(t, "ready", health.Capabilities["classifier"])
}

func TestHealthReportsInitializing(t *testing.T) {
	logger := zap.NewNop()
	registry := capability.NewRegistry()
	registry.Register(capability.NewTracker("classifier"))

	detectors := []core.Detector{core.NewURLDetector(logger)}
	orchestrator := core.NewOrchestrator(detectors, time.Second, time.Second, logger)
	service := core.NewAnalysisService(orchestrator, core.NewAggregator(logger), logger)

	srv := NewServer(service, registry, config.ServerConfig{}, logger)
	srv.startedAt = time.Now()
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.False(t, health.Ready)
	assert.Equal(t, "initializing", health.Capabilities["classifier"])
}
