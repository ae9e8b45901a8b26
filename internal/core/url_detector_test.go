package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func evaluateURLs(t *testing.T, subject, body string) *URLFinding {
	t.Helper()
	detector := NewURLDetector(zap.NewNop())
	finding, err := detector.Evaluate(context.Background(), &Email{Subject: subject, Body: body})
	require.NoError(t, err)
	require.NotNil(t, finding.URL)
	return finding.URL
}

func TestURLDetectorFlagsShortener(t *testing.T) {
	f := evaluateURLs(t, "", "follow http://bit.ly/abc123 now")

	require.Len(t, f.Flagged, 1)
	assert.Equal(t, "http://bit.ly/abc123", f.Flagged[0].URL)
	assert.Equal(t, []string{URLReasonShortened}, f.Flagged[0].Reasons)
}

func TestURLDetectorCleanHostNotFlagged(t *testing.T) {
	f := evaluateURLs(t, "", "docs at https://example.com/guide")

	assert.True(t, f.HasBodyURLs)
	assert.Equal(t, 1, f.BodyURLCount)
	assert.Empty(t, f.Flagged)
}

func TestURLDetectorFlagsIPLiteralHost(t *testing.T) {
	f := evaluateURLs(t, "", "login at http://203.0.113.5/account")

	require.Len(t, f.Flagged, 1)
	assert.Equal(t, []string{URLReasonIPLiteral}, f.Flagged[0].Reasons)
}

func TestURLDetectorFlagsPunycodeHost(t *testing.T) {
	f := evaluateURLs(t, "", "see https://xn--pple-43d.com/login")

	require.Len(t, f.Flagged, 1)
	assert.Contains(t, f.Flagged[0].Reasons, URLReasonHomograph)
}

func TestURLDetectorFlagsDeepSubdomain(t *testing.T) {
	f := evaluateURLs(t, "", "https://a.b.c.d.secure.example.com/x")

	require.Len(t, f.Flagged, 1)
	assert.Contains(t, f.Flagged[0].Reasons, URLReasonDeepSubdomain)
}

func TestURLDetectorFlagsDigitMixedLabel(t *testing.T) {
	f := evaluateURLs(t, "", "verify at http://p4yp4l.com/verify")

	require.Len(t, f.Flagged, 1)
	assert.Contains(t, f.Flagged[0].Reasons, URLReasonSuspiciousChars)
}

func TestURLDetectorNormalizesAndDeduplicates(t *testing.T) {
	body := "go to HTTP://BIT.LY/x and http://bit.ly:80/x again"
	f := evaluateURLs(t, "", body)

	assert.Equal(t, 2, f.BodyURLCount)
	require.Len(t, f.Flagged, 1, "case and default-port variants collapse to one URL")
	assert.Equal(t, "http://bit.ly/x", f.Flagged[0].URL)
}

func TestURLDetectorCountsSubjectAndBodySeparately(t *testing.T) {
	f := evaluateURLs(t, "see www.example.com", "and https://example.org too")

	assert.True(t, f.HasSubjectURLs)
	assert.True(t, f.HasBodyURLs)
	assert.Equal(t, 1, f.SubjectURLCount)
	assert.Equal(t, 1, f.BodyURLCount)
}

func TestURLDetectorTrimsTrailingPunctuation(t *testing.T) {
	f := evaluateURLs(t, "", "check https://example.com/page.")

	assert.Equal(t, 1, f.BodyURLCount)
	assert.Empty(t, f.Flagged)
}

func TestURLDetectorNoURLs(t *testing.T) {
	f := evaluateURLs(t, "meeting notes", "see the attached agenda")

	assert.False(t, f.HasSubjectURLs)
	assert.False(t, f.HasBodyURLs)
	assert.Empty(t, f.Flagged)
}

func TestURLDetectorReportsMultipleReasons(t *testing.T) {
	f := evaluateURLs(t, "", "http://xn--x1.a.b.c.d.e4f5.example.com/x")

	require.Len(t, f.Flagged, 1)
	assert.Contains(t, f.Flagged[0].Reasons, URLReasonHomograph)
	assert.Contains(t, f.Flagged[0].Reasons, URLReasonDeepSubdomain)
	assert.Contains(t, f.Flagged[0].Reasons, URLReasonSuspiciousChars)
}
