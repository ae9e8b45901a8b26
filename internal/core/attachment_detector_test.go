package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func evaluateAttachments(t *testing.T, scanner AttachmentScanner, atts ...Attachment) *AttachmentFinding {
	t.Helper()
	detector := NewAttachmentDetector(scanner, zap.NewNop())
	finding, err := detector.Evaluate(context.Background(), &Email{Attachments: atts})
	require.NoError(t, err)
	require.NotNil(t, finding.Attachment)
	return finding.Attachment
}

func TestAttachmentDetectorFlagsExecutable(t *testing.T) {
	f := evaluateAttachments(t, nil, Attachment{
		Filename:            "invoice.exe",
		SizeBytes:           2048,
		DeclaredContentType: "application/x-msdownload",
	})

	assert.True(t, f.HasExecutables)
	assert.False(t, f.HasScripts)
	assert.False(t, f.HasMismatch)
	assert.Equal(t, []string{".exe"}, f.SuspiciousExtensions)
	require.Len(t, f.Files, 1)
	assert.Equal(t, AttachmentExecutable, f.Files[0].Category)
}

func TestAttachmentDetectorFlagsScript(t *testing.T) {
	f := evaluateAttachments(t, nil, Attachment{Filename: "update.vbs"})

	assert.True(t, f.HasScripts)
	assert.False(t, f.HasExecutables)
	assert.Equal(t, []string{".vbs"}, f.SuspiciousExtensions)
}

func TestAttachmentDetectorFlagsContentTypeMismatch(t *testing.T) {
	f := evaluateAttachments(t, nil, Attachment{
		Filename:            "report.pdf",
		DeclaredContentType: "application/x-msdownload",
	})

	assert.True(t, f.HasMismatch)
	assert.False(t, f.HasExecutables)
	require.Len(t, f.Files, 1)
	assert.True(t, f.Files[0].ContentTypeMismatch)
	assert.Equal(t, []string{".pdf"}, f.SuspiciousExtensions)
}

func TestAttachmentDetectorBenignDocument(t *testing.T) {
	f := evaluateAttachments(t, nil, Attachment{
		Filename:            "notes.txt",
		SizeBytes:           128,
		DeclaredContentType: "text/plain",
	})

	assert.False(t, f.HasExecutables)
	assert.False(t, f.HasScripts)
	assert.False(t, f.HasMismatch)
	assert.Empty(t, f.SuspiciousExtensions)
	assert.Equal(t, AttachmentDocument, f.Files[0].Category)
}

func TestAttachmentDetectorUnknownTypeNeverMismatches(t *testing.T) {
	f := evaluateAttachments(t, nil, Attachment{
		Filename:            "data.bin",
		DeclaredContentType: "application/octet-stream",
	})

	assert.False(t, f.HasMismatch)
	assert.Equal(t, AttachmentOther, f.Files[0].Category)
}

func TestAttachmentDetectorNoAttachments(t *testing.T) {
	f := evaluateAttachments(t, nil)

	assert.Equal(t, 0, f.Count)
	assert.Empty(t, f.Files)
	assert.False(t, f.DeepScanPerformed)
	assert.Equal(t, "capability not configured", f.DeepScanNote)
}

func TestAttachmentDetectorTotalsSizes(t *testing.T) {
	f := evaluateAttachments(t, nil,
		Attachment{Filename: "a.pdf", SizeBytes: 100, DeclaredContentType: "application/pdf"},
		Attachment{Filename: "b.pdf", SizeBytes: 250, DeclaredContentType: "application/pdf"},
	)

	assert.Equal(t, 2, f.Count)
	assert.Equal(t, int64(350), f.TotalSizeBytes)
}

type fakeScanner struct {
	verdicts map[string]*ScanVerdict
	err      error
}

func (s *fakeScanner) Scan(ctx context.Context, att *Attachment) (*ScanVerdict, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.verdicts[att.Filename]; ok {
		return v, nil
	}
	return &ScanVerdict{}, nil
}

func TestAttachmentDetectorDeepScanVerdict(t *testing.T) {
	scanner := &fakeScanner{verdicts: map[string]*ScanVerdict{
		"dropper.zip": {Malicious: true, Detail: "known dropper"},
	}}

	f := evaluateAttachments(t, scanner, Attachment{Filename: "dropper.zip"})

	assert.True(t, f.DeepScanPerformed)
	assert.True(t, f.HasExecutables)
	assert.Equal(t, "known dropper", f.DeepScanNote)
}

func TestAttachmentDetectorDeepScanFailureDegradesNote(t *testing.T) {
	scanner := &fakeScanner{err: errors.New("scanner offline")}

	f := evaluateAttachments(t, scanner, Attachment{Filename: "a.pdf", DeclaredContentType: "application/pdf"})

	assert.False(t, f.DeepScanPerformed)
	assert.Equal(t, "scan failed: scanner offline", f.DeepScanNote)
	assert.False(t, f.HasExecutables, "metadata classification is unaffected by scan failure")
}
