package scanner

import (
	"context"
	"testing"

	"github.com/mailrisk/analyzer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBlocklistScannerMatchesPattern(t *testing.T) {
	s := NewBlocklistScanner([]string{"*.exe", "invoice*.zip"}, zap.NewNop())

	verdict, err := s.Scan(context.Background(), &core.Attachment{Filename: "Invoice-2024.ZIP"})
	require.NoError(t, err)
	assert.True(t, verdict.Malicious)
	assert.Contains(t, verdict.Detail, "invoice*.zip")
}

func TestBlocklistScannerCleanFile(t *testing.T) {
	s := NewBlocklistScanner([]string{"*.exe"}, zap.NewNop())

	verdict, err := s.Scan(context.Background(), &core.Attachment{Filename: "notes.txt"})
	require.NoError(t, err)
	assert.False(t, verdict.Malicious)
}

func TestBlocklistScannerMatchesBareFilename(t *testing.T) {
	s := NewBlocklistScanner([]string{"*.exe"}, zap.NewNop())

	verdict, err := s.Scan(context.Background(), &core.Attachment{Filename: "path/to/setup.exe"})
	require.NoError(t, err)
	assert.True(t, verdict.Malicious)
}

func TestBlocklistScannerIgnoresEmptyPatterns(t *testing.T) {
	s := NewBlocklistScanner([]string{"", "  "}, zap.NewNop())

	verdict, err := s.Scan(context.Background(), &core.Attachment{Filename: "anything.exe"})
	require.NoError(t, err)
	assert.False(t, verdict.Malicious)
}
