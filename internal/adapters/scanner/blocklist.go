package scanner

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/mailrisk/analyzer/internal/core"
	"go.uber.org/zap"
)

// BlocklistScanner flags attachments whose filenames match an
// organization-level blocklist of glob patterns
type BlocklistScanner struct {
	patterns []string
	logger   *zap.Logger
}

// NewBlocklistScanner creates a scanner over a set of glob patterns.
// Matching is case-insensitive against the bare filename.
func NewBlocklistScanner(patterns []string, logger *zap.Logger) *BlocklistScanner {
	normalized := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			normalized = append(normalized, p)
		}
	}
	return &BlocklistScanner{
		patterns: normalized,
		logger:   logger,
	}
}

// Scan implements core.AttachmentScanner
func (s *BlocklistScanner) Scan(ctx context.Context, att *core.Attachment) (*core.ScanVerdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.ToLower(filepath.Base(att.Filename))
	for _, pattern := range s.patterns {
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			s.logger.Warn("Invalid blocklist pattern skipped", zap.String("pattern", pattern))
			continue
		}
		if matched {
			return &core.ScanVerdict{
				Malicious: true,
				Detail:    "filename matches blocked pattern " + pattern,
			}, nil
		}
	}

	return &core.ScanVerdict{Malicious: false}, nil
}
