package core

import (
	"context"
	"errors"
)

// ErrCapabilityUnavailable marks failures of an external capability
// (classification backend down, still initializing, malformed output).
// A capability must fail with a distinguishable error, never silently
// return a score of zero.
var ErrCapabilityUnavailable = errors.New("capability unavailable")

// ErrNotConfigured is returned by Available when a detector's required
// capability was never configured, as opposed to configured-but-failing
var ErrNotConfigured = errors.New("capability not configured")

// TextClassifier scores a single text field for phishing likelihood.
// Implementations are bound to one model (body, sender or subject).
type TextClassifier interface {
	// Classify returns a probability in [0,1]
	Classify(ctx context.Context, text string) (float64, error)
}

// ClassifierSet binds the three independent classification models
type ClassifierSet struct {
	Body    TextClassifier
	Sender  TextClassifier
	Subject TextClassifier
}

// ScanVerdict is the result of a deep attachment scan
type ScanVerdict struct {
	Malicious bool
	Detail    string
}

// AttachmentScanner is the optional deep-scanning capability. The
// attachment classifier never requires it; a nil scanner degrades
// detection depth, not pipeline correctness.
type AttachmentScanner interface {
	Scan(ctx context.Context, att *Attachment) (*ScanVerdict, error)
}

// ScoreCache stores classification scores keyed by a model/text digest
type ScoreCache interface {
	// Get retrieves a cached entry by key
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
