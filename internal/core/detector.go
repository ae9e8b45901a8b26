package core

import (
	"context"
)

// Detector evaluates one risk category over the immutable email input.
// Implementations are self-contained: they read the email, never another
// detector's output, and must be safe to run concurrently with the rest
// of the detector set.
type Detector interface {
	// Category names the result slot this detector owns
	Category() Category

	// Available reports whether the detector can run at all. A non-nil
	// error means a required capability is not configured and the
	// orchestrator skips the detector up front instead of running it.
	Available() error

	// Evaluate produces the detector's finding. Capability failures are
	// returned as errors and absorbed by the orchestrator; they never
	// abort the pipeline.
	Evaluate(ctx context.Context, email *Email) (*Finding, error)
}

// suspiciousKeywords are phrases common in phishing lures, matched
// case-insensitively in both subjects and bodies
var suspiciousKeywords = []string{
	"urgent",
	"click here",
	"act now",
	"limited time",
	"winner",
	"congratulations",
	"free",
	"guaranteed",
	"risk-free",
	"verify",
	"suspended",
	"password",
}
