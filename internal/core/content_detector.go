package core

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// suspicionThreshold is the fixed decision threshold applied to every
// classification probability
const suspicionThreshold = 0.5

// matchKeywords returns the suspicious keywords present in text
func matchKeywords(text string) []string {
	matched := []string{}
	lower := strings.ToLower(text)
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// ContentDetector scores the email body with the body-bound classification
// model and records local content heuristics alongside the probability
type ContentDetector struct {
	classifier TextClassifier
	logger     *zap.Logger
}

// NewContentDetector creates a new content detector
func NewContentDetector(classifier TextClassifier, logger *zap.Logger) *ContentDetector {
	return &ContentDetector{
		classifier: classifier,
		logger:     logger,
	}
}

// Category implements Detector
func (d *ContentDetector) Category() Category {
	return CategoryContent
}

// Available implements Detector
func (d *ContentDetector) Available() error {
	if d.classifier == nil {
		return ErrNotConfigured
	}
	return nil
}

// Evaluate implements Detector
func (d *ContentDetector) Evaluate(ctx context.Context, email *Email) (*Finding, error) {
	body := email.Body
	lower := strings.ToLower(body)

	finding := &ContentFinding{
		Keywords:   matchKeywords(body),
		HasHTML:    strings.Contains(lower, "<html") || strings.Contains(lower, "<body"),
		HasImages:  strings.Contains(lower, "<img") || strings.Contains(lower, "[image:"),
		BodyLength: len(body),
		WordCount:  len(strings.Fields(body)),
	}

	// An empty body has nothing to classify and is not suspicious
	if body != "" {
		probability, err := d.classifier.Classify(ctx, body)
		if err != nil {
			return nil, err
		}
		finding.Probability = probability
		finding.Suspicious = probability >= suspicionThreshold

		d.logger.Debug("Body classified",
			zap.Float64("probability", probability),
			zap.Bool("suspicious", finding.Suspicious))
	}

	return &Finding{Category: CategoryContent, Content: finding}, nil
}
