package core

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// SubjectDetector scores the subject line with the subject-bound model and
// computes the uppercase ratio over letters only
type SubjectDetector struct {
	classifier TextClassifier
	logger     *zap.Logger
}

// NewSubjectDetector creates a new subject detector
func NewSubjectDetector(classifier TextClassifier, logger *zap.Logger) *SubjectDetector {
	return &SubjectDetector{
		classifier: classifier,
		logger:     logger,
	}
}

// Category implements Detector
func (d *SubjectDetector) Category() Category {
	return CategorySubject
}

// Available implements Detector
func (d *SubjectDetector) Available() error {
	if d.classifier == nil {
		return ErrNotConfigured
	}
	return nil
}

// Evaluate implements Detector
func (d *SubjectDetector) Evaluate(ctx context.Context, email *Email) (*Finding, error) {
	subject := email.Subject

	finding := &SubjectFinding{
		UppercaseRatio:       uppercaseRatio(subject),
		Keywords:             matchKeywords(subject),
		Length:               len(subject),
		ExcessivePunctuation: strings.Count(subject, "!") > 3,
	}

	if subject != "" {
		probability, err := d.classifier.Classify(ctx, subject)
		if err != nil {
			return nil, err
		}
		finding.Probability = probability
		finding.Suspicious = probability >= suspicionThreshold
	}

	return &Finding{Category: CategorySubject, Subject: finding}, nil
}

// uppercaseRatio is uppercaseCount / letterCount, 0 when the text has no
// letters. Digits and punctuation never dilute the ratio.
func uppercaseRatio(text string) float64 {
	letters, uppers := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(uppers) / float64(letters)
}
