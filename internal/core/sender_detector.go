package core

import (
	"context"
	"net/mail"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SenderDetector scores the sender with the sender-bound model and records
// address anomalies (invalid syntax, Reply-To mismatch). Senders from
// trusted domains skip classification and score zero.
type SenderDetector struct {
	classifier     TextClassifier
	trustedDomains []string
	logger         *zap.Logger
}

// NewSenderDetector creates a new sender detector. Trusted domains are
// normalized to lowercase once.
func NewSenderDetector(classifier TextClassifier, trustedDomains []string, logger *zap.Logger) *SenderDetector {
	normalized := make([]string, 0, len(trustedDomains))
	for _, domain := range trustedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalized = append(normalized, domain)
		}
	}
	return &SenderDetector{
		classifier:     classifier,
		trustedDomains: normalized,
		logger:         logger,
	}
}

// Category implements Detector
func (d *SenderDetector) Category() Category {
	return CategorySender
}

// Available implements Detector
func (d *SenderDetector) Available() error {
	if d.classifier == nil {
		return ErrNotConfigured
	}
	return nil
}

// Evaluate implements Detector
func (d *SenderDetector) Evaluate(ctx context.Context, email *Email) (*Finding, error) {
	from := email.From

	finding := &SenderFinding{
		Address:        from.Address,
		DisplayName:    from.DisplayName,
		HasDisplayName: from.DisplayName != "",
		Valid:          addressPattern.MatchString(from.Address),
		ReplyTo:        email.ReplyTo,
	}

	if at := strings.LastIndex(from.Address, "@"); at > 0 && at < len(from.Address)-1 {
		finding.LocalPart = from.Address[:at]
		finding.Domain = strings.ToLower(from.Address[at+1:])
	}

	if email.ReplyTo != "" {
		replyAddr := email.ReplyTo
		if parsed, err := mail.ParseAddress(email.ReplyTo); err == nil {
			replyAddr = parsed.Address
		}
		finding.ReplyToMismatch = !strings.EqualFold(replyAddr, from.Address)
	}

	if d.isTrusted(finding.Domain) {
		d.logger.Debug("Sender domain is trusted, skipping classification",
			zap.String("domain", finding.Domain))
		finding.TrustedDomain = true
		return &Finding{Category: CategorySender, Sender: finding}, nil
	}

	if from.Address != "" {
		probability, err := d.classifier.Classify(ctx, formatSender(from))
		if err != nil {
			return nil, err
		}
		finding.Probability = probability
		finding.Suspicious = probability >= suspicionThreshold
	}

	return &Finding{Category: CategorySender, Sender: finding}, nil
}

func (d *SenderDetector) isTrusted(domain string) bool {
	if domain == "" {
		return false
	}
	for _, trusted := range d.trustedDomains {
		if trusted == domain {
			return true
		}
	}
	return false
}

// formatSender renders the sender the way it appeared on the wire so the
// model sees the display name alongside the address
func formatSender(from Address) string {
	if from.DisplayName != "" {
		return from.DisplayName + " <" + from.Address + ">"
	}
	return from.Address
}
