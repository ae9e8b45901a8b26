package core

import (
	"fmt"
	"math"
	"net/mail"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Category weights. Chosen for this implementation and documented here as
// the single source of truth; recalibrate against labeled data before
// trusting the absolute scores.
var categoryWeights = map[Category]float64{
	CategoryContent:    0.30,
	CategorySubject:    0.20,
	CategorySender:     0.20,
	CategoryURL:        0.20,
	CategoryAttachment: 0.10,
}

// aggregationOrder fixes the deterministic order of indicator emission
var aggregationOrder = []Category{
	CategorySubject,
	CategoryContent,
	CategorySender,
	CategoryURL,
	CategoryAttachment,
}

// Aggregator reduces a fully-orchestrated context into a RiskReport
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates a new risk aggregator
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Build produces the final report. Weights of unavailable categories are
// redistributed proportionally among the available ones so a category that
// could not be evaluated never silently counts as safe.
func (a *Aggregator) Build(actx *AnalysisContext) *RiskReport {
	report := &RiskReport{
		AnalyzedAt: time.Now().UTC(),
		Security: SecurityReport{
			Indicators: []string{},
			Flags:      []string{},
		},
		Metadata:   buildMetadata(actx.Email),
		Recipients: buildRecipients(actx.Email),
	}

	scores := make(map[Category]int)
	availableWeight := 0.0

	for cat := Category(0); cat < categoryCount; cat++ {
		finding, ok, reason := actx.Finding(cat)
		a.fillCategoryReport(report, cat, finding, ok, reason)
		if !ok {
			continue
		}
		scores[cat] = categoryScore(finding)
		availableWeight += categoryWeights[cat]
	}

	if availableWeight > 0 {
		weighted := 0.0
		for cat, score := range scores {
			weighted += categoryWeights[cat] / availableWeight * float64(score)
		}
		report.OverallScore = clampScore(int(math.Round(weighted)))
	}
	report.Band = BandForScore(report.OverallScore)

	a.appendIndicators(report)
	a.appendFlags(report)

	a.logger.Debug("Risk report built",
		zap.Int("overall_score", report.OverallScore),
		zap.String("risk_band", string(report.Band)),
		zap.Int("evaluated_categories", len(scores)))

	return report
}

func (a *Aggregator) fillCategoryReport(report *RiskReport, cat Category, finding *Finding, ok bool, reason string) {
	switch cat {
	case CategoryContent:
		report.Content = ContentReport{Available: ok}
		if ok {
			report.Content.Finding = finding.Content
		} else {
			report.Content.UnavailableReason = reason
		}
	case CategorySubject:
		report.Subject = SubjectReport{Available: ok}
		if ok {
			report.Subject.Finding = finding.Subject
		} else {
			report.Subject.UnavailableReason = reason
		}
	case CategorySender:
		report.Sender = SenderReport{Available: ok}
		if ok {
			report.Sender.Finding = finding.Sender
		} else {
			report.Sender.UnavailableReason = reason
		}
	case CategoryURL:
		report.URL = URLReport{Available: ok}
		if ok {
			report.URL.Finding = finding.URL
		} else {
			report.URL.UnavailableReason = reason
		}
	case CategoryAttachment:
		report.Attachment = AttachmentReport{Available: ok}
		if ok {
			report.Attachment.Finding = finding.Attachment
		} else {
			report.Attachment.UnavailableReason = reason
		}
	}
}

// categoryScore maps one evaluated finding to [0,100]
func categoryScore(finding *Finding) int {
	switch finding.Category {
	case CategoryContent:
		return clampScore(int(math.Round(finding.Content.Probability * 100)))
	case CategorySubject:
		return clampScore(int(math.Round(finding.Subject.Probability * 100)))
	case CategorySender:
		if finding.Sender.TrustedDomain {
			return 0
		}
		return clampScore(int(math.Round(finding.Sender.Probability * 100)))
	case CategoryURL:
		// Any flagged URL saturates the category; more flagged URLs
		// cannot push past the cap.
		if len(finding.URL.Flagged) > 0 {
			return 100
		}
		return 0
	case CategoryAttachment:
		att := finding.Attachment
		switch {
		case att.HasExecutables:
			return 100
		case att.HasScripts || att.HasMismatch:
			return 60
		default:
			return 0
		}
	default:
		return 0
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// appendIndicators emits one human-readable string per triggered signal in
// the fixed category order
func (a *Aggregator) appendIndicators(report *RiskReport) {
	for _, cat := range aggregationOrder {
		switch cat {
		case CategorySubject:
			if !report.Subject.Available {
				continue
			}
			f := report.Subject.Finding
			if len(f.Keywords) > 0 {
				report.Security.Indicators = append(report.Security.Indicators,
					"Suspicious keywords in subject: "+strings.Join(f.Keywords, ", "))
			}
			if f.Suspicious {
				report.Security.Indicators = append(report.Security.Indicators,
					fmt.Sprintf("Subject classified as suspicious (probability %.2f)", f.Probability))
			}
		case CategoryContent:
			if !report.Content.Available {
				continue
			}
			f := report.Content.Finding
			if len(f.Keywords) > 0 {
				report.Security.Indicators = append(report.Security.Indicators,
					"Suspicious keywords in body: "+strings.Join(f.Keywords, ", "))
			}
			if f.Suspicious {
				report.Security.Indicators = append(report.Security.Indicators,
					fmt.Sprintf("Body classified as suspicious (probability %.2f)", f.Probability))
			}
		case CategorySender:
			if !report.Sender.Available {
				continue
			}
			f := report.Sender.Finding
			if f.Address != "" && !f.Valid {
				report.Security.Indicators = append(report.Security.Indicators,
					"Sender address is not a valid email address")
			}
			if f.ReplyToMismatch {
				report.Security.Indicators = append(report.Security.Indicators,
					"Reply-To differs from sender address")
			}
			if f.Suspicious {
				report.Security.Indicators = append(report.Security.Indicators,
					fmt.Sprintf("Sender classified as suspicious (probability %.2f)", f.Probability))
			}
		case CategoryURL:
			if !report.URL.Available {
				continue
			}
			for _, flagged := range report.URL.Finding.Flagged {
				report.Security.Indicators = append(report.Security.Indicators,
					"Flagged URL "+flagged.URL+" ("+strings.Join(flagged.Reasons, ", ")+")")
			}
		case CategoryAttachment:
			if !report.Attachment.Available {
				continue
			}
			f := report.Attachment.Finding
			if f.HasExecutables {
				report.Security.Indicators = append(report.Security.Indicators, "Executable attachments present")
			}
			if f.HasScripts {
				report.Security.Indicators = append(report.Security.Indicators, "Script attachments present")
			}
			if f.HasMismatch {
				report.Security.Indicators = append(report.Security.Indicators,
					"Attachment content type disagrees with filename extension")
			}
		}
	}
}

// appendFlags sets HIGH_RISK plus one symbolic flag per triggered category
func (a *Aggregator) appendFlags(report *RiskReport) {
	if report.Band == RiskBandHigh {
		report.Security.Flags = append(report.Security.Flags, FlagHighRisk)
	}
	if f := report.Subject.Finding; f != nil && (f.Suspicious || len(f.Keywords) > 0) {
		report.Security.Flags = append(report.Security.Flags, FlagSuspiciousSubject)
	}
	if f := report.Content.Finding; f != nil && (f.Suspicious || len(f.Keywords) > 0) {
		report.Security.Flags = append(report.Security.Flags, FlagSuspiciousContent)
	}
	if f := report.Sender.Finding; f != nil && (f.Suspicious || f.ReplyToMismatch || (f.Address != "" && !f.Valid)) {
		report.Security.Flags = append(report.Security.Flags, FlagSenderAnomaly)
	}
	if f := report.URL.Finding; f != nil && len(f.Flagged) > 0 {
		report.Security.Flags = append(report.Security.Flags, FlagSuspiciousURLs)
	}
	if f := report.Attachment.Finding; f != nil && (f.HasExecutables || f.HasScripts || f.HasMismatch) {
		report.Security.Flags = append(report.Security.Flags, FlagRiskyAttachment)
	}
}

func buildMetadata(email *Email) MetadataSummary {
	meta := MetadataSummary{
		Date:        email.SentAt,
		HeaderCount: len(email.Headers),
	}

	for name := range email.Headers {
		switch strings.ToLower(name) {
		case "message-id":
			meta.HasMessageID = true
		case "return-path":
			meta.HasReturnPath = true
		case "received":
			meta.HasReceived = true
		}
	}

	if email.SentAt != "" {
		if parsed, err := mail.ParseDate(email.SentAt); err == nil {
			meta.DateValid = true
			meta.ParsedDate = parsed.UTC().Format(time.RFC3339)
		} else if parsed, err := time.Parse(time.RFC3339, email.SentAt); err == nil {
			meta.DateValid = true
			meta.ParsedDate = parsed.UTC().Format(time.RFC3339)
		}
	}

	return meta
}

func buildRecipients(email *Email) RecipientSummary {
	summary := RecipientSummary{
		ToCount:  len(email.To),
		CcCount:  len(email.Cc),
		BccCount: len(email.Bcc),
	}
	summary.TotalRecipients = summary.ToCount + summary.CcCount + summary.BccCount

	domains := make(map[string]struct{})
	all := make([]string, 0, summary.TotalRecipients)
	all = append(all, email.To...)
	all = append(all, email.Cc...)
	all = append(all, email.Bcc...)
	for _, rcpt := range all {
		addr := rcpt
		if parsed, err := mail.ParseAddress(rcpt); err == nil {
			addr = parsed.Address
		}
		if at := strings.LastIndex(addr, "@"); at > 0 && at < len(addr)-1 {
			domains[strings.ToLower(addr[at+1:])] = struct{}{}
		}
	}

	summary.UniqueDomains = make([]string, 0, len(domains))
	for domain := range domains {
		summary.UniqueDomains = append(summary.UniqueDomains, domain)
	}
	sort.Strings(summary.UniqueDomains)
	summary.UniqueDomainCount = len(summary.UniqueDomains)

	return summary
}
