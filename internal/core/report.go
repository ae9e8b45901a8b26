package core

import (
	"time"
)

// RiskBand is the categorical label derived from the overall score
type RiskBand string

const (
	RiskBandSafe   RiskBand = "safe"
	RiskBandMedium RiskBand = "medium"
	RiskBandHigh   RiskBand = "high"
)

// BandForScore maps an overall score to its risk band. Scores of 40 and 70
// both fall in the medium band.
func BandForScore(score int) RiskBand {
	switch {
	case score < 40:
		return RiskBandSafe
	case score <= 70:
		return RiskBandMedium
	default:
		return RiskBandHigh
	}
}

// Symbolic flags attached to a report for downstream filtering
const (
	FlagHighRisk          = "HIGH_RISK"
	FlagSuspiciousSubject = "SUSPICIOUS_SUBJECT"
	FlagSuspiciousContent = "SUSPICIOUS_CONTENT"
	FlagSenderAnomaly     = "SENDER_ANOMALY"
	FlagSuspiciousURLs    = "SUSPICIOUS_URLS"
	FlagRiskyAttachment   = "RISKY_ATTACHMENT"
)

// ContentReport wraps the content finding with its availability
type ContentReport struct {
	Available         bool            `json:"available"`
	UnavailableReason string          `json:"unavailable_reason,omitempty"`
	Finding           *ContentFinding `json:"finding,omitempty"`
}

// SubjectReport wraps the subject finding with its availability
type SubjectReport struct {
	Available         bool            `json:"available"`
	UnavailableReason string          `json:"unavailable_reason,omitempty"`
	Finding           *SubjectFinding `json:"finding,omitempty"`
}

// SenderReport wraps the sender finding with its availability
type SenderReport struct {
	Available         bool           `json:"available"`
	UnavailableReason string         `json:"unavailable_reason,omitempty"`
	Finding           *SenderFinding `json:"finding,omitempty"`
}

// URLReport wraps the URL finding with its availability
type URLReport struct {
	Available         bool        `json:"available"`
	UnavailableReason string      `json:"unavailable_reason,omitempty"`
	Finding           *URLFinding `json:"finding,omitempty"`
}

// AttachmentReport wraps the attachment finding with its availability
type AttachmentReport struct {
	Available         bool               `json:"available"`
	UnavailableReason string             `json:"unavailable_reason,omitempty"`
	Finding           *AttachmentFinding `json:"finding,omitempty"`
}

// MetadataSummary reports header-level facts about the message
type MetadataSummary struct {
	Date          string `json:"date,omitempty"`
	DateValid     bool   `json:"date_valid"`
	ParsedDate    string `json:"parsed_date,omitempty"`
	HeaderCount   int    `json:"header_count"`
	HasMessageID  bool   `json:"has_message_id"`
	HasReturnPath bool   `json:"has_return_path"`
	HasReceived   bool   `json:"has_received"`
}

// RecipientSummary reports recipient statistics
type RecipientSummary struct {
	ToCount           int      `json:"to_count"`
	CcCount           int      `json:"cc_count"`
	BccCount          int      `json:"bcc_count"`
	TotalRecipients   int      `json:"total_recipients"`
	UniqueDomains     []string `json:"unique_domains"`
	UniqueDomainCount int      `json:"unique_domain_count"`
}

// SecurityReport carries the human-readable indicators and symbolic
// flags derived from the findings
type SecurityReport struct {
	Indicators []string `json:"suspicious_indicators"`
	Flags      []string `json:"flags"`
}

// RiskReport is the aggregated output of one analysis request
type RiskReport struct {
	ProcessingID string         `json:"processing_id"`
	AnalyzedAt   time.Time      `json:"timestamp"`
	OverallScore int            `json:"overall_score"`
	Band         RiskBand       `json:"risk_band"`
	Security     SecurityReport `json:"security_analysis"`

	Metadata   MetadataSummary  `json:"metadata"`
	Recipients RecipientSummary `json:"recipient_analysis"`

	Content    ContentReport    `json:"content_analysis"`
	Subject    SubjectReport    `json:"subject_analysis"`
	Sender     SenderReport     `json:"sender_analysis"`
	URL        URLReport        `json:"url_analysis"`
	Attachment AttachmentReport `json:"attachment_analysis"`
}
