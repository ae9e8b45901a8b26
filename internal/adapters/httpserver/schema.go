package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/mailrisk/analyzer/internal/core"
)

// flexStrings accepts either a single string or an array of strings,
// matching what email clients actually send for recipient fields
type flexStrings []string

// UnmarshalJSON implements json.Unmarshaler
func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*f = nil
			return nil
		}
		*f = []string{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("expected a string or an array of strings")
	}
	*f = many
	return nil
}

// attachmentRequest is the wire form of one attachment's metadata
type attachmentRequest struct {
	Filename    string `json:"filename"`
	SizeBytes   int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// analyzeRequest is the wire form of one analysis request
type analyzeRequest struct {
	Subject     string              `json:"subject"`
	Body        string              `json:"body"`
	From        string              `json:"from"`
	To          flexStrings         `json:"to"`
	Cc          flexStrings         `json:"cc"`
	Bcc         flexStrings         `json:"bcc"`
	ReplyTo     string              `json:"reply_to"`
	Date        string              `json:"date"`
	Attachments []attachmentRequest `json:"attachments"`
	Headers     map[string]string   `json:"headers"`
}

// validate rejects requests with nothing to analyze
func (r *analyzeRequest) validate() error {
	if strings.TrimSpace(r.Subject) == "" &&
		strings.TrimSpace(r.Body) == "" &&
		strings.TrimSpace(r.From) == "" {
		return errors.New("email is empty: at least one of subject, body or from is required")
	}
	return nil
}

// toEmail converts the wire form into the analysis input model
func (r *analyzeRequest) toEmail() *core.Email {
	email := &core.Email{
		Subject:     r.Subject,
		Body:        r.Body,
		From:        parseAddress(r.From),
		To:          r.To,
		Cc:          r.Cc,
		Bcc:         r.Bcc,
		ReplyTo:     r.ReplyTo,
		SentAt:      r.Date,
		Headers:     r.Headers,
		Attachments: make([]core.Attachment, 0, len(r.Attachments)),
	}

	for _, a := range r.Attachments {
		email.Attachments = append(email.Attachments, core.Attachment{
			Filename:            a.Filename,
			SizeBytes:           a.SizeBytes,
			DeclaredContentType: a.ContentType,
		})
	}

	return email
}

// parseAddress splits "Name <addr>" forms, keeping the raw value when the
// field does not parse as an address
func parseAddress(raw string) core.Address {
	raw = strings.TrimSpace(raw)
	if addr, err := mail.ParseAddress(raw); err == nil {
		return core.Address{Address: addr.Address, DisplayName: addr.Name}
	}
	return core.Address{Address: raw}
}

// batchRequest is the wire form of a batch analysis request
type batchRequest struct {
	Emails []analyzeRequest `json:"emails"`
}

// errorResponse is the wire form of a request-level failure
type errorResponse struct {
	Error string `json:"error"`
}

// batchItemResult carries one batch item's outcome. Report and Error are
// mutually exclusive; one item failing never fails its siblings.
type batchItemResult struct {
	Index  int              `json:"index"`
	Report *core.RiskReport `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// batchResponse is the wire form of a batch analysis result
type batchResponse struct {
	Count   int               `json:"count"`
	Results []batchItemResult `json:"results"`
}

// healthResponse is the wire form of the health endpoint
type healthResponse struct {
	Status        string            `json:"status"`
	Ready         bool              `json:"ready"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Capabilities  map[string]string `json:"capabilities"`
}

// batchTooLarge formats the oversized-batch rejection
func batchTooLarge(got, max int) string {
	return fmt.Sprintf("batch of %d emails exceeds the maximum of %d", got, max)
}
