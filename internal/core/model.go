package core

import (
	"time"
)

// Address represents an email address with an optional display name
type Address struct {
	Address     string
	DisplayName string
}

// Attachment carries the metadata of a single email attachment.
// Attachment contents are never inspected by the core pipeline.
type Attachment struct {
	Filename            string
	SizeBytes           int64
	DeclaredContentType string
}

// Email is the immutable input of one analysis request
type Email struct {
	Subject     string
	Body        string
	From        Address
	To          []string
	Cc          []string
	Bcc         []string
	ReplyTo     string
	SentAt      string
	Attachments []Attachment
	Headers     map[string]string
}

// CacheEntry represents one cached classification score
type CacheEntry struct {
	Key       string
	Model     string
	Score     float64
	LastSeen  time.Time
	ExpiresAt time.Time
}
