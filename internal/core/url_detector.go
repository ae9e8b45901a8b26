package core

import (
	"context"
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Reason tags attached to flagged URLs
const (
	URLReasonShortened       = "SHORTENED_URL"
	URLReasonHomograph       = "HOMOGRAPH_SUSPECT"
	URLReasonDeepSubdomain   = "DEEP_SUBDOMAIN"
	URLReasonSuspiciousChars = "SUSPICIOUS_HOST_CHARS"
	URLReasonIPLiteral       = "IP_LITERAL_HOST"
)

var urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+`)

// Known URL-shortening services
var shortenerHosts = map[string]struct{}{
	"bit.ly":      {},
	"tinyurl.com": {},
	"t.co":        {},
	"goo.gl":      {},
	"ow.ly":       {},
	"is.gd":       {},
	"buff.ly":     {},
	"cutt.ly":     {},
	"rebrand.ly":  {},
	"rb.gy":       {},
	"tiny.cc":     {},
	"shorturl.at": {},
}

// URLDetector flags suspicious links in the subject and body using purely
// local heuristics. It never calls an external service and treats
// malformed input as zero URLs found.
type URLDetector struct {
	logger *zap.Logger
}

// NewURLDetector creates a new URL heuristic detector
func NewURLDetector(logger *zap.Logger) *URLDetector {
	return &URLDetector{logger: logger}
}

// Category implements Detector
func (d *URLDetector) Category() Category {
	return CategoryURL
}

// Available implements Detector
func (d *URLDetector) Available() error {
	return nil
}

// Evaluate implements Detector
func (d *URLDetector) Evaluate(ctx context.Context, email *Email) (*Finding, error) {
	subjectURLs := extractURLs(email.Subject)
	bodyURLs := extractURLs(email.Body)

	finding := &URLFinding{
		HasSubjectURLs:  len(subjectURLs) > 0,
		HasBodyURLs:     len(bodyURLs) > 0,
		SubjectURLCount: len(subjectURLs),
		BodyURLCount:    len(bodyURLs),
		Flagged:         []FlaggedURL{},
	}

	// Each distinct URL is reported once with its full reason set, in
	// first-seen order across subject then body.
	seen := make(map[string]struct{})
	for _, raw := range append(subjectURLs, bodyURLs...) {
		normalized, host, ok := normalizeURL(raw)
		if !ok {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		reasons := scoreHost(host)
		if len(reasons) > 0 {
			finding.Flagged = append(finding.Flagged, FlaggedURL{URL: normalized, Reasons: reasons})
		}
	}

	if len(finding.Flagged) > 0 {
		d.logger.Debug("Flagged suspicious URLs", zap.Int("count", len(finding.Flagged)))
	}

	return &Finding{Category: CategoryURL, URL: finding}, nil
}

// extractURLs returns every URL-like token in text
func extractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, `.,;:!?)]}'"`)
		if m != "" {
			urls = append(urls, m)
		}
	}
	return urls
}

// normalizeURL lowercases the host, strips the scheme's default port and
// percent-decodes the host only. ok is false for tokens that do not parse.
func normalizeURL(raw string) (normalized, host string, ok bool) {
	withScheme := raw
	if !strings.HasPrefix(strings.ToLower(raw), "http://") && !strings.HasPrefix(strings.ToLower(raw), "https://") {
		withScheme = "http://" + raw
	}

	u, err := url.Parse(withScheme)
	if err != nil || u.Hostname() == "" {
		return "", "", false
	}

	host = strings.ToLower(u.Hostname())
	if decoded, derr := url.PathUnescape(host); derr == nil {
		host = decoded
	}

	port := u.Port()
	switch {
	case port == "":
		u.Host = host
	case u.Scheme == "http" && port == "80":
		u.Host = host
	case u.Scheme == "https" && port == "443":
		u.Host = host
	default:
		u.Host = net.JoinHostPort(host, port)
	}
	u.Scheme = strings.ToLower(u.Scheme)

	return u.String(), host, true
}

// scoreHost applies the independent heuristic rules to one host and returns
// the triggered reason tags in fixed order
func scoreHost(host string) []string {
	var reasons []string

	isIP := net.ParseIP(strings.Trim(host, "[]")) != nil

	if _, ok := shortenerHosts[host]; ok {
		reasons = append(reasons, URLReasonShortened)
	}
	if strings.Contains(host, "xn--") {
		reasons = append(reasons, URLReasonHomograph)
	}
	if !isIP {
		labels := strings.Split(host, ".")
		// more than 3 labels in front of the registrable domain
		if len(labels)-2 > 3 {
			reasons = append(reasons, URLReasonDeepSubdomain)
		}
		for _, label := range labels {
			if mixedDigitLabel(label) {
				reasons = append(reasons, URLReasonSuspiciousChars)
				break
			}
		}
	}
	if isIP {
		reasons = append(reasons, URLReasonIPLiteral)
	}

	return reasons
}

// mixedDigitLabel reports whether a host label mixes digits and letters in
// a pattern unusual for brand names: digits over 30% of the characters
func mixedDigitLabel(label string) bool {
	digits, letters := 0, 0
	for _, r := range label {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
		}
	}
	if digits == 0 || letters == 0 {
		return false
	}
	return float64(digits)/float64(len(label)) > 0.3
}
