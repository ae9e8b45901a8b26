package mailparse

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mailrisk/analyzer/internal/core"
	"golang.org/x/text/encoding/charmap"
)

func init() {
	// Register additional charsets that are commonly used in emails
	charset.RegisterEncoding("windows-1252", charmap.Windows1252)
	charset.RegisterEncoding("iso-8859-1", charmap.ISO8859_1)
	charset.RegisterEncoding("iso-8859-15", charmap.ISO8859_15)
}

// ParseFile parses an .eml file into the analysis input model
func ParseFile(filePath string) (*core.Email, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a raw RFC 5322 message and extracts the fields the
// pipeline analyzes. Attachment contents are discarded; only metadata
// is retained.
func Parse(r io.Reader) (*core.Email, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail reader: %w", err)
	}

	header := mr.Header
	email := &core.Email{
		Subject: header.Get("Subject"),
		Headers: make(map[string]string),
	}

	fields := header.Fields()
	for fields.Next() {
		email.Headers[fields.Key()] = fields.Value()
	}

	if fromAddrs, err := header.AddressList("From"); err == nil && len(fromAddrs) > 0 {
		email.From = core.Address{
			Address:     fromAddrs[0].Address,
			DisplayName: fromAddrs[0].Name,
		}
	} else {
		email.From = core.Address{Address: header.Get("From")}
	}

	if replyAddrs, err := header.AddressList("Reply-To"); err == nil && len(replyAddrs) > 0 {
		email.ReplyTo = replyAddrs[0].Address
	} else {
		email.ReplyTo = header.Get("Reply-To")
	}

	email.To = addressStrings(header, "To")
	email.Cc = addressStrings(header, "Cc")
	email.Bcc = addressStrings(header, "Bcc")

	if date, err := header.Date(); err == nil {
		email.SentAt = date.Format(time.RFC3339)
	} else {
		email.SentAt = header.Get("Date")
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read part: %w", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read body: %w", err)
			}

			if strings.HasPrefix(contentType, "text/plain") {
				// Multipart emails carry both; keep the first plain part
				if email.Body == "" {
					email.Body = string(body)
				}
			} else if strings.HasPrefix(contentType, "text/html") && email.Body == "" {
				email.Body = string(body)
			}

		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()

			size, err := io.Copy(io.Discard, part.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read attachment: %w", err)
			}

			email.Attachments = append(email.Attachments, core.Attachment{
				Filename:            filename,
				SizeBytes:           size,
				DeclaredContentType: contentType,
			})
		}
	}

	return email, nil
}

// addressStrings extracts addresses from a header field, falling back
// to the raw value when the list does not parse
func addressStrings(header mail.Header, field string) []string {
	addrs, err := header.AddressList(field)
	if err != nil || len(addrs) == 0 {
		raw := header.Get(field)
		if raw == "" {
			return nil
		}
		var out []string
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
		return out
	}

	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Address)
	}
	return out
}
