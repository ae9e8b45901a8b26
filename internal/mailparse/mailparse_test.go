package mailparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleMessage = "From: Alice Example <alice@example.com>\r\n" +
	"To: bob@example.com, Carol <carol@other.test>\r\n" +
	"Cc: dave@example.com\r\n" +
	"Reply-To: replies@example.com\r\n" +
	"Date: Mon, 02 Jan 2006 15:04:05 -0700\r\n" +
	"Subject: Quarterly report\r\n" +
	"Message-ID: <abc123@example.com>\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Numbers attached, see you Thursday.\r\n"

func TestParseSimpleMessage(t *testing.T) {
	email, err := Parse(strings.NewReader(simpleMessage))
	require.NoError(t, err)

	assert.Equal(t, "Quarterly report", email.Subject)
	assert.Equal(t, "alice@example.com", email.From.Address)
	assert.Equal(t, "Alice Example", email.From.DisplayName)
	assert.Equal(t, []string{"bob@example.com", "carol@other.test"}, email.To)
	assert.Equal(t, []string{"dave@example.com"}, email.Cc)
	assert.Equal(t, "replies@example.com", email.ReplyTo)
	assert.Equal(t, "2006-01-02T15:04:05-07:00", email.SentAt)
	assert.Contains(t, email.Body, "Numbers attached")
	assert.Empty(t, email.Attachments)
	assert.NotEmpty(t, email.Headers)
}

const multipartMessage = "From: sender@example.com\r\n" +
	"To: rcpt@example.com\r\n" +
	"Subject: With attachment\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"boundary42\"\r\n" +
	"\r\n" +
	"--boundary42\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Please review the attachment.\r\n" +
	"--boundary42\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=\"report.pdf\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"JVBERi0xLjQKJSBkdW1teQ==\r\n" +
	"--boundary42--\r\n"

func TestParseMultipartWithAttachment(t *testing.T) {
	email, err := Parse(strings.NewReader(multipartMessage))
	require.NoError(t, err)

	assert.Contains(t, email.Body, "Please review the attachment.")
	require.Len(t, email.Attachments, 1)

	att := email.Attachments[0]
	assert.Equal(t, "report.pdf", att.Filename)
	assert.Equal(t, "application/pdf", att.DeclaredContentType)
	assert.Greater(t, att.SizeBytes, int64(0), "size reflects the decoded content")
}

func TestParseKeepsFirstPlainPart(t *testing.T) {
	msg := "From: a@example.com\r\n" +
		"Subject: alt\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"b\"\r\n" +
		"\r\n" +
		"--b\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"plain version\r\n" +
		"--b\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>html version</p>\r\n" +
		"--b--\r\n"

	email, err := Parse(strings.NewReader(msg))
	require.NoError(t, err)
	assert.Contains(t, email.Body, "plain version")
	assert.NotContains(t, email.Body, "html version")
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)
}
