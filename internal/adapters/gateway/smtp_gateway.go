package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mailrisk/analyzer/internal/config"
	"github.com/mailrisk/analyzer/internal/core"
	"github.com/mailrisk/analyzer/internal/mailparse"
	"go.uber.org/zap"
)

// SMTPGateway accepts messages as an MTA content filter, analyzes them
// and relays them onward with risk headers prepended
type SMTPGateway struct {
	service *core.AnalysisService
	logger  *zap.Logger
	cfg     config.GatewayConfig
	server  *smtp.Server
}

// NewSMTPGateway creates a new SMTP content gateway
func NewSMTPGateway(service *core.AnalysisService, cfg config.GatewayConfig, logger *zap.Logger) *SMTPGateway {
	return &SMTPGateway{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start starts the SMTP gateway service
func (g *SMTPGateway) Start() error {
	g.server = smtp.NewServer(&smtpBackend{gateway: g})

	g.server.Addr = g.cfg.ListenAddress
	g.server.Domain = "localhost"
	g.server.ReadTimeout = 30 * time.Second
	g.server.WriteTimeout = 30 * time.Second
	g.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	g.server.MaxRecipients = 50
	g.server.AllowInsecureAuth = true

	g.logger.Info("SMTP gateway starting", zap.String("address", g.cfg.ListenAddress))

	go func() {
		if err := g.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				g.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP gateway service
func (g *SMTPGateway) Stop() error {
	if g.server != nil {
		return g.server.Close()
	}
	return nil
}

// relay sends the processed email onward to the configured next hop
func (g *SMTPGateway) relay(sender string, recipients []string, emailData []byte) error {
	relayAddr := fmt.Sprintf("%s:%d", g.cfg.RelayAddress, g.cfg.RelayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			g.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err = wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		g.logger.Warn("QUIT command failed", zap.Error(err))
		// The email has already been accepted at this point
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	gateway *SMTPGateway
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		gateway:    b.gateway,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	gateway    *SMTPGateway
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the gateway)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data analyzes the message and relays it with risk headers prepended
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.gateway.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	email, err := mailparse.Parse(bytes.NewReader(rawData))
	if err != nil {
		s.gateway.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	// The envelope is authoritative for routing
	if email.From.Address == "" {
		email.From.Address = s.sender
	}
	if len(email.To) == 0 {
		email.To = s.recipients
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report := s.gateway.service.Analyze(ctx, email)

	var modified bytes.Buffer
	fmt.Fprintf(&modified, "%s: %d\r\n", s.gateway.cfg.ScoreHeader, report.OverallScore)
	fmt.Fprintf(&modified, "%s: %s\r\n", s.gateway.cfg.BandHeader, report.Band)
	if len(report.Security.Flags) > 0 {
		fmt.Fprintf(&modified, "%s: %s\r\n", s.gateway.cfg.FlagsHeader, strings.Join(report.Security.Flags, ", "))
	}
	modified.Write(rawData)

	if s.gateway.cfg.RelayEnabled {
		if err := s.gateway.relay(s.sender, s.recipients, modified.Bytes()); err != nil {
			s.gateway.logger.Error("Failed to relay email",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.gateway.logger.Warn("Relay disabled, message analyzed but not forwarded")
	}

	s.gateway.logger.Info("Processed email",
		zap.String("from", s.sender),
		zap.String("processing_id", report.ProcessingID),
		zap.Int("overall_score", report.OverallScore),
		zap.String("risk_band", string(report.Band)))

	return nil
}

// Logout handles SMTP logout (not needed for the gateway)
func (s *smtpSession) Logout() error {
	return nil
}
