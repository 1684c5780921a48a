package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"

	"ms-edarshan/internal/config"
	"ms-edarshan/internal/logger"
)

var ErrNotConfigured = errors.New("email transport is not configured")

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	FromName    string
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer is the outbound mail transport. Verify is the health check; Close
// releases whatever the transport holds.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Verify(ctx context.Context) error
	Close() error
}

type SMTPMailer struct {
	client *mail.Client
	from   string
	logger *logger.Logger
}

func NewSMTPMailer(cfg config.EmailConfig, log *logger.Logger) (*SMTPMailer, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	log.Info("EMAIL", fmt.Sprintf("SMTP transport configured for %s:%d", cfg.SMTPHost, cfg.SMTPPort))
	return &SMTPMailer{client: client, from: cfg.Username, logger: log}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.FromFormat(msg.FromName, m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("set recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)

	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := out.AttachReader(a.Filename, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(contentType))); err != nil {
			return fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Verify dials and authenticates without sending anything.
func (m *SMTPMailer) Verify(ctx context.Context) error {
	if err := m.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	return m.client.Close()
}

func (m *SMTPMailer) Close() error {
	m.logger.Info("EMAIL", "Closing SMTP transport")
	return nil
}

// DisabledMailer stands in when no credentials are configured; every send
// fails so the dispatcher reports it.
type DisabledMailer struct{}

func (DisabledMailer) Send(context.Context, Message) error { return ErrNotConfigured }
func (DisabledMailer) Verify(context.Context) error        { return ErrNotConfigured }
func (DisabledMailer) Close() error                        { return nil }
