package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/bunkmate/bunkmate-api/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	ToName      string
	ToAddress   string
	Subject     string
	TextContent string
	HTMLContent string
}

// Mailer delivers messages. Retry and failure policy belong to the
// caller (the jobs queue), not the implementation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendgridMailer delivers mail through the Sendgrid API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

// NewSendgrid constructs a Sendgrid-backed mailer.
func NewSendgrid(cfg config.EmailConfig) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(cfg.SendgridKey),
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
	}
}

// Send delivers a single message.
func (m *SendgridMailer) Send(ctx context.Context, msg Message) error {
	if msg.ToAddress == "" {
		return fmt.Errorf("message has no recipient")
	}

	email := sgmail.NewV3Mail()
	email.SetFrom(m.from)

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))
	email.AddPersonalizations(p)

	if msg.TextContent != "" {
		email.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		email.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them. Used
// in development and when delivery is disabled.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a log-only mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message and reports success.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email (delivery disabled)",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextContent),
	)
	return nil
}
