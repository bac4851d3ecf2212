package mailer

import (
	"context"
	"fmt"

	"github.com/konasal/konasal-backend/internal/server/config"
	"github.com/wneessen/go-mail"
)

// smtpSender is the part of *mail.Client the mailer needs.
type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
	Close() error
}

// SMTPMailer delivers through an authenticated SMTP relay such as Gmail with
// an app password.
type SMTPMailer struct {
	client   smtpSender
	fromName string
	fromAddr string
}

// newSMTPClient is a seam for tests.
var newSMTPClient = func(cfg *config.Config) (smtpSender, error) {
	return mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUser),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	c, err := newSMTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: c, fromName: cfg.MailFromName, fromAddr: cfg.SMTPUser}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.fromAddr); err != nil {
		return fmt.Errorf("%w: from address: %v", ErrSendFailed, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("%w: recipient %q: %v", ErrSendFailed, to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

func (m *SMTPMailer) Close() error {
	return m.client.Close()
}
