// Package mailer delivers HTML email through one of several backends chosen
// at startup: SMTP with an app password, the Microsoft Graph sendMail API, or
// a log-only sink for local development.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/konasal/konasal-backend/internal/logging"
	"github.com/konasal/konasal-backend/internal/server/config"
)

// ErrSendFailed wraps every delivery failure regardless of backend.
var ErrSendFailed = errors.New("mail delivery failed")

// Mailer sends a single HTML message. Implementations are safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
	Close() error
}

// New builds the Mailer selected by cfg.MailProvider.
func New(cfg *config.Config, logger logging.Logger) (Mailer, error) {
	switch cfg.MailProvider {
	case config.MailProviderSMTP:
		return NewSMTPMailer(cfg)
	case config.MailProviderGraph:
		return NewGraphMailer(cfg), nil
	case config.MailProviderLog, "":
		return NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, html string) error {
	m.logger.Info(ctx, "mail not delivered (log provider)", "to", to, "subject", subject, "bytes", len(html))
	m.logger.Debug(ctx, "mail body", "to", to, "html", html)
	return nil
}

func (m *LogMailer) Close() error { return nil }
