package mailer

import (
	"context"
	"time"

	"github.com/konasal/konasal-backend/internal/logging"
	"github.com/sethvargo/go-retry"
)

// Message is a queued email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Notifier delivers messages in the background so that callers never wait
// on, or fail because of, the mail transport. Failed sends are retried with
// exponential backoff and finally logged.
type Notifier struct {
	mailer  Mailer
	logger  logging.Logger
	queue   chan Message
	backoff func() retry.Backoff
}

// NewNotifier creates a Notifier with room for size pending messages.
func NewNotifier(m Mailer, logger logging.Logger, size int) *Notifier {
	return &Notifier{
		mailer: m,
		logger: logger,
		queue:  make(chan Message, size),
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(4, retry.NewExponential(500*time.Millisecond))
		},
	}
}

// Enqueue hands msg to the worker without blocking. It returns false and
// drops the message when the queue is full.
func (n *Notifier) Enqueue(msg Message) bool {
	select {
	case n.queue <- msg:
		return true
	default:
		n.logger.Warn(context.Background(), "mail queue full, dropping message", "to", msg.To, "subject", msg.Subject)
		return false
	}
}

// Run drains the queue until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if pending := len(n.queue); pending > 0 {
				n.logger.Warn(ctx, "notifier stopped with pending messages", "pending", pending)
			}
			return
		case msg := <-n.queue:
			n.deliver(ctx, msg)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, msg Message) {
	attempt := 0
	err := retry.Do(ctx, n.backoff(), func(ctx context.Context) error {
		attempt++
		if err := n.mailer.Send(ctx, msg.To, msg.Subject, msg.HTML); err != nil {
			n.logger.Debug(ctx, "mail attempt failed", "to", msg.To, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		n.logger.Error(ctx, "mail delivery gave up", "to", msg.To, "subject", msg.Subject, "attempts", attempt, "error", err)
		return
	}
	n.logger.Info(ctx, "mail delivered", "to", msg.To, "subject", msg.Subject)
}
