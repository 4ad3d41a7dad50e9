// Package notify delivers registration emails: confirmation links, resends,
// and approval notices. Delivery is best-effort and never blocks or fails a
// registration operation.
package notify

import (
	"context"
	"log/slog"
)

// Sender provides a testable abstraction over email delivery.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogSender logs emails instead of delivering them. Used in development when
// no SES sender is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, recipient, subject, body string) error {
	s.logger.InfoContext(ctx, "email delivery (log sender)",
		"recipient", recipient,
		"subject", subject,
		"body", body,
	)
	return nil
}
