package notify

import (
	"context"
	"log/slog"
	"time"
)

const dispatchTimeout = 5 * time.Second

// Dispatcher sends emails asynchronously. Failures are logged and never
// propagated: email delivery must not decide the fate of a registration.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger
}

func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, logger: logger}
}

// Dispatch fires the send in the background with its own timeout, detached
// from the request context so an early client disconnect cannot cancel it.
func (d *Dispatcher) Dispatch(recipient string, msg Message) {
	if recipient == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := d.sender.Send(ctx, recipient, msg.Subject, msg.Body); err != nil {
			d.logger.ErrorContext(ctx, "email dispatch failed",
				"error", err,
				"recipient", recipient,
				"subject", msg.Subject,
			)
		}
	}()
}
