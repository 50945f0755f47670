package notify

import (
	"context"
	"log/slog"
)

// Slog logs outbound messages instead of delivering them. It is the
// default notifier when no delivery channel is configured.
type Slog struct {
	logger *slog.Logger
}

func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger}
}

func (n *Slog) Send(ctx context.Context, targetID, subject, body string) (bool, error) {
	n.logger.InfoContext(ctx, "notification",
		"target_id", targetID,
		"subject", subject,
		"body", body,
	)
	return true, nil
}
