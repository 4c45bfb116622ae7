package notify

import (
	"context"
	"log/slog"
)

// LogSender logs instead of delivering. Wired in when push is disabled or no
// Firebase credentials are configured, so every pipeline still runs end to
// end in development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, token string, n *Notification) error {
	s.logger.Info("dry-run push",
		"token", shortToken(token),
		"title", n.Title,
		"body", n.Body,
		"channel", n.Channel,
	)
	return nil
}
