package mailer

import (
	"context"
	"log/slog"
)

// LogSender only logs messages. Used for local development.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(ctx context.Context, msg Message) error {
	subject, _, err := Render(msg)
	if err != nil {
		return err
	}

	l.logger.Info("Email (log transport)",
		slog.String("message_id", msg.ID),
		slog.String("kind", string(msg.Kind)),
		slog.String("to", msg.To),
		slog.String("subject", subject),
	)
	return nil
}
