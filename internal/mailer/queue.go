package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard-be/shared/rabbitmq"
)

// Publisher is the part of the RabbitMQ client the queue transport uses
type Publisher interface {
	PublishWithRetry(ctx context.Context, msg rabbitmq.Publishing) error
}

// QueueSender publishes messages for the mailer service to deliver
type QueueSender struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewQueueSender(publisher Publisher, logger *slog.Logger) *QueueSender {
	return &QueueSender{
		publisher: publisher,
		logger:    logger,
	}
}

func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email message: %w", err)
	}

	err = q.publisher.PublishWithRetry(ctx, rabbitmq.Publishing{
		MessageID:   msg.ID,
		ContentType: "application/json",
		Body:        body,
		Headers:     map[string]interface{}{"kind": string(msg.Kind)},
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}

	q.logger.Info("Email queued",
		slog.String("message_id", msg.ID),
		slog.String("kind", string(msg.Kind)),
	)
	return nil
}

// Decode parses a queued message body and validates it
func Decode(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	if err := msg.Validate(); err != nil {
		return Message{}, err
	}
	return msg, nil
}
