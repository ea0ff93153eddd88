package worker

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/jobboard-be/internal/mailer"
	"github.com/cuongbtq/jobboard-be/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// dispatch decodes deliveries and hands them to the pool. Messages that fail
// to decode are rejected without requeue so they land in the dead-letter
// exchange.
func (w *Worker) dispatch(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case <-w.stopChan:
			w.logger.Info("Message dispatcher stopped - worker stopping")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			msg, err := mailer.Decode(delivery.Body)
			if err != nil {
				w.logger.Error("Dropping undecodable message",
					slog.String("message_id", delivery.MessageId),
					slog.String("error", err.Error()),
				)
				Deliveries.WithLabelValues(domain.ResultRejected).Inc()
				w.nack(delivery, false)
				continue
			}

			select {
			case w.tasks <- &domain.Task{Message: msg, Delivery: delivery}:
				w.logger.Debug("Message dispatched to worker pool",
					slog.String("message_id", msg.ID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching")
				w.nack(delivery, true)
				return
			case <-w.stopChan:
				w.nack(delivery, true)
				return
			}
		}
	}
}

func (w *Worker) nack(delivery amqp.Delivery, requeue bool) {
	if err := delivery.Nack(false, requeue); err != nil {
		w.logger.Error("Failed to NACK message",
			slog.Uint64("delivery_tag", delivery.DeliveryTag),
			slog.Bool("requeue", requeue),
			slog.String("error", err.Error()),
		)
	}
}
