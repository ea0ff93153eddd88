package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard-be/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}

	w.logger.Info("Worker pool spawned",
		slog.Int("worker_count", w.concurrency),
		slog.String("worker_id", w.workerID),
	)
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)

	for {
		select {
		case <-w.stopChan:
			return

		case <-ctx.Done():
			return

		case task := <-w.tasks:
			err := w.processTask(ctx, task)
			w.settle(workerName, task, err)
		}
	}
}

// settle acks a delivered message or nacks it, requeueing only retryable failures
func (w *Worker) settle(workerName string, task *domain.Task, err error) {
	log := w.logger.With(
		slog.String("worker_name", workerName),
		slog.String("message_id", task.Message.ID),
		slog.String("kind", string(task.Message.Kind)),
	)

	if err == nil {
		Deliveries.WithLabelValues(domain.ResultSent).Inc()
		if ackErr := task.Delivery.Ack(false); ackErr != nil {
			log.Error("Failed to ACK message", slog.String("error", ackErr.Error()))
		}
		return
	}

	requeue := shouldRequeue(err)
	result := domain.ResultFailed
	if requeue {
		result = domain.ResultRequeued
	}
	Deliveries.WithLabelValues(result).Inc()

	log.Error("Email delivery failed",
		slog.Bool("requeue", requeue),
		slog.String("error", err.Error()),
	)
	if nackErr := task.Delivery.Nack(false, requeue); nackErr != nil {
		log.Error("Failed to NACK message", slog.String("error", nackErr.Error()))
	}
}

// shouldRequeue determines if a message goes back on the queue
func shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrMaxAttemptsExceeded) || errors.Is(err, domain.ErrPermanentFailure) {
		return false
	}

	var retryable *domain.RetryableError
	return errors.As(err, &retryable)
}
