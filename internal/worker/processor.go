package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/mailer"
	"github.com/cuongbtq/jobboard-be/internal/worker/domain"
	"github.com/wneessen/go-mail"
)

// processTask sends one message, retrying transient failures with exponential
// backoff. Shutdown during a wait returns a retryable error so the message is
// requeued rather than lost.
func (w *Worker) processTask(ctx context.Context, task *domain.Task) error {
	msg := task.Message
	var lastErr error

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if err := w.limiter.Wait(ctx); err != nil {
			return domain.NewRetryableError(fmt.Errorf("throttle wait: %w", err))
		}

		start := time.Now()
		err := w.send(ctx, msg)
		SendDuration.Observe(time.Since(start).Seconds())
		if err == nil {
			w.logger.Info("Email delivered",
				slog.String("message_id", msg.ID),
				slog.String("kind", string(msg.Kind)),
				slog.Int("attempt", attempt),
			)
			return nil
		}

		if isPermanent(err) {
			return fmt.Errorf("%w: %v", domain.ErrPermanentFailure, err)
		}

		lastErr = err
		SendRetries.Inc()
		w.logger.Warn("Email send attempt failed",
			slog.String("message_id", msg.ID),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", w.maxAttempts),
			slog.String("error", err.Error()),
		)

		if attempt == w.maxAttempts {
			break
		}

		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return domain.NewRetryableError(ctx.Err())
		case <-w.stopChan:
			return domain.NewRetryableError(errors.New("worker stopping"))
		}
	}

	return fmt.Errorf("%w: %v", domain.ErrMaxAttemptsExceeded, lastErr)
}

func (w *Worker) send(ctx context.Context, msg mailer.Message) error {
	if w.sendTimeout <= 0 {
		return w.sender.Send(ctx, msg)
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()
	return w.sender.Send(sendCtx, msg)
}

// backoff doubles RetryInterval per failed attempt
func (w *Worker) backoff(attempt int) time.Duration {
	return w.retryInterval << (attempt - 1)
}

// isPermanent reports failures that no retry can fix
func isPermanent(err error) bool {
	if errors.Is(err, mailer.ErrInvalidMessage) {
		return true
	}

	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		return !sendErr.IsTemp()
	}
	return false
}
