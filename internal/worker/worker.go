package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/mailer"
	"github.com/cuongbtq/jobboard-be/internal/worker/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/time/rate"
)

// Source hands out queue deliveries. *rabbitmq.Client satisfies it.
type Source interface {
	Consume(consumerTag string, prefetch int) (<-chan amqp.Delivery, error)
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Source        Source
	Sender        mailer.Sender
	Concurrency   int
	Prefetch      int
	SendTimeout   time.Duration
	MaxAttempts   int
	RetryInterval time.Duration
	RatePerSecond float64 // 0 disables throttling
	RateBurst     int
}

// Worker consumes queued email messages and delivers them through Sender
type Worker struct {
	logger        *slog.Logger
	source        Source
	sender        mailer.Sender
	limiter       *rate.Limiter
	workerID      string
	concurrency   int
	prefetch      int
	sendTimeout   time.Duration
	maxAttempts   int
	retryInterval time.Duration

	tasks    chan *domain.Task
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := max(cfg.Concurrency, 1)
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Worker{
		logger:        cfg.Logger,
		source:        cfg.Source,
		sender:        cfg.Sender,
		limiter:       rate.NewLimiter(limit, max(cfg.RateBurst, 1)),
		workerID:      "mailer-" + uuid.NewString()[:8],
		concurrency:   concurrency,
		prefetch:      max(cfg.Prefetch, concurrency),
		sendTimeout:   cfg.SendTimeout,
		maxAttempts:   max(cfg.MaxAttempts, 1),
		retryInterval: cfg.RetryInterval,
		tasks:         make(chan *domain.Task),
		stopChan:      make(chan struct{}),
	}
}

// Start subscribes to the queue, spawns the pool and blocks until ctx is done
// or the delivery channel closes
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting mailer worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("send_timeout", w.sendTimeout),
		slog.Int("max_attempts", w.maxAttempts),
	)

	deliveries, err := w.source.Consume(w.workerID, w.prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.dispatch(ctx, deliveries)
	return nil
}

// Stop waits for in-flight messages to finish
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping mailer worker...")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("Mailer worker stopped")
}
