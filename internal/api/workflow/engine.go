package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/notification"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cuongbtq/jobboard-be/internal/api/workflow"

const defaultEmailTimeout = 5 * time.Second

// Email kinds used as metric labels
const (
	emailApplication = "application"
	emailShortlist   = "shortlist"
)

// Store is the relationship store the engine mutates
type Store interface {
	GetJob(ctx context.Context, id int64, rel model.Relations) (*model.Job, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	SaveJobRelations(ctx context.Context, jobID int64, delta model.RelationDelta) error
	SetJobStatus(ctx context.Context, jobID int64, from, to string) error
}

// Notifier appends in-app notifications
type Notifier interface {
	Append(ctx context.Context, userID int64, message string) (*model.Notification, error)
}

// Mailer dispatches workflow emails. Both calls are best-effort.
type Mailer interface {
	SendApplicationEmail(ctx context.Context, to, jobTitle string) error
	SendShortlistEmail(ctx context.Context, to, jobTitle string) error
}

// Config holds engine settings
type Config struct {
	// EmailTimeout bounds a single email dispatch
	EmailTimeout time.Duration
}

// Outcome describes a successful apply or shortlist. The relationship change
// is always persisted; the notification and email legs may have failed.
type Outcome struct {
	JobID        int64
	UserID       int64
	JobTitle     string
	Notification *model.Notification

	NotificationErr error
	EmailSent       bool
	EmailErr        error
}

// Degraded reports whether a side effect did not complete
func (o *Outcome) Degraded() bool {
	return !o.EmailSent || o.NotificationErr != nil
}

// CloseOutcome lists the applicants a close reached and those it could not
type CloseOutcome struct {
	JobID    int64
	JobTitle string
	Notified []int64
	Failed   []int64
}

// Engine runs the apply, shortlist and close transitions
type Engine struct {
	store    Store
	notifier Notifier
	mailer   Mailer
	config   Config
	logger   *slog.Logger
	locks    *jobLocks
	tracer   trace.Tracer
}

func NewEngine(store Store, notifier Notifier, mailer Mailer, config Config, logger *slog.Logger) *Engine {
	if config.EmailTimeout <= 0 {
		config.EmailTimeout = defaultEmailTimeout
	}

	return &Engine{
		store:    store,
		notifier: notifier,
		mailer:   mailer,
		config:   config,
		logger:   logger,
		locks:    newJobLocks(),
		tracer:   otel.Tracer(tracerName),
	}
}

// Apply adds userID to the job's applicants, then notifies and emails them
func (e *Engine) Apply(ctx context.Context, jobID, userID int64) (*Outcome, error) {
	ctx, span := e.startSpan(ctx, "workflow.Apply", jobID, userID)
	defer span.End()
	start := time.Now()

	job, user, err := e.apply(ctx, jobID, userID)
	if err != nil {
		e.fail(span, OpApply, start, err)
		return nil, err
	}

	out := e.sideEffects(ctx, job, user,
		notification.AppliedMessage(job.Title),
		emailApplication,
		e.mailer.SendApplicationEmail,
	)
	e.succeed(span, OpApply, start, out)
	return out, nil
}

func (e *Engine) apply(ctx context.Context, jobID, userID int64) (*model.Job, *model.User, error) {
	unlock := e.locks.lock(jobID)
	defer unlock()

	job, user, err := e.load(ctx, jobID, userID, model.Relations{Applied: true})
	if err != nil {
		return nil, nil, err
	}

	if job.HasApplicant(userID) {
		return nil, nil, domain.NewConflict(domain.ReasonAlreadyApplied)
	}

	if job.Status != domain.JobStatusOpen {
		return nil, nil, domain.NewConflict(domain.ReasonJobClosed)
	}

	if err := e.store.SaveJobRelations(ctx, jobID, model.RelationDelta{Applied: []int64{userID}}); err != nil {
		return nil, nil, err
	}

	e.logger.Info("User applied to job",
		slog.Int64("job_id", jobID),
		slog.Int64("user_id", userID),
	)
	return job, user, nil
}

// Shortlist adds an applicant to the job's shortlist, then notifies and emails them
func (e *Engine) Shortlist(ctx context.Context, jobID, userID int64) (*Outcome, error) {
	ctx, span := e.startSpan(ctx, "workflow.Shortlist", jobID, userID)
	defer span.End()
	start := time.Now()

	job, user, err := e.shortlist(ctx, jobID, userID)
	if err != nil {
		e.fail(span, OpShortlist, start, err)
		return nil, err
	}

	out := e.sideEffects(ctx, job, user,
		notification.ShortlistedMessage(job.Title),
		emailShortlist,
		e.mailer.SendShortlistEmail,
	)
	e.succeed(span, OpShortlist, start, out)
	return out, nil
}

func (e *Engine) shortlist(ctx context.Context, jobID, userID int64) (*model.Job, *model.User, error) {
	unlock := e.locks.lock(jobID)
	defer unlock()

	job, user, err := e.load(ctx, jobID, userID, model.Relations{Applied: true, Shortlisted: true})
	if err != nil {
		return nil, nil, err
	}

	if !job.HasApplicant(userID) {
		return nil, nil, domain.NewConflict(domain.ReasonNotApplicant)
	}

	if job.HasShortlisted(userID) {
		return nil, nil, domain.NewConflict(domain.ReasonAlreadyShortlisted)
	}

	if err := e.store.SaveJobRelations(ctx, jobID, model.RelationDelta{Shortlisted: []int64{userID}}); err != nil {
		return nil, nil, err
	}

	e.logger.Info("User shortlisted for job",
		slog.Int64("job_id", jobID),
		slog.Int64("user_id", userID),
	)
	return job, user, nil
}

// Close moves the job to closed and notifies every applicant once. A failed
// notification for one applicant does not stop the others.
func (e *Engine) Close(ctx context.Context, jobID int64) (*CloseOutcome, error) {
	ctx, span := e.tracer.Start(ctx, "workflow.Close",
		trace.WithAttributes(attribute.Int64("job.id", jobID)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()
	start := time.Now()

	job, err := e.close(ctx, jobID)
	if err != nil {
		e.fail(span, OpClose, start, err)
		return nil, err
	}

	// side effects outlive a cancelled request
	ctx = context.WithoutCancel(ctx)

	out := &CloseOutcome{
		JobID:    job.ID,
		JobTitle: job.Title,
		Notified: []int64{},
		Failed:   []int64{},
	}
	message := notification.ClosedMessage(job.Title)

	for _, applicant := range job.AppliedUsers {
		if _, err := e.notifier.Append(ctx, applicant.ID, message); err != nil {
			e.logger.Error("Failed to notify applicant of closed job",
				slog.Int64("job_id", jobID),
				slog.Int64("user_id", applicant.ID),
				slog.Any("error", err),
			)
			CloseFanout.WithLabelValues("failed").Inc()
			out.Failed = append(out.Failed, applicant.ID)
			continue
		}
		CloseFanout.WithLabelValues("notified").Inc()
		out.Notified = append(out.Notified, applicant.ID)
	}

	span.SetAttributes(
		attribute.Int("close.notified", len(out.Notified)),
		attribute.Int("close.failed", len(out.Failed)),
	)

	result := resultSuccess
	if len(out.Failed) > 0 {
		result = resultDegraded
	}
	e.observe(span, OpClose, start, result)

	e.logger.Info("Job closed",
		slog.Int64("job_id", jobID),
		slog.Int("notified", len(out.Notified)),
		slog.Int("failed", len(out.Failed)),
	)
	return out, nil
}

func (e *Engine) close(ctx context.Context, jobID int64) (*model.Job, error) {
	unlock := e.locks.lock(jobID)
	defer unlock()

	job, err := e.store.GetJob(ctx, jobID, model.Relations{})
	if err != nil {
		return nil, err
	}

	if job.Status == domain.JobStatusClosed {
		return nil, domain.NewConflict(domain.ReasonAlreadyClosed)
	}

	// conditional update: of two racing closes only one gets past here
	if err := e.store.SetJobStatus(ctx, jobID, domain.JobStatusOpen, domain.JobStatusClosed); err != nil {
		return nil, err
	}

	// read applicants after the flip so a concurrent apply either made it in
	// or was rejected as closed
	closed, err := e.store.GetJob(ctx, jobID, model.Relations{Applied: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load applicants of closed job: %w", err)
	}
	return closed, nil
}

func (e *Engine) load(ctx context.Context, jobID, userID int64, rel model.Relations) (*model.Job, *model.User, error) {
	job, err := e.store.GetJob(ctx, jobID, rel)
	if err != nil {
		return nil, nil, err
	}

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return job, user, nil
}

// sideEffects appends the notification and then sends the email. Neither
// failure undoes the persisted relationship.
func (e *Engine) sideEffects(
	ctx context.Context,
	job *model.Job,
	user *model.User,
	message string,
	kind string,
	send func(ctx context.Context, to, jobTitle string) error,
) *Outcome {
	ctx = context.WithoutCancel(ctx)

	out := &Outcome{
		JobID:    job.ID,
		UserID:   user.ID,
		JobTitle: job.Title,
	}

	n, err := e.notifier.Append(ctx, user.ID, message)
	if err != nil {
		e.logger.Error("Failed to append notification",
			slog.Int64("job_id", job.ID),
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
		out.NotificationErr = err
	} else {
		out.Notification = n
	}

	if err := e.sendEmail(ctx, func(ctx context.Context) error {
		return send(ctx, user.Email, job.Title)
	}); err != nil {
		e.logger.Warn("Email dispatch failed, transition kept",
			slog.String("kind", kind),
			slog.Int64("job_id", job.ID),
			slog.Int64("user_id", user.ID),
			slog.Any("error", err),
		)
		Emails.WithLabelValues(kind, "failed").Inc()
		out.EmailErr = fmt.Errorf("%w: %v", domain.ErrEmailDelivery, err)
		return out
	}

	Emails.WithLabelValues(kind, "sent").Inc()
	out.EmailSent = true
	return out
}

// sendEmail bounds send by EmailTimeout even when send ignores its context
func (e *Engine) sendEmail(ctx context.Context, send func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.config.EmailTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- send(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("email dispatch timed out after %s: %w", e.config.EmailTimeout, ctx.Err())
	}
}

func (e *Engine) startSpan(ctx context.Context, name string, jobID, userID int64) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.Int64("job.id", jobID),
			attribute.Int64("user.id", userID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (e *Engine) fail(span trace.Span, op string, start time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	Transitions.WithLabelValues(op, resultOf(err)).Inc()
	Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if resultOf(err) == resultError {
		e.logger.Error("Workflow operation failed",
			slog.String("operation", op),
			slog.Any("error", err),
		)
	}
}

func (e *Engine) succeed(span trace.Span, op string, start time.Time, out *Outcome) {
	span.SetAttributes(attribute.Bool("email.sent", out.EmailSent))

	result := resultSuccess
	if out.Degraded() {
		result = resultDegraded
	}
	e.observe(span, op, start, result)
}

func (e *Engine) observe(span trace.Span, op string, start time.Time, result string) {
	span.SetStatus(codes.Ok, "")
	Transitions.WithLabelValues(op, result).Inc()
	Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
