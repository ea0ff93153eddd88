package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/notification"
	"github.com/cuongbtq/jobboard-be/internal/api/storage/memory"
	"github.com/cuongbtq/jobboard-be/shared/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEmail struct {
	kind  string
	to    string
	title string
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  []sentEmail
	err   error
	delay time.Duration
}

func (m *fakeMailer) record(kind, to, title string) error {
	if m.delay > 0 {
		// ignores ctx on purpose
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{kind: kind, to: to, title: title})
	return m.err
}

func (m *fakeMailer) SendApplicationEmail(ctx context.Context, to, jobTitle string) error {
	return m.record(emailApplication, to, jobTitle)
}

func (m *fakeMailer) SendShortlistEmail(ctx context.Context, to, jobTitle string) error {
	return m.record(emailShortlist, to, jobTitle)
}

func (m *fakeMailer) emails() []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentEmail(nil), m.sent...)
}

// flakyNotifier fails appends for the listed users
type flakyNotifier struct {
	Notifier
	failFor map[int64]bool
}

func (n *flakyNotifier) Append(ctx context.Context, userID int64, message string) (*model.Notification, error) {
	if n.failFor[userID] {
		return nil, errors.New("notification store unavailable")
	}
	return n.Notifier.Append(ctx, userID, message)
}

type fixture struct {
	store  *memory.Store
	log    *notification.Log
	mailer *fakeMailer
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := notification.NewLog(store, logger.NewNop().Logger)
	mailer := &fakeMailer{}
	return &fixture{
		store:  store,
		log:    log,
		mailer: mailer,
		engine: NewEngine(store, log, mailer, Config{EmailTimeout: time.Second}, logger.NewNop().Logger),
	}
}

func (f *fixture) job(t *testing.T, title string) *model.Job {
	t.Helper()
	job := &model.Job{Title: title, Description: "Build APIs", Location: "Remote", JobType: "Full-time"}
	require.NoError(t, f.store.CreateJob(context.Background(), job))
	return job
}

func (f *fixture) user(t *testing.T, name, email string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email, PasswordHash: "hash", Age: 25}
	require.NoError(t, f.store.CreateUser(context.Background(), user))
	return user
}

func (f *fixture) notifications(t *testing.T, userID int64) []string {
	t.Helper()
	list, err := f.log.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	messages := make([]string, 0, len(list))
	for _, n := range list {
		messages = append(messages, n.Message)
	}
	return messages
}

func (f *fixture) applicants(t *testing.T, jobID int64) []int64 {
	t.Helper()
	users, err := NewQueries(f.store).ListApplied(context.Background(), jobID)
	require.NoError(t, err)
	return ids(users)
}

func (f *fixture) shortlisted(t *testing.T, jobID int64) []int64 {
	t.Helper()
	users, err := NewQueries(f.store).ListShortlisted(context.Background(), jobID)
	require.NoError(t, err)
	return ids(users)
}

func ids(users []model.User) []int64 {
	out := []int64{}
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestEngine_Apply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.job(t, "Backend Developer")
	user := f.user(t, "Mahmoud", "mahmoud@example.com")

	out, err := f.engine.Apply(ctx, job.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, out.EmailSent)
	assert.False(t, out.Degraded())
	require.NotNil(t, out.Notification)
	assert.Equal(t, "You have successfully applied for the job: Backend Developer", out.Notification.Message)

	assert.Equal(t, []int64{user.ID}, f.applicants(t, job.ID))
	assert.Equal(t, []string{"You have successfully applied for the job: Backend Developer"}, f.notifications(t, user.ID))
	assert.Equal(t, []sentEmail{{emailApplication, "mahmoud@example.com", "Backend Developer"}}, f.mailer.emails())

	_, err = f.engine.Apply(ctx, job.ID, user.ID)
	assert.True(t, domain.IsConflictReason(err, domain.ReasonAlreadyApplied))
	assert.Equal(t, []int64{user.ID}, f.applicants(t, job.ID))
	assert.Len(t, f.notifications(t, user.ID), 1, "conflict triggers no side effects")
	assert.Len(t, f.mailer.emails(), 1)
	assert.Zero(t, f.engine.locks.size())
}

func TestEngine_Apply_Errors(t *testing.T) {
	f := newFixture(t)
	job := f.job(t, "Backend Developer")
	user := f.user(t, "Mahmoud", "mahmoud@example.com")
	closed := f.job(t, "Closed Role")
	require.NoError(t, f.store.SetJobStatus(context.Background(), closed.ID, domain.JobStatusOpen, domain.JobStatusClosed))

	tests := []struct {
		name    string
		jobID   int64
		userID  int64
		wantErr error
		errMsg  string
	}{
		{name: "missing job", jobID: 99, userID: user.ID, wantErr: domain.ErrNotFound, errMsg: "Job with ID 99 not found"},
		{name: "missing user", jobID: job.ID, userID: 42, wantErr: domain.ErrNotFound, errMsg: "User with ID 42 not found"},
		{name: "closed job", jobID: closed.ID, userID: user.ID, wantErr: domain.ErrConflict, errMsg: domain.ReasonJobClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.engine.Apply(context.Background(), tt.jobID, tt.userID)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.EqualError(t, err, tt.errMsg)
		})
	}

	assert.Empty(t, f.mailer.emails())
	assert.Empty(t, f.notifications(t, user.ID))
}

func TestEngine_Shortlist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.job(t, "Backend Developer")
	user := f.user(t, "Mahmoud", "mahmoud@example.com")

	_, err := f.engine.Shortlist(ctx, job.ID, user.ID)
	assert.True(t, domain.IsConflictReason(err, domain.ReasonNotApplicant))
	assert.Empty(t, f.shortlisted(t, job.ID))

	_, err = f.engine.Apply(ctx, job.ID, user.ID)
	require.NoError(t, err)

	out, err := f.engine.Shortlist(ctx, job.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, out.EmailSent)
	assert.Equal(t, []int64{user.ID}, f.shortlisted(t, job.ID))
	assert.Subset(t, f.applicants(t, job.ID), f.shortlisted(t, job.ID))

	_, err = f.engine.Shortlist(ctx, job.ID, user.ID)
	assert.True(t, domain.IsConflictReason(err, domain.ReasonAlreadyShortlisted))
	assert.Len(t, f.shortlisted(t, job.ID), 1)

	_, err = f.engine.Shortlist(ctx, job.ID, 77)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	emails := f.mailer.emails()
	require.Len(t, emails, 2)
	assert.Equal(t, emailShortlist, emails[1].kind)
	assert.Equal(t, "You have been shortlisted for the job: Backend Developer", f.notifications(t, user.ID)[0])
}

func TestEngine_Close(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.job(t, "Backend Developer")

	var applicants []int64
	for _, name := range []string{"u1", "u2", "u3"} {
		u := f.user(t, name, name+"@example.com")
		_, err := f.engine.Apply(ctx, job.ID, u.ID)
		require.NoError(t, err)
		applicants = append(applicants, u.ID)
	}
	bystander := f.user(t, "bystander", "bystander@example.com")

	out, err := f.engine.Close(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, applicants, out.Notified, "fan-out follows application order")
	assert.Empty(t, out.Failed)

	got, err := f.store.GetJob(ctx, job.ID, model.Relations{})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusClosed, got.Status)

	for _, id := range applicants {
		messages := f.notifications(t, id)
		require.Len(t, messages, 2)
		assert.Equal(t, `Job "Backend Developer" has been closed.`, messages[0])
	}
	assert.Empty(t, f.notifications(t, bystander.ID))

	_, err = f.engine.Close(ctx, job.ID)
	assert.True(t, domain.IsConflictReason(err, domain.ReasonAlreadyClosed))
	assert.Len(t, f.notifications(t, applicants[0]), 2, "re-close sends nothing")

	_, err = f.engine.Close(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.Apply(ctx, job.ID, bystander.ID)
	assert.True(t, domain.IsConflictReason(err, domain.ReasonJobClosed))
}

func TestEngine_Close_IsolatesNotificationFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.job(t, "Backend Developer")
	u1 := f.user(t, "u1", "u1@example.com")
	u2 := f.user(t, "u2", "u2@example.com")
	u3 := f.user(t, "u3", "u3@example.com")
	for _, u := range []*model.User{u1, u2, u3} {
		require.NoError(t, f.store.SaveJobRelations(ctx, job.ID, model.RelationDelta{Applied: []int64{u.ID}}))
	}

	notifier := &flakyNotifier{Notifier: f.log, failFor: map[int64]bool{u2.ID: true}}
	engine := NewEngine(f.store, notifier, f.mailer, Config{}, logger.NewNop().Logger)

	before := testutil.ToFloat64(CloseFanout.WithLabelValues("failed"))

	out, err := engine.Close(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{u1.ID, u3.ID}, out.Notified)
	assert.Equal(t, []int64{u2.ID}, out.Failed)
	assert.Len(t, f.notifications(t, u1.ID), 1)
	assert.Empty(t, f.notifications(t, u2.ID))
	assert.Len(t, f.notifications(t, u3.ID), 1)
	assert.Equal(t, before+1, testutil.ToFloat64(CloseFanout.WithLabelValues("failed")))
}

func TestEngine_DegradedEmail(t *testing.T) {
	tests := []struct {
		name   string
		mailer *fakeMailer
	}{
		{name: "mailer error", mailer: &fakeMailer{err: errors.New("smtp: connection refused")}},
		{name: "mailer timeout", mailer: &fakeMailer{delay: 300 * time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			engine := NewEngine(f.store, f.log, tt.mailer, Config{EmailTimeout: 50 * time.Millisecond}, logger.NewNop().Logger)
			job := f.job(t, "Backend Developer")
			user := f.user(t, "Mahmoud", "mahmoud@example.com")

			before := testutil.ToFloat64(Emails.WithLabelValues(emailApplication, "failed"))

			start := time.Now()
			out, err := engine.Apply(ctx, job.ID, user.ID)
			require.NoError(t, err, "email failure is not an operation failure")
			assert.Less(t, time.Since(start), 250*time.Millisecond)

			assert.False(t, out.EmailSent)
			assert.True(t, out.Degraded())
			assert.ErrorIs(t, out.EmailErr, domain.ErrEmailDelivery)
			assert.NoError(t, out.NotificationErr)

			assert.Equal(t, []int64{user.ID}, f.applicants(t, job.ID))
			assert.Len(t, f.notifications(t, user.ID), 1)
			assert.Equal(t, before+1, testutil.ToFloat64(Emails.WithLabelValues(emailApplication, "failed")))
		})
	}
}

func TestEngine_DegradedNotification(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.job(t, "Backend Developer")
	user := f.user(t, "Mahmoud", "mahmoud@example.com")

	notifier := &flakyNotifier{Notifier: f.log, failFor: map[int64]bool{user.ID: true}}
	engine := NewEngine(f.store, notifier, f.mailer, Config{}, logger.NewNop().Logger)

	out, err := engine.Apply(ctx, job.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, out.Degraded())
	assert.Error(t, out.NotificationErr)
	assert.True(t, out.EmailSent, "email is still attempted")
	assert.Equal(t, []int64{user.ID}, f.applicants(t, job.ID))
}

func TestEngine_ConcurrentApply(t *testing.T) {
	const n = 32
	ctx := context.Background()
	f := newFixture(t)
	job := f.job(t, "Backend Developer")
	user := f.user(t, "Mahmoud", "mahmoud@example.com")

	var successes, conflicts atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.engine.Apply(ctx, job.ID, user.ID)
			switch {
			case err == nil:
				successes.Add(1)
			case domain.IsConflictReason(err, domain.ReasonAlreadyApplied):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(n-1), conflicts.Load())
	assert.Equal(t, []int64{user.ID}, f.applicants(t, job.ID))
	assert.Len(t, f.notifications(t, user.ID), 1)
	assert.Len(t, f.mailer.emails(), 1)
	assert.Zero(t, f.engine.locks.size())
}

func TestEngine_ConcurrentClose(t *testing.T) {
	const n = 16
	ctx := context.Background()
	f := newFixture(t)
	job := f.job(t, "Backend Developer")
	u1 := f.user(t, "u1", "u1@example.com")
	u2 := f.user(t, "u2", "u2@example.com")
	require.NoError(t, f.store.SaveJobRelations(ctx, job.ID, model.RelationDelta{Applied: []int64{u1.ID, u2.ID}}))

	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.engine.Close(ctx, job.ID); err == nil {
				successes.Add(1)
			} else {
				assert.True(t, domain.IsConflictReason(err, domain.ReasonAlreadyClosed))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Len(t, f.notifications(t, u1.ID), 1)
	assert.Len(t, f.notifications(t, u2.ID), 1)
}

func TestEngine_ApplyRacesClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.job(t, "Backend Developer")

	users := make([]*model.User, 20)
	for i := range users {
		users[i] = f.user(t, "u", string(rune('a'+i))+"@example.com")
	}

	var wg sync.WaitGroup
	var closeOut *CloseOutcome
	wg.Add(1)
	go func() {
		defer wg.Done()
		out, err := f.engine.Close(ctx, job.ID)
		assert.NoError(t, err)
		closeOut = out
	}()
	for _, u := range users {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.engine.Apply(ctx, job.ID, id)
			if err != nil {
				assert.True(t, domain.IsConflictReason(err, domain.ReasonJobClosed))
			}
		}(u.ID)
	}
	wg.Wait()

	// every applicant that got in before the close is notified exactly once
	assert.ElementsMatch(t, f.applicants(t, job.ID), closeOut.Notified)
	for _, id := range closeOut.Notified {
		assert.Contains(t, f.notifications(t, id), `Job "Backend Developer" has been closed.`)
	}
}

func TestEngine_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	job := f.job(t, "Backend Developer")
	require.Equal(t, int64(1), job.ID)
	f.user(t, "Alice", "alice@example.com")
	mahmoud := f.user(t, "Mahmoud", "mahmoud@example.com")
	require.Equal(t, int64(2), mahmoud.ID)

	_, err := f.engine.Apply(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, f.applicants(t, 1))

	_, err = f.engine.Shortlist(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, f.shortlisted(t, 1))
	assert.Equal(t, "You have been shortlisted for the job: Backend Developer", f.notifications(t, 2)[0])

	_, err = f.engine.Close(ctx, 1)
	require.NoError(t, err)

	got, err := f.store.GetJob(ctx, 1, model.Relations{})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusClosed, got.Status)
	assert.Contains(t, f.notifications(t, 2), `Job "Backend Developer" has been closed.`)
}

func TestEngine_TransitionMetrics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.job(t, "Backend Developer")
	user := f.user(t, "Mahmoud", "mahmoud@example.com")

	success := testutil.ToFloat64(Transitions.WithLabelValues(OpApply, resultSuccess))
	conflict := testutil.ToFloat64(Transitions.WithLabelValues(OpApply, resultConflict))

	_, err := f.engine.Apply(ctx, job.ID, user.ID)
	require.NoError(t, err)
	_, err = f.engine.Apply(ctx, job.ID, user.ID)
	require.Error(t, err)

	assert.Equal(t, success+1, testutil.ToFloat64(Transitions.WithLabelValues(OpApply, resultSuccess)))
	assert.Equal(t, conflict+1, testutil.ToFloat64(Transitions.WithLabelValues(OpApply, resultConflict)))
}
