package memory

import (
	"context"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*Store, *model.Job, *model.User) {
	t.Helper()
	s := NewStore()
	job := &model.Job{Title: "Backend Developer", Location: "Hanoi", JobType: "full-time"}
	require.NoError(t, s.CreateJob(context.Background(), job))
	user := &model.User{Name: "Mahmoud", Email: "Mahmoud@example.com", Age: 25}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return s, job, user
}

func TestStore_Relations(t *testing.T) {
	ctx := context.Background()
	s, job, user := seed(t)

	tests := []struct {
		name   string
		delta  model.RelationDelta
		reason string
		err    error
	}{
		{name: "shortlist before apply", delta: model.RelationDelta{Shortlisted: []int64{user.ID}}, reason: domain.ReasonNotApplicant},
		{name: "apply", delta: model.RelationDelta{Applied: []int64{user.ID}}},
		{name: "apply again", delta: model.RelationDelta{Applied: []int64{user.ID}}, reason: domain.ReasonAlreadyApplied},
		{name: "unknown user", delta: model.RelationDelta{Applied: []int64{9}}, err: domain.ErrNotFound},
		{name: "shortlist", delta: model.RelationDelta{Shortlisted: []int64{user.ID}}},
		{name: "shortlist again", delta: model.RelationDelta{Shortlisted: []int64{user.ID}}, reason: domain.ReasonAlreadyShortlisted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SaveJobRelations(ctx, job.ID, tt.delta)
			switch {
			case tt.reason != "":
				assert.True(t, domain.IsConflictReason(err, tt.reason), "got %v", err)
			case tt.err != nil:
				assert.ErrorIs(t, err, tt.err)
			default:
				assert.NoError(t, err)
			}
		})
	}

	got, err := s.GetJob(ctx, job.ID, model.Relations{Applied: true, Shortlisted: true})
	require.NoError(t, err)
	require.Len(t, got.AppliedUsers, 1)
	require.Len(t, got.ShortlistedUsers, 1)
	assert.Equal(t, "mahmoud@example.com", got.AppliedUsers[0].Email)
}

func TestStore_CloseAndDelete(t *testing.T) {
	ctx := context.Background()
	s, job, user := seed(t)

	require.NoError(t, s.SaveJobRelations(ctx, job.ID, model.RelationDelta{Applied: []int64{user.ID}}))
	require.NoError(t, s.SetJobStatus(ctx, job.ID, domain.JobStatusOpen, domain.JobStatusClosed))

	err := s.SetJobStatus(ctx, job.ID, domain.JobStatusOpen, domain.JobStatusClosed)
	assert.True(t, domain.IsConflictReason(err, domain.ReasonAlreadyClosed))

	other := &model.User{Name: "Linh", Email: "linh@example.com", Age: 30}
	require.NoError(t, s.CreateUser(ctx, other))
	err = s.SaveJobRelations(ctx, job.ID, model.RelationDelta{Applied: []int64{other.ID}})
	assert.True(t, domain.IsConflictReason(err, domain.ReasonJobClosed))

	_, err = s.InsertNotification(ctx, user.ID, "hi")
	require.NoError(t, err)
	require.NoError(t, s.DeleteUser(ctx, user.ID))

	got, err := s.GetJob(ctx, job.ID, model.Relations{Applied: true})
	require.NoError(t, err)
	assert.Empty(t, got.AppliedUsers)
	assert.Empty(t, s.notifications)
}

func TestStore_ListJobsAndNotificationsOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		j := &model.Job{Title: title, Location: "Da Nang", JobType: "full-time"}
		require.NoError(t, s.CreateJob(ctx, j))
		ids = append(ids, j.ID)
	}

	page, err := s.ListJobs(ctx, model.JobFilter{PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)

	next, err := s.ListJobs(ctx, model.JobFilter{
		PageSize: 5,
		Cursor:   &model.JobCursor{CreatedAt: page[0].CreatedAt, ID: page[0].ID},
	})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, ids[1], next[0].ID)

	exact, err := s.ListJobs(ctx, model.JobFilter{Location: "Da Nang", PageSize: 5})
	require.NoError(t, err)
	assert.Len(t, exact, 3)

	partial, err := s.ListJobs(ctx, model.JobFilter{Location: "nang", PageSize: 5})
	require.NoError(t, err)
	assert.Empty(t, partial)

	user := &model.User{Name: "N", Email: "n@example.com"}
	require.NoError(t, s.CreateUser(ctx, user))
	first, _ := s.InsertNotification(ctx, user.ID, "first")
	second, _ := s.InsertNotification(ctx, user.ID, "second")

	list, err := s.ListNotifications(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{second.ID, first.ID}, []int64{list[0].ID, list[1].ID})

	_, err = s.ListNotifications(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
