// Package memory is a process-local Repository. It backs the workflow and
// HTTP tests; the services always run on SQL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
)

var _ storage.Repository = (*Store)(nil)

type jobRecord struct {
	job         model.Job
	applied     []int64
	shortlisted []int64
}

// Store keeps everything in maps guarded by one RWMutex
type Store struct {
	mu sync.RWMutex

	jobs          map[int64]*jobRecord
	users         map[int64]model.User
	notifications map[int64]model.Notification

	nextJobID          int64
	nextUserID         int64
	nextNotificationID int64

	now func() time.Time
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		jobs:          make(map[int64]*jobRecord),
		users:         make(map[int64]model.User),
		notifications: make(map[int64]model.Notification),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Migrate(ctx context.Context) error { return nil }

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextJobID++
	job.ID = s.nextJobID
	if job.Status == "" {
		job.Status = domain.JobStatusOpen
	}
	job.CreatedAt = s.now()

	stored := *job
	stored.AppliedUsers, stored.ShortlistedUsers = nil, nil
	s.jobs[job.ID] = &jobRecord{job: stored}
	return nil
}

func (s *Store) GetJob(ctx context.Context, id int64, rel model.Relations) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.jobs[id]
	if !ok {
		return nil, domain.NewNotFound(domain.EntityJob, id)
	}

	job := rec.job
	if rel.Applied {
		job.AppliedUsers = s.resolveUsers(rec.applied)
	}
	if rel.Shortlisted {
		job.ShortlistedUsers = s.resolveUsers(rec.shortlisted)
	}
	return &job, nil
}

func (s *Store) resolveUsers(ids []int64) []model.User {
	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users
}

func (s *Store) ListJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)

	jobs := []model.Job{}
	for _, rec := range s.jobs {
		j := rec.job
		if search != "" &&
			!strings.Contains(strings.ToLower(j.Title), search) &&
			!strings.Contains(strings.ToLower(j.Description), search) {
			continue
		}
		if filter.Location != "" && j.Location != filter.Location {
			continue
		}
		if filter.JobType != "" && j.JobType != filter.JobType {
			continue
		}
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if c := filter.Cursor; c != nil {
			if j.CreatedAt.After(c.CreatedAt) || (j.CreatedAt.Equal(c.CreatedAt) && j.ID >= c.ID) {
				continue
			}
		}
		jobs = append(jobs, j)
	}

	sort.Slice(jobs, func(a, b int) bool {
		if !jobs[a].CreatedAt.Equal(jobs[b].CreatedAt) {
			return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
		}
		return jobs[a].ID > jobs[b].ID
	})

	if limit := filter.PageSize + 1; len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (s *Store) UpdateJob(ctx context.Context, id int64, upd model.JobUpdate) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[id]
	if !ok {
		return nil, domain.NewNotFound(domain.EntityJob, id)
	}

	setIf(&rec.job.Title, upd.Title)
	setIf(&rec.job.Description, upd.Description)
	setIf(&rec.job.Location, upd.Location)
	setIf(&rec.job.JobType, upd.JobType)

	job := rec.job
	return &job, nil
}

func (s *Store) DeleteJob(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return domain.NewNotFound(domain.EntityJob, id)
	}
	delete(s.jobs, id)
	return nil
}

// SaveJobRelations validates the whole delta before writing any of it
func (s *Store) SaveJobRelations(ctx context.Context, jobID int64, delta model.RelationDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[jobID]
	if !ok {
		return domain.NewNotFound(domain.EntityJob, jobID)
	}

	applied := append([]int64(nil), rec.applied...)
	for _, userID := range delta.Applied {
		if rec.job.Status != domain.JobStatusOpen {
			return domain.NewConflict(domain.ReasonJobClosed)
		}
		if _, ok := s.users[userID]; !ok {
			return domain.NewNotFound(domain.EntityUser, userID)
		}
		if contains(applied, userID) {
			return domain.NewConflict(domain.ReasonAlreadyApplied)
		}
		applied = append(applied, userID)
	}

	shortlisted := append([]int64(nil), rec.shortlisted...)
	for _, userID := range delta.Shortlisted {
		if _, ok := s.users[userID]; !ok {
			return domain.NewNotFound(domain.EntityUser, userID)
		}
		if !contains(applied, userID) {
			return domain.NewConflict(domain.ReasonNotApplicant)
		}
		if contains(shortlisted, userID) {
			return domain.NewConflict(domain.ReasonAlreadyShortlisted)
		}
		shortlisted = append(shortlisted, userID)
	}

	rec.applied = applied
	rec.shortlisted = shortlisted
	return nil
}

func (s *Store) SetJobStatus(ctx context.Context, jobID int64, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[jobID]
	if !ok {
		return domain.NewNotFound(domain.EntityJob, jobID)
	}
	if rec.job.Status != from {
		if rec.job.Status == to && to == domain.JobStatusClosed {
			return domain.NewConflict(domain.ReasonAlreadyClosed)
		}
		return domain.NewConflict(fmt.Sprintf("Job status is %s", rec.job.Status))
	}

	rec.job.Status = to
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = normalizeEmail(user.Email)
	if s.emailTaken(user.Email, 0) {
		return domain.NewConflict(domain.ReasonEmailInUse)
	}

	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) emailTaken(email string, exceptID int64) bool {
	for id, u := range s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.NewNotFound(domain.EntityUser, id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(a, b int) bool { return users[a].ID < users[b].ID })
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, upd model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.NewNotFound(domain.EntityUser, id)
	}

	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if s.emailTaken(email, id) {
			return nil, domain.NewConflict(domain.ReasonEmailInUse)
		}
		u.Email = email
	}
	setIf(&u.Name, upd.Name)
	setIf(&u.PasswordHash, upd.PasswordHash)
	if upd.Age != nil {
		u.Age = *upd.Age
	}

	s.users[id] = u
	return &u, nil
}

// DeleteUser removes the user from every job and drops their notifications
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return domain.NewNotFound(domain.EntityUser, id)
	}

	for _, rec := range s.jobs {
		rec.applied = without(rec.applied, id)
		rec.shortlisted = without(rec.shortlisted, id)
	}
	for nid, n := range s.notifications {
		if n.UserID == id {
			delete(s.notifications, nid)
		}
	}
	delete(s.users, id)
	return nil
}

func (s *Store) InsertNotification(ctx context.Context, userID int64, message string) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return nil, domain.NewNotFound(domain.EntityUser, userID)
	}

	s.nextNotificationID++
	n := model.Notification{
		ID:        s.nextNotificationID,
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now(),
	}
	s.notifications[n.ID] = n
	return &n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID int64) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, domain.NewNotFound(domain.EntityUser, userID)
	}

	list := []model.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(a, b int) bool {
		if !list[a].CreatedAt.Equal(list[b].CreatedAt) {
			return list[a].CreatedAt.After(list[b].CreatedAt)
		}
		return list[a].ID > list[b].ID
	})
	return list, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id int64) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return nil, domain.NewNotFound(domain.EntityNotification, id)
	}
	n.Read = true
	s.notifications[id] = n
	return &n, nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
