package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/jmoiron/sqlx"
)

const jobColumns = `id, title, description, location, job_type, status, created_at`

const userColumns = `u.id, u.name, u.email, u.password_hash, u.age, u.created_at`

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	if job.Status == "" {
		job.Status = domain.JobStatusOpen
	}
	job.CreatedAt = s.now()

	query := s.q(`
		INSERT INTO jobs (
			title, description, location, job_type, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := s.db.GetContext(
		ctx,
		&job.ID,
		query,
		job.Title,
		job.Description,
		job.Location,
		job.JobType,
		job.Status,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetJob loads a job and the relationship sets selected by rel
func (s *Storage) GetJob(ctx context.Context, id int64, rel model.Relations) (*model.Job, error) {
	job, err := getJob(ctx, s.db, s.q, id)
	if err != nil {
		return nil, err
	}

	if rel.Applied {
		job.AppliedUsers, err = s.listRelated(ctx, "job_applications", id)
		if err != nil {
			return nil, err
		}
	}

	if rel.Shortlisted {
		job.ShortlistedUsers, err = s.listRelated(ctx, "job_shortlists", id)
		if err != nil {
			return nil, err
		}
	}

	return job, nil
}

func getJob(ctx context.Context, db sqlx.QueryerContext, rebind func(string) string, id int64) (*model.Job, error) {
	var job model.Job
	query := rebind(`SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`)

	if err := sqlx.GetContext(ctx, db, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityJob, id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// listRelated returns the users in a relation table for a job in insertion order
func (s *Storage) listRelated(ctx context.Context, table string, jobID int64) ([]model.User, error) {
	query := s.q(`
		SELECT ` + userColumns + `
		FROM ` + table + ` r
		JOIN users u ON u.id = r.user_id
		WHERE r.job_id = ?
		ORDER BY r.id
	`)

	users := []model.User{}
	if err := s.db.SelectContext(ctx, &users, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}

	return users, nil
}

// ListJobs returns up to PageSize+1 jobs, newest first. The extra row tells
// the caller whether another page exists.
func (s *Storage) ListJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query += " AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)"
		args = append(args, pattern, pattern)
	}

	if filter.Location != "" {
		query += " AND location = ?"
		args = append(args, filter.Location)
	}

	if filter.JobType != "" {
		query += " AND job_type = ?"
		args = append(args, filter.JobType)
	}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	if filter.Cursor != nil {
		query += " AND (created_at, id) < (?, ?)"
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	// Order by created_at DESC, id DESC for consistent pagination
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, filter.PageSize+1)

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// UpdateJob applies the non-nil fields of upd
func (s *Storage) UpdateJob(ctx context.Context, id int64, upd model.JobUpdate) (*model.Job, error) {
	sets := []string{}
	args := []interface{}{}

	fields := []struct {
		column string
		value  *string
	}{
		{"title", upd.Title},
		{"description", upd.Description},
		{"location", upd.Location},
		{"job_type", upd.JobType},
	}
	for _, f := range fields {
		if f.value != nil {
			sets = append(sets, f.column+" = ?")
			args = append(args, *f.value)
		}
	}

	if len(sets) > 0 {
		query := s.q(`UPDATE jobs SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
		args = append(args, id)

		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update job: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, domain.NewNotFound(domain.EntityJob, id)
		}
	}

	return s.GetJob(ctx, id, model.Relations{})
}

// DeleteJob removes a job after clearing its relationship sets
func (s *Storage) DeleteJob(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM job_shortlists WHERE job_id = ?`,
			`DELETE FROM job_applications WHERE job_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, s.q(stmt), id); err != nil {
				return fmt.Errorf("failed to clear job relations: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM jobs WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NewNotFound(domain.EntityJob, id)
		}
		return nil
	})
}
