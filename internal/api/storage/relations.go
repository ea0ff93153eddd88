package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/jmoiron/sqlx"
)

// SaveJobRelations adds users to a job's applied and shortlisted sets in one
// transaction. The job row is locked for the duration so a concurrent close or
// apply observes either none or all of the delta.
//
// Applying requires an open job. Shortlisting requires a prior application.
// Duplicates are rejected with a ConflictError and nothing is written.
func (s *Storage) SaveJobRelations(ctx context.Context, jobID int64, delta model.RelationDelta) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		status, err := s.lockJob(ctx, tx, jobID)
		if err != nil {
			return err
		}

		for _, userID := range delta.Applied {
			if status != domain.JobStatusOpen {
				return domain.NewConflict(domain.ReasonJobClosed)
			}
			if err := s.ensureUser(ctx, tx, userID); err != nil {
				return err
			}
			if err := s.insertRelation(ctx, tx, "job_applications", jobID, userID, domain.ReasonAlreadyApplied); err != nil {
				return err
			}
		}

		for _, userID := range delta.Shortlisted {
			if err := s.ensureUser(ctx, tx, userID); err != nil {
				return err
			}

			var applied int
			query := s.q(`SELECT COUNT(*) FROM job_applications WHERE job_id = ? AND user_id = ?`)
			if err := tx.GetContext(ctx, &applied, query, jobID, userID); err != nil {
				return fmt.Errorf("failed to check application: %w", err)
			}
			if applied == 0 {
				return domain.NewConflict(domain.ReasonNotApplicant)
			}

			if err := s.insertRelation(ctx, tx, "job_shortlists", jobID, userID, domain.ReasonAlreadyShortlisted); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *Storage) lockJob(ctx context.Context, tx *sqlx.Tx, jobID int64) (string, error) {
	var status string
	query := s.q(`SELECT status FROM jobs WHERE id = ?` + s.dialect.lockRow)

	if err := tx.GetContext(ctx, &status, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NewNotFound(domain.EntityJob, jobID)
		}
		return "", fmt.Errorf("failed to lock job: %w", err)
	}

	return status, nil
}

func (s *Storage) ensureUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	var exists int
	query := s.q(`SELECT COUNT(*) FROM users WHERE id = ?`)

	if err := tx.GetContext(ctx, &exists, query, userID); err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if exists == 0 {
		return domain.NewNotFound(domain.EntityUser, userID)
	}
	return nil
}

func (s *Storage) insertRelation(ctx context.Context, tx *sqlx.Tx, table string, jobID, userID int64, duplicate string) error {
	query := s.q(`
		INSERT INTO ` + table + ` (job_id, user_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (job_id, user_id) DO NOTHING
	`)

	res, err := tx.ExecContext(ctx, query, jobID, userID, s.now())
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewConflict(duplicate)
	}
	return nil
}

// SetJobStatus moves a job from one status to another. It fails with a
// ConflictError when the current status is not from, so exactly one of two
// racing closes succeeds.
func (s *Storage) SetJobStatus(ctx context.Context, jobID int64, from, to string) error {
	query := s.q(`UPDATE jobs SET status = ? WHERE id = ? AND status = ?`)

	res, err := s.db.ExecContext(ctx, query, to, jobID, from)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	job, err := getJob(ctx, s.db, s.q, jobID)
	if err != nil {
		return err
	}
	return statusConflict(job.Status, to)
}

func statusConflict(current, to string) error {
	if current == to && to == domain.JobStatusClosed {
		return domain.NewConflict(domain.ReasonAlreadyClosed)
	}
	return domain.NewConflict(fmt.Sprintf("Job status is %s", current))
}
