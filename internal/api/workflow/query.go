package workflow

import (
	"context"

	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

// JobReader is the read side of Store
type JobReader interface {
	GetJob(ctx context.Context, id int64, rel model.Relations) (*model.Job, error)
}

// Queries projects the relationship sets without taking workflow locks
type Queries struct {
	store JobReader
}

func NewQueries(store JobReader) *Queries {
	return &Queries{store: store}
}

// ListApplied returns the job's applicants in application order
func (q *Queries) ListApplied(ctx context.Context, jobID int64) ([]model.User, error) {
	job, err := q.store.GetJob(ctx, jobID, model.Relations{Applied: true})
	if err != nil {
		return nil, err
	}
	return job.AppliedUsers, nil
}

// ListShortlisted returns the job's shortlist in shortlist order
func (q *Queries) ListShortlisted(ctx context.Context, jobID int64) ([]model.User, error) {
	job, err := q.store.GetJob(ctx, jobID, model.Relations{Shortlisted: true})
	if err != nil {
		return nil, err
	}
	return job.ShortlistedUsers, nil
}
