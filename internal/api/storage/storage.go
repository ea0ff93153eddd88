package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/shared/database"
	"github.com/jmoiron/sqlx"
)

// Repository is the full persistence surface used by the API service.
type Repository interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, id int64, rel model.Relations) (*model.Job, error)
	ListJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error)
	UpdateJob(ctx context.Context, id int64, upd model.JobUpdate) (*model.Job, error)
	DeleteJob(ctx context.Context, id int64) error
	SaveJobRelations(ctx context.Context, jobID int64, delta model.RelationDelta) error
	SetJobStatus(ctx context.Context, jobID int64, from, to string) error

	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id int64, upd model.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error

	InsertNotification(ctx context.Context, userID int64, message string) (*model.Notification, error)
	ListNotifications(ctx context.Context, userID int64) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (*model.Notification, error)
}

var _ Repository = (*Storage)(nil)

// Storage is the sqlx-backed Repository for postgres, pgx and sqlite.
type Storage struct {
	db      *sqlx.DB
	logger  *slog.Logger
	dialect dialect
	now     func() time.Time
}

// NewStorage creates a Storage over an open database client
func NewStorage(client *database.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:      client.GetDB(),
		logger:  logger,
		dialect: dialectFor(client.Driver()),
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) q(query string) string {
	return s.db.Rebind(query)
}

// withTx runs fn in a transaction, rolling back on error
func (s *Storage) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("Failed to rollback transaction",
				slog.Any("error", rbErr),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
