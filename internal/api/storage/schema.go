package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard-be/shared/database"
)

type dialect struct {
	name string
	// lockRow is appended to a single-row SELECT to hold the row until commit
	lockRow string
	schema  []string
}

func dialectFor(driver string) dialect {
	if driver == database.DriverSQLite {
		// sqlite serializes writers per database
		return dialect{name: "sqlite", schema: sqliteSchema}
	}
	return dialect{name: "postgres", lockRow: " FOR UPDATE", schema: postgresSchema}
}

// Migrate creates tables and indexes if they do not exist
func (s *Storage) Migrate(ctx context.Context) error {
	for i, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}

	s.logger.Info("Database schema is up to date",
		slog.String("dialect", s.dialect.name),
		slog.Int("statements", len(s.dialect.schema)),
	)
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		age           INTEGER NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		location    TEXT NOT NULL,
		job_type    TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs (created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS job_applications (
		id         BIGSERIAL PRIMARY KEY,
		job_id     BIGINT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (job_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_applications_user ON job_applications (user_id)`,
	`CREATE TABLE IF NOT EXISTS job_shortlists (
		id         BIGSERIAL PRIMARY KEY,
		job_id     BIGINT NOT NULL,
		user_id    BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (job_id, user_id),
		FOREIGN KEY (job_id, user_id) REFERENCES job_applications (job_id, user_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message    TEXT NOT NULL,
		read       BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC, id DESC)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		age           INTEGER NOT NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		location    TEXT NOT NULL,
		job_type    TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs (created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS job_applications (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id     INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (job_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_applications_user ON job_applications (user_id)`,
	`CREATE TABLE IF NOT EXISTS job_shortlists (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id     INTEGER NOT NULL,
		user_id    INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (job_id, user_id),
		FOREIGN KEY (job_id, user_id) REFERENCES job_applications (job_id, user_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message    TEXT NOT NULL,
		read       BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC, id DESC)`,
}
