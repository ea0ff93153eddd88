package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const pgUniqueViolation = "23505"

// CreateUser inserts a user. Emails are stored lower-cased and must be unique.
func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = s.now()

	query := s.q(`
		INSERT INTO users (name, email, password_hash, age, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`)

	err := s.db.GetContext(ctx, &user.ID, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Age,
		user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewConflict(domain.ReasonEmailInUse)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *Storage) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	query := s.q(`SELECT ` + userColumns + ` FROM users u WHERE u.id = ?`)

	if err := s.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityUser, id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail returns domain.ErrNotFound when no user has the email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := s.q(`SELECT ` + userColumns + ` FROM users u WHERE u.email = ?`)

	if err := s.db.GetContext(ctx, &user, query, normalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	query := `SELECT ` + userColumns + ` FROM users u ORDER BY u.id`

	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateUser applies the non-nil fields of upd
func (s *Storage) UpdateUser(ctx context.Context, id int64, upd model.UserUpdate) (*model.User, error) {
	sets := []string{}
	args := []interface{}{}

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, normalizeEmail(*upd.Email))
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *upd.PasswordHash)
	}
	if upd.Age != nil {
		sets = append(sets, "age = ?")
		args = append(args, *upd.Age)
	}

	if len(sets) > 0 {
		query := s.q(`UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
		args = append(args, id)

		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, domain.NewConflict(domain.ReasonEmailInUse)
			}
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, domain.NewNotFound(domain.EntityUser, id)
		}
	}

	return s.GetUser(ctx, id)
}

// DeleteUser removes a user together with their applications, shortlist
// entries and notifications
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM job_shortlists WHERE user_id = ?`,
			`DELETE FROM job_applications WHERE user_id = ?`,
			`DELETE FROM notifications WHERE user_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, s.q(stmt), id); err != nil {
				return fmt.Errorf("failed to clear user references: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NewNotFound(domain.EntityUser, id)
		}
		return nil
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation recognizes unique constraint errors from every supported driver
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}

	return false
}
