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

const notificationColumns = `id, user_id, message, read, created_at`

// InsertNotification appends an unread notification for an existing user
func (s *Storage) InsertNotification(ctx context.Context, userID int64, message string) (*model.Notification, error) {
	n := &model.Notification{
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now(),
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.ensureUser(ctx, tx, userID); err != nil {
			return err
		}

		query := s.q(`
			INSERT INTO notifications (user_id, message, read, created_at)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`)
		if err := tx.GetContext(ctx, &n.ID, query, n.UserID, n.Message, false, n.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return n, nil
}

// ListNotifications returns a user's notifications, newest first
func (s *Storage) ListNotifications(ctx context.Context, userID int64) ([]model.Notification, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	query := s.q(`
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`)

	notifications := []model.Notification{}
	if err := s.db.SelectContext(ctx, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// MarkNotificationRead sets the read flag. Marking twice is not an error.
func (s *Storage) MarkNotificationRead(ctx context.Context, id int64) (*model.Notification, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE notifications SET read = ? WHERE id = ?`), true, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	if _, err := rowsAffected(res); err != nil {
		return nil, err
	}

	var n model.Notification
	query := s.q(`SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`)
	if err := s.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityNotification, id)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &n, nil
}
