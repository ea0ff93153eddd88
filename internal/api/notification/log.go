package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

// Store persists notifications
type Store interface {
	InsertNotification(ctx context.Context, userID int64, message string) (*model.Notification, error)
	ListNotifications(ctx context.Context, userID int64) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (*model.Notification, error)
}

// Log is the append-only per-user record of in-app messages
type Log struct {
	store  Store
	logger *slog.Logger
}

func NewLog(store Store, logger *slog.Logger) *Log {
	return &Log{
		store:  store,
		logger: logger,
	}
}

// Append records an unread message for userID. It fails with a NotFoundError
// when the user does not exist.
func (l *Log) Append(ctx context.Context, userID int64, message string) (*model.Notification, error) {
	n, err := l.store.InsertNotification(ctx, userID, message)
	if err != nil {
		return nil, fmt.Errorf("append notification: %w", err)
	}

	l.logger.Debug("Notification appended",
		slog.Int64("notification_id", n.ID),
		slog.Int64("user_id", userID),
	)
	return n, nil
}

// ListForUser returns userID's notifications newest first
func (l *Log) ListForUser(ctx context.Context, userID int64) ([]model.Notification, error) {
	list, err := l.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (l *Log) MarkRead(ctx context.Context, id int64) (*model.Notification, error) {
	n, err := l.store.MarkNotificationRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}
