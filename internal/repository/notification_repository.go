package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/sirupsen/logrus"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts a new notification.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(7 * 24 * time.Hour)

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO notifications (user_id, type, title, message, read, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		notif.UserID, notif.Type, notif.Title, notif.Message, notif.Read, notif.CreatedAt, notif.ExpiresAt,
	).Scan(&notif.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return fmt.Errorf("failed to create notification: %v", err)
	}
	return nil
}

// GetUserNotifications returns all unexpired notifications for a user.
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, title, message, read, created_at, expires_at
		 FROM notifications WHERE user_id = ? AND expires_at > ?
		 ORDER BY created_at DESC`,
		userID, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var notif models.Notification
		if err := rows.Scan(&notif.ID, &notif.UserID, &notif.Type, &notif.Title, &notif.Message,
			&notif.Read, &notif.CreatedAt, &notif.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %v", err)
		}
		notifications = append(notifications, notif)
	}
	return notifications, rows.Err()
}

// MarkAsRead sets a notification's Read flag to true.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	return err
}

// ExistsSince reports whether a notification of the given type and message
// was created for the user at or after the given time.
func (r *NotificationRepository) ExistsSince(ctx context.Context, userID int64, notifType, message string, since time.Time) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications
		 WHERE user_id = ? AND type = ? AND message = ? AND created_at >= ?`,
		userID, notifType, message, since,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check notifications: %v", err)
	}
	return count > 0, nil
}

// DeleteExpiredNotifications removes notifications past their expiry.
func (r *NotificationRepository) DeleteExpiredNotifications(ctx context.Context) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE expires_at <= ?`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired notifications: %v", err)
	}
	deleted, _ := result.RowsAffected()
	logrus.Infof("Deleted %d expired notifications", deleted)
	return nil
}
