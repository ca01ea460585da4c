package services

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
	"github.com/sirupsen/logrus"
)

type NotificationService struct {
	repo        *repository.NotificationRepository
	habitRepo   *repository.HabitRepository
	completions *repository.CompletionRepository
}

func NewNotificationService(repo *repository.NotificationRepository, habitRepo *repository.HabitRepository, completions *repository.CompletionRepository) *NotificationService {
	return &NotificationService{
		repo:        repo,
		habitRepo:   habitRepo,
		completions: completions,
	}
}

// CreateNotification logs a new notification for a user.
func (s *NotificationService) CreateNotification(ctx context.Context, userID int64, notifType, title, message string) error {
	notif := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Read:    false,
	}
	return s.repo.CreateNotification(ctx, notif)
}

// GetUserNotifications returns all unexpired notifications for a user.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkNotificationAsRead sets the "read" status of a notification to true.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notifID int64) error {
	return s.repo.MarkAsRead(ctx, notifID)
}

// CleanupExpiredNotifications is called periodically by cron to delete old
// notifications.
func (s *NotificationService) CleanupExpiredNotifications(ctx context.Context) error {
	return s.repo.DeleteExpiredNotifications(ctx)
}

// CheckHabitReminders scans habits carrying a reminders payload and creates
// a reminder for each one not yet completed today. At most one reminder per
// habit per day is created.
func (s *NotificationService) CheckHabitReminders(ctx context.Context, today time.Time) error {
	habits, err := s.habitRepo.GetHabitsWithReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch habits with reminders: %v", err)
	}

	for _, habit := range habits {
		completed, err := s.completions.IsCompleted(ctx, habit.ID, today)
		if err != nil {
			logrus.WithError(err).WithField("habit_id", habit.ID).Error("Failed to check completion for reminder")
			continue
		}
		if completed {
			continue
		}

		// Skip if the user was already reminded about this habit today.
		dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
		reminded, err := s.repo.ExistsSince(ctx, habit.UserID, "habit_reminder", reminderMessage(habit.Title), dayStart)
		if err != nil {
			logrus.WithError(err).WithField("habit_id", habit.ID).Error("Failed to check existing reminders")
			continue
		}
		if reminded {
			continue
		}

		err = s.CreateNotification(ctx, habit.UserID, "habit_reminder",
			"Don't break the chain", reminderMessage(habit.Title))
		if err != nil {
			logrus.WithError(err).WithField("habit_id", habit.ID).Warn("Failed to create habit reminder")
		}
	}

	return nil
}

func reminderMessage(title string) string {
	return fmt.Sprintf("You haven't logged \"%s\" today yet.", title)
}
