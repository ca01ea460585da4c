package cron

import (
	"context"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func StartReminderCronJobs(notificationService *services.NotificationService) {
	c := cron.New()

	// Habit reminders for habits not yet completed today
	c.AddFunc("@hourly", func() {
		err := notificationService.CheckHabitReminders(context.Background(), time.Now())
		if err != nil {
			logrus.WithError(err).Error("CheckHabitReminders failed")
		}
	})

	// Purge expired notifications
	c.AddFunc("0 0 * * *", func() {
		err := notificationService.CleanupExpiredNotifications(context.Background())
		if err != nil {
			logrus.WithError(err).Error("CleanupExpiredNotifications failed")
		}
	})

	c.Start()
}
