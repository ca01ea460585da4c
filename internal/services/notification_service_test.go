package services

import (
	"context"
	"testing"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHabitReminders(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "remind@example.com")

	habitRepo := repository.NewHabitRepository(db)
	withReminder, err := habitRepo.CreateHabit(context.Background(), &models.Habit{
		UserID:    user.ID,
		Title:     "Stretch",
		Reminders: map[string]interface{}{"time": "07:00"},
	})
	require.NoError(t, err)
	_, err = habitRepo.CreateHabit(context.Background(), &models.Habit{
		UserID: user.ID,
		Title:  "No reminder",
	})
	require.NoError(t, err)

	svc := NewNotificationService(
		repository.NewNotificationRepository(db),
		habitRepo,
		repository.NewCompletionRepository(db),
	)

	today := day(t, "2024-01-05")
	require.NoError(t, svc.CheckHabitReminders(context.Background(), today))

	notifs, err := svc.GetUserNotifications(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "habit_reminder", notifs[0].Type)
	assert.Contains(t, notifs[0].Message, "Stretch")

	// A second pass the same day does not duplicate the reminder.
	require.NoError(t, svc.CheckHabitReminders(context.Background(), today))
	notifs, err = svc.GetUserNotifications(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, notifs, 1)

	// Once the habit is completed, no further reminder is due tomorrow.
	completeDays(t, db, withReminder.ID, "2024-01-06")
	require.NoError(t, svc.CheckHabitReminders(context.Background(), day(t, "2024-01-06")))
	notifs, err = svc.GetUserNotifications(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, notifs, 1)
}

func TestMarkNotificationAsRead(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "remind@example.com")

	svc := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewHabitRepository(db),
		repository.NewCompletionRepository(db),
	)

	require.NoError(t, svc.CreateNotification(context.Background(), user.ID, "habit_reminder", "Don't break the chain", "You haven't logged \"Stretch\" today yet."))

	notifs, err := svc.GetUserNotifications(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.False(t, notifs[0].Read)

	require.NoError(t, svc.MarkNotificationAsRead(context.Background(), notifs[0].ID))

	notifs, err = svc.GetUserNotifications(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.True(t, notifs[0].Read)
}
