package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/database"
	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	logger.InitLogger()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()
	user, err := repository.NewUserRepository(db).CreateUser(context.Background(), &models.User{
		Email:          email,
		HashedPassword: "not-a-real-hash",
	})
	require.NoError(t, err)
	return user
}

func createTestHabit(t *testing.T, db *sql.DB, userID int64, title string, isPublic bool) *models.Habit {
	t.Helper()
	habit, err := repository.NewHabitRepository(db).CreateHabit(context.Background(), &models.Habit{
		UserID:   userID,
		Title:    title,
		IsPublic: isPublic,
	})
	require.NoError(t, err)
	return habit
}

func newTestHabitService(db *sql.DB, horizonDays int) *HabitService {
	return NewHabitService(
		repository.NewHabitRepository(db),
		repository.NewCompletionRepository(db),
		repository.NewSubscriptionRepository(db),
		horizonDays,
	)
}

func newTestGroupService(db *sql.DB) *GroupService {
	return NewGroupService(
		repository.NewGroupRepository(db),
		repository.NewProofRepository(db),
		repository.NewMessageRepository(db),
	)
}

// day parses a calendar day in the canonical layout.
func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(models.DayFormat, value)
	require.NoError(t, err)
	return parsed
}

// completeDays marks each listed day as completed for the habit.
func completeDays(t *testing.T, db *sql.DB, habitID int64, days ...string) {
	t.Helper()
	repo := repository.NewCompletionRepository(db)
	for _, d := range days {
		completed, err := repo.ToggleDay(context.Background(), habitID, day(t, d))
		require.NoError(t, err)
		require.True(t, completed)
	}
}
