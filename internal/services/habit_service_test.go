package services

import (
	"context"
	"testing"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentStreak_EmptyLedger(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "streak@example.com")
	habit := createTestHabit(t, db, user.ID, "Meditate", false)
	svc := newTestHabitService(db, 0)

	streak, err := svc.CurrentStreak(context.Background(), habit.ID, day(t, "2024-01-07"))
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestCurrentStreak_ConsecutiveRun(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "streak@example.com")
	habit := createTestHabit(t, db, user.ID, "Meditate", false)
	svc := newTestHabitService(db, 0)

	completeDays(t, db, habit.ID, "2024-01-05", "2024-01-06", "2024-01-07")

	streak, err := svc.CurrentStreak(context.Background(), habit.ID, day(t, "2024-01-07"))
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	// Seen from mid-run, only the days up to that point count.
	streak, err = svc.CurrentStreak(context.Background(), habit.ID, day(t, "2024-01-06"))
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestCurrentStreak_TodayNotLoggedIsForgiven(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "streak@example.com")
	habit := createTestHabit(t, db, user.ID, "Meditate", false)
	svc := newTestHabitService(db, 0)

	completeDays(t, db, habit.ID, "2024-01-05", "2024-01-06", "2024-01-07")

	// The run is still alive: the scan walks back past the unlogged day.
	streak, err := svc.CurrentStreak(context.Background(), habit.ID, day(t, "2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	// Several unlogged days in a row are forgiven the same way.
	streak, err = svc.CurrentStreak(context.Background(), habit.ID, day(t, "2024-01-10"))
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestCurrentStreak_GapBreaksRun(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "streak@example.com")
	habit := createTestHabit(t, db, user.ID, "Meditate", false)
	svc := newTestHabitService(db, 0)

	// 2024-01-04 is missing, so only the later run counts.
	completeDays(t, db, habit.ID, "2024-01-02", "2024-01-03", "2024-01-05", "2024-01-06")

	streak, err := svc.CurrentStreak(context.Background(), habit.ID, day(t, "2024-01-06"))
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestCurrentStreak_ToggledOffDayDoesNotCount(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "streak@example.com")
	habit := createTestHabit(t, db, user.ID, "Meditate", false)
	svc := newTestHabitService(db, 0)

	completeDays(t, db, habit.ID, "2024-01-06", "2024-01-07")

	// Un-complete the 6th: the row stays but flips to false.
	completed, err := svc.ToggleDay(context.Background(), habit.ID, user.ID, day(t, "2024-01-06"))
	require.NoError(t, err)
	assert.False(t, completed)

	streak, err := svc.CurrentStreak(context.Background(), habit.ID, day(t, "2024-01-07"))
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestCurrentStreak_HorizonCapsScan(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "streak@example.com")
	habit := createTestHabit(t, db, user.ID, "Meditate", false)
	svc := newTestHabitService(db, 5)

	completeDays(t, db, habit.ID,
		"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04",
		"2024-01-05", "2024-01-06", "2024-01-07")

	// The run is 7 days long but the scan only sees the last 5.
	streak, err := svc.CurrentStreak(context.Background(), habit.ID, day(t, "2024-01-07"))
	require.NoError(t, err)
	assert.Equal(t, 5, streak)

	// A completed day entirely beyond the horizon is invisible.
	streak, err = svc.CurrentStreak(context.Background(), habit.ID, day(t, "2024-01-20"))
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestToggleDay_DoubleToggleRestoresState(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "toggle@example.com")
	habit := createTestHabit(t, db, user.ID, "Run", false)
	svc := newTestHabitService(db, 0)

	target := day(t, "2024-01-05")

	completed, err := svc.ToggleDay(context.Background(), habit.ID, user.ID, target)
	require.NoError(t, err)
	assert.True(t, completed)

	completed, err = svc.ToggleDay(context.Background(), habit.ID, user.ID, target)
	require.NoError(t, err)
	assert.False(t, completed)

	done, err := svc.IsCompletedOn(context.Background(), habit.ID, target)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestToggleDay_RejectsForeignHabit(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	habit := createTestHabit(t, db, owner.ID, "Run", true)
	svc := newTestHabitService(db, 0)

	_, err := svc.ToggleDay(context.Background(), habit.ID, stranger.ID, day(t, "2024-01-05"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWeekGrid(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "grid@example.com")
	habit := createTestHabit(t, db, user.ID, "Read", false)
	svc := newTestHabitService(db, 0)

	completeDays(t, db, habit.ID, "2024-01-03", "2024-01-05")

	// 2024-01-04 is a Thursday; its week is Jan 1 through Jan 7.
	monday, days, err := svc.WeekGrid(context.Background(), habit.ID, user.ID, day(t, "2024-01-04"))
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", monday.Format(models.DayFormat))
	require.Len(t, days, 7)

	for offset := 0; offset < 7; offset++ {
		key := monday.AddDate(0, 0, offset).Format(models.DayFormat)
		_, ok := days[key]
		assert.True(t, ok, "missing day %s", key)
	}
	assert.True(t, days["2024-01-03"])
	assert.True(t, days["2024-01-05"])
	assert.False(t, days["2024-01-01"])
	assert.False(t, days["2024-01-07"])
}

func TestWeekGrid_EveryDayOfWeekSameMonday(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "grid@example.com")
	habit := createTestHabit(t, db, user.ID, "Read", false)
	svc := newTestHabitService(db, 0)

	for offset := 0; offset < 7; offset++ {
		today := day(t, "2024-01-01").AddDate(0, 0, offset)
		monday, days, err := svc.WeekGrid(context.Background(), habit.ID, user.ID, today)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", monday.Format(models.DayFormat))
		assert.Len(t, days, 7)
	}
}

func TestGetHabit_Visibility(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	viewer := createTestUser(t, db, "viewer@example.com")
	private := createTestHabit(t, db, owner.ID, "Private", false)
	public := createTestHabit(t, db, owner.ID, "Public", true)
	svc := newTestHabitService(db, 0)

	_, err := svc.GetHabit(context.Background(), private.ID, viewer.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.GetHabit(context.Background(), public.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Public", got.Title)

	got, err = svc.GetHabit(context.Background(), private.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private", got.Title)
}

func TestCloneHabit(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	cloner := createTestUser(t, db, "cloner@example.com")
	source := createTestHabit(t, db, owner.ID, "Cold Shower", true)
	svc := newTestHabitService(db, 0)

	completeDays(t, db, source.ID, "2024-01-05")

	clone, err := svc.CloneHabit(context.Background(), source.ID, cloner.ID)
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, clone.ID)
	assert.Equal(t, cloner.ID, clone.UserID)
	assert.Equal(t, "Cold Shower", clone.Title)
	assert.False(t, clone.IsPublic)

	// The ledger does not travel with the clone.
	done, err := svc.IsCompletedOn(context.Background(), clone.ID, day(t, "2024-01-05"))
	require.NoError(t, err)
	assert.False(t, done)
}

func TestCloneHabit_PrivateSourceHidden(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	cloner := createTestUser(t, db, "cloner@example.com")
	source := createTestHabit(t, db, owner.ID, "Secret", false)
	svc := newTestHabitService(db, 0)

	_, err := svc.CloneHabit(context.Background(), source.ID, cloner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscribe(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	follower := createTestUser(t, db, "follower@example.com")
	public := createTestHabit(t, db, owner.ID, "Journal", true)
	private := createTestHabit(t, db, owner.ID, "Hidden", false)
	svc := newTestHabitService(db, 0)

	require.NoError(t, svc.Subscribe(context.Background(), public.ID, follower.ID))
	// Subscribing twice is a no-op.
	require.NoError(t, svc.Subscribe(context.Background(), public.ID, follower.ID))

	err := svc.Subscribe(context.Background(), public.ID, owner.ID)
	assert.Error(t, err)

	err = svc.Subscribe(context.Background(), private.ID, follower.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	subs, err := svc.ListSubscriptions(context.Background(), follower.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, public.ID, subs[0].ID)
}
