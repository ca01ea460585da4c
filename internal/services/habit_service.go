package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
	"github.com/sirupsen/logrus"
)

// DefaultStreakHorizonDays bounds how far back the streak scan walks. Habits
// with longer unbroken histories report at most this many days. Known
// limitation, kept deliberately.
const DefaultStreakHorizonDays = 200

// HabitService encapsulates the business logic for habits, their completion
// ledger and subscriptions.
type HabitService struct {
	repo          *repository.HabitRepository
	completions   *repository.CompletionRepository
	subscriptions *repository.SubscriptionRepository
	horizonDays   int
}

// NewHabitService creates a new instance of HabitService. horizonDays caps
// the backward streak scan; values below 1 fall back to the default.
func NewHabitService(repo *repository.HabitRepository, completions *repository.CompletionRepository, subscriptions *repository.SubscriptionRepository, horizonDays int) *HabitService {
	if horizonDays < 1 {
		horizonDays = DefaultStreakHorizonDays
	}
	return &HabitService{
		repo:          repo,
		completions:   completions,
		subscriptions: subscriptions,
		horizonDays:   horizonDays,
	}
}

// CreateHabit validates and stores a new habit for the owner.
func (s *HabitService) CreateHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	if habit.Title == "" {
		logrus.Warn("Habit title is empty during creation")
		return nil, fmt.Errorf("habit title is required")
	}

	created, err := s.repo.CreateHabit(ctx, habit)
	if err != nil {
		logrus.WithError(err).Error("Service failed to create habit")
		return nil, fmt.Errorf("failed to create habit: %v", err)
	}
	return created, nil
}

// GetHabit retrieves a habit readable by the caller: their own, or any
// public one.
func (s *HabitService) GetHabit(ctx context.Context, habitID, callerID int64) (*models.Habit, error) {
	habit, err := s.repo.GetHabitByID(ctx, habitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %v", err)
	}

	if habit.UserID != callerID && !habit.IsPublic {
		return nil, ErrNotFound
	}
	return habit, nil
}

// getOwnedHabit loads a habit and verifies ownership. Both a missing habit
// and someone else's habit surface as NotFound.
func (s *HabitService) getOwnedHabit(ctx context.Context, habitID, ownerID int64) (*models.Habit, error) {
	habit, err := s.repo.GetHabitByID(ctx, habitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %v", err)
	}
	if habit.UserID != ownerID {
		return nil, ErrNotFound
	}
	return habit, nil
}

// ListHabits retrieves all habits owned by the user.
func (s *HabitService) ListHabits(ctx context.Context, userID int64) ([]models.Habit, error) {
	habits, err := s.repo.GetHabitsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch habits: %v", err)
	}
	return habits, nil
}

// ListPublicHabits retrieves all habits flagged public.
func (s *HabitService) ListPublicHabits(ctx context.Context) ([]models.Habit, error) {
	habits, err := s.repo.GetPublicHabits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch public habits: %v", err)
	}
	return habits, nil
}

// UpdateHabit overwrites a habit's content fields. Only the owner may
// mutate.
func (s *HabitService) UpdateHabit(ctx context.Context, habitID, ownerID int64, updated *models.Habit) (*models.Habit, error) {
	habit, err := s.getOwnedHabit(ctx, habitID, ownerID)
	if err != nil {
		return nil, err
	}
	if updated.Title == "" {
		return nil, fmt.Errorf("habit title is required")
	}

	habit.Title = updated.Title
	habit.Why = updated.Why
	habit.IdentityGoal = updated.IdentityGoal
	habit.Loop = updated.Loop
	habit.MinimalDose = updated.MinimalDose
	habit.ImplementationIntentions = updated.ImplementationIntentions
	habit.Reminders = updated.Reminders
	habit.IsPublic = updated.IsPublic

	if err := s.repo.UpdateHabit(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to update habit: %v", err)
	}
	return habit, nil
}

// ToggleDay flips the completion entry of the owner's habit for the given
// day and returns the new completed value.
func (s *HabitService) ToggleDay(ctx context.Context, habitID, ownerID int64, day time.Time) (bool, error) {
	if _, err := s.getOwnedHabit(ctx, habitID, ownerID); err != nil {
		return false, err
	}

	completed, err := s.completions.ToggleDay(ctx, habitID, day)
	if err != nil {
		return false, fmt.Errorf("failed to toggle day: %v", err)
	}
	return completed, nil
}

// CurrentStreak computes the consecutive run of completed days ending at the
// most recent completed day at or before today. Days after that run (todays
// not yet logged) are forgiven; a gap inside the run terminates it. The scan
// never looks further back than the configured horizon.
func (s *HabitService) CurrentStreak(ctx context.Context, habitID int64, today time.Time) (int, error) {
	// Phase 1: walk back to the most recent completed day.
	offset := 0
	for ; offset < s.horizonDays; offset++ {
		completed, err := s.completions.IsCompleted(ctx, habitID, today.AddDate(0, 0, -offset))
		if err != nil {
			return 0, fmt.Errorf("failed to read completion ledger: %v", err)
		}
		if completed {
			break
		}
	}
	if offset == s.horizonDays {
		return 0, nil
	}

	// Phase 2: count consecutive completed days back from there.
	streak := 0
	for ; offset < s.horizonDays; offset++ {
		completed, err := s.completions.IsCompleted(ctx, habitID, today.AddDate(0, 0, -offset))
		if err != nil {
			return 0, fmt.Errorf("failed to read completion ledger: %v", err)
		}
		if !completed {
			break
		}
		streak++
	}
	return streak, nil
}

// WeekGrid returns the Monday of today's week and the completion state for
// each of its 7 days. Days without a ledger entry report false.
func (s *HabitService) WeekGrid(ctx context.Context, habitID, callerID int64, today time.Time) (time.Time, map[string]bool, error) {
	if _, err := s.GetHabit(ctx, habitID, callerID); err != nil {
		return time.Time{}, nil, err
	}

	monday := WeekStart(today)
	days := make(map[string]bool, 7)
	for offset := 0; offset < 7; offset++ {
		day := monday.AddDate(0, 0, offset)
		completed, err := s.completions.IsCompleted(ctx, habitID, day)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("failed to read completion ledger: %v", err)
		}
		days[day.Format(models.DayFormat)] = completed
	}
	return monday, days, nil
}

// CloneHabit creates an independent copy of a public habit owned by the
// caller. The clone starts private with an empty ledger.
func (s *HabitService) CloneHabit(ctx context.Context, habitID, callerID int64) (*models.Habit, error) {
	source, err := s.GetHabit(ctx, habitID, callerID)
	if err != nil {
		return nil, err
	}

	clone := &models.Habit{
		UserID:                   callerID,
		Title:                    source.Title,
		Why:                      source.Why,
		IdentityGoal:             source.IdentityGoal,
		Loop:                     source.Loop,
		MinimalDose:              source.MinimalDose,
		ImplementationIntentions: source.ImplementationIntentions,
		Reminders:                source.Reminders,
		IsPublic:                 false,
	}

	created, err := s.repo.CreateHabit(ctx, clone)
	if err != nil {
		return nil, fmt.Errorf("failed to clone habit: %v", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"source_id": source.ID,
		"clone_id":  created.ID,
		"user_id":   callerID,
	}).Info("Habit cloned")
	return created, nil
}

// Subscribe lets the caller follow a public habit read-only. Subscribing to
// your own habit is rejected.
func (s *HabitService) Subscribe(ctx context.Context, habitID, callerID int64) error {
	habit, err := s.repo.GetHabitByID(ctx, habitID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get habit: %v", err)
	}

	if habit.UserID == callerID {
		return fmt.Errorf("cannot subscribe to your own habit")
	}
	if !habit.IsPublic {
		return ErrNotFound
	}

	if err := s.subscriptions.Subscribe(ctx, habitID, callerID); err != nil {
		return fmt.Errorf("failed to subscribe: %v", err)
	}
	return nil
}

// ListSubscriptions retrieves the habits the caller follows.
func (s *HabitService) ListSubscriptions(ctx context.Context, callerID int64) ([]models.Habit, error) {
	habits, err := s.subscriptions.GetSubscribedHabits(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions: %v", err)
	}
	return habits, nil
}

// ListHabitsWithReminders retrieves habits carrying a reminders payload.
func (s *HabitService) ListHabitsWithReminders(ctx context.Context) ([]models.Habit, error) {
	return s.repo.GetHabitsWithReminders(ctx)
}

// IsCompletedOn reports the ledger state of a habit for a single day.
func (s *HabitService) IsCompletedOn(ctx context.Context, habitID int64, day time.Time) (bool, error) {
	return s.completions.IsCompleted(ctx, habitID, day)
}
