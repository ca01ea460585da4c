package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
)

// BestHabit names the habit with the most completions in the summary window.
type BestHabit struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// WeeklySummary aggregates a user's recent activity.
type WeeklySummary struct {
	TotalCompletions int              `json:"total_completions"`
	BestHabit        *BestHabit       `json:"best_habit"`
	TrustedInsights  []models.Message `json:"trusted_insights"`
}

// SummaryService derives the weekly summary from the completion ledger, the
// trust relation and the learning feed.
type SummaryService struct {
	completions *repository.CompletionRepository
	habits      *repository.HabitRepository
	trusts      *repository.TrustRepository
	messages    *repository.MessageRepository
}

// NewSummaryService creates a new instance of SummaryService.
func NewSummaryService(completions *repository.CompletionRepository, habits *repository.HabitRepository, trusts *repository.TrustRepository, messages *repository.MessageRepository) *SummaryService {
	return &SummaryService{
		completions: completions,
		habits:      habits,
		trusts:      trusts,
		messages:    messages,
	}
}

// GetWeeklySummary aggregates the caller's completions over the last 7 days,
// their best habit by completion count, and learnings posted by trusted
// users ordered by likes.
func (s *SummaryService) GetWeeklySummary(ctx context.Context, userID int64, today time.Time) (*WeeklySummary, error) {
	since := today.AddDate(0, 0, -7)

	logs, err := s.completions.GetCompletedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions: %v", err)
	}

	summary := &WeeklySummary{
		TotalCompletions: len(logs),
		TrustedInsights:  []models.Message{},
	}

	counts := make(map[int64]int)
	for _, log := range logs {
		counts[log.HabitID]++
	}

	var bestID int64
	bestCount := 0
	for habitID, count := range counts {
		if count > bestCount || (count == bestCount && habitID < bestID) {
			bestID, bestCount = habitID, count
		}
	}
	if bestCount > 0 {
		habit, err := s.habits.GetHabitByID(ctx, bestID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to fetch best habit: %v", err)
		}
		if habit != nil {
			summary.BestHabit = &BestHabit{ID: habit.ID, Title: habit.Title}
		}
	}

	trustedIDs, err := s.trusts.GetTrustedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trusted users: %v", err)
	}
	if len(trustedIDs) > 0 {
		insights, err := s.messages.GetLearnings(ctx, trustedIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch trusted insights: %v", err)
		}
		summary.TrustedInsights = insights
	}

	return summary, nil
}
