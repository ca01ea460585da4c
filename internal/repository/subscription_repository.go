package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
)

// SubscriptionRepository handles read-only follows of public habits.
type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Subscribe records a follow. Subscribing twice is a no-op.
func (r *SubscriptionRepository) Subscribe(ctx context.Context, habitID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO habit_subscriptions (habit_id, user_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(habit_id, user_id) DO NOTHING`,
		habitID, userID, time.Now(),
	)
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", habitID).Error("Failed to subscribe to habit")
		return err
	}
	return nil
}

// GetSubscribedHabits fetches the habits a user follows, newest follow first.
func (r *SubscriptionRepository) GetSubscribedHabits(ctx context.Context, userID int64) ([]models.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT h.id, h.user_id, h.title, h.why, h.identity_goal, h.loop, h.minimal_dose,
		        h.implementation_intentions, h.reminders, h.is_public, h.created_at
		 FROM habit_subscriptions s
		 JOIN habits h ON h.id = s.habit_id
		 WHERE s.user_id = ?
		 ORDER BY s.created_at DESC`,
		userID,
	)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to fetch subscribed habits")
		return nil, err
	}
	defer rows.Close()
	return collectHabits(rows)
}
