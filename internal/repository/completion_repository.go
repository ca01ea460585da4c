package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
)

// CompletionRepository handles the per-(habit, day) completion ledger.
type CompletionRepository struct {
	db *sql.DB
}

// NewCompletionRepository creates a new instance of CompletionRepository.
func NewCompletionRepository(db *sql.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// ToggleDay flips the completed flag for (habitID, day), creating the row as
// completed on first touch. The upsert makes the toggle a single atomic
// statement. Returns the new completed value.
func (r *CompletionRepository) ToggleDay(ctx context.Context, habitID int64, day time.Time) (bool, error) {
	var completed bool
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO habit_logs (habit_id, day, completed, created_at)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT(habit_id, day) DO UPDATE SET completed = NOT habit_logs.completed
		 RETURNING completed`,
		habitID, day.Format(models.DayFormat), time.Now(),
	).Scan(&completed)
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", habitID).Error("Failed to toggle habit log")
		return false, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"habit_id":  habitID,
		"day":       day.Format(models.DayFormat),
		"completed": completed,
	}).Info("Habit log toggled")
	return completed, nil
}

// IsCompleted reports whether the habit has a completed entry for the day.
// A missing row counts as not completed.
func (r *CompletionRepository) IsCompleted(ctx context.Context, habitID int64, day time.Time) (bool, error) {
	var completed bool
	err := r.db.QueryRowContext(ctx,
		`SELECT completed FROM habit_logs WHERE habit_id = ? AND day = ?`,
		habitID, day.Format(models.DayFormat),
	).Scan(&completed)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", habitID).Error("Failed to look up habit log")
		return false, err
	}
	return completed, nil
}

// GetCompletedSince fetches all completed log rows since the given day for
// habits owned by the user.
func (r *CompletionRepository) GetCompletedSince(ctx context.Context, userID int64, since time.Time) ([]models.HabitLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.habit_id, l.day, l.completed, l.created_at
		 FROM habit_logs l
		 JOIN habits h ON h.id = l.habit_id
		 WHERE h.user_id = ? AND l.day >= ? AND l.completed = 1`,
		userID, since.Format(models.DayFormat),
	)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to fetch completed logs")
		return nil, err
	}
	defer rows.Close()

	var logs []models.HabitLog
	for rows.Next() {
		var log models.HabitLog
		if err := rows.Scan(&log.ID, &log.HabitID, &log.Day, &log.Completed, &log.CreatedAt); err != nil {
			logger.Log.WithError(err).Error("Failed to scan habit log row")
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
