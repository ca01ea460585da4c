package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
)

// HabitRepository handles database operations related to habits.
type HabitRepository struct {
	db *sql.DB
}

// NewHabitRepository creates a new instance of HabitRepository.
func NewHabitRepository(db *sql.DB) *HabitRepository {
	return &HabitRepository{db: db}
}

const habitColumns = `id, user_id, title, why, identity_goal, loop, minimal_dose, implementation_intentions, reminders, is_public, created_at`

// CreateHabit inserts a new habit owned by habit.UserID.
func (r *HabitRepository) CreateHabit(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	habit.CreatedAt = time.Now()

	loop, err := marshalJSONColumn(habit.Loop)
	if err != nil {
		return nil, err
	}
	reminders, err := marshalJSONColumn(habit.Reminders)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO habits (user_id, title, why, identity_goal, loop, minimal_dose, implementation_intentions, reminders, is_public, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		habit.UserID, habit.Title, nullable(habit.Why), nullable(habit.IdentityGoal), loop,
		nullable(habit.MinimalDose), nullable(habit.ImplementationIntentions), reminders, habit.IsPublic, habit.CreatedAt,
	).Scan(&habit.ID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert habit")
		return nil, err
	}

	logger.Log.WithField("habit_id", habit.ID).Info("Habit created successfully")
	return habit, nil
}

// GetHabitByID fetches a habit by its ID.
func (r *HabitRepository) GetHabitByID(ctx context.Context, id int64) (*models.Habit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	return scanHabit(row)
}

// GetHabitsByUser fetches all habits owned by a user, newest first.
func (r *HabitRepository) GetHabitsByUser(ctx context.Context, userID int64) ([]models.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to fetch habits")
		return nil, err
	}
	defer rows.Close()
	return collectHabits(rows)
}

// GetPublicHabits fetches all habits flagged public, newest first.
func (r *HabitRepository) GetPublicHabits(ctx context.Context) ([]models.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE is_public = 1 ORDER BY created_at DESC`)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch public habits")
		return nil, err
	}
	defer rows.Close()
	return collectHabits(rows)
}

// GetHabitsWithReminders fetches habits that carry a reminders payload.
func (r *HabitRepository) GetHabitsWithReminders(ctx context.Context) ([]models.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE reminders IS NOT NULL`)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch habits with reminders")
		return nil, err
	}
	defer rows.Close()
	return collectHabits(rows)
}

// UpdateHabit overwrites a habit's mutable fields.
func (r *HabitRepository) UpdateHabit(ctx context.Context, habit *models.Habit) error {
	loop, err := marshalJSONColumn(habit.Loop)
	if err != nil {
		return err
	}
	reminders, err := marshalJSONColumn(habit.Reminders)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE habits SET title = ?, why = ?, identity_goal = ?, loop = ?, minimal_dose = ?,
		 implementation_intentions = ?, reminders = ?, is_public = ? WHERE id = ?`,
		habit.Title, nullable(habit.Why), nullable(habit.IdentityGoal), loop, nullable(habit.MinimalDose),
		nullable(habit.ImplementationIntentions), reminders, habit.IsPublic, habit.ID,
	)
	if err != nil {
		logger.Log.WithError(err).WithField("habit_id", habit.ID).Error("Failed to update habit")
		return err
	}

	logger.Log.WithField("habit_id", habit.ID).Info("Habit updated successfully")
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHabit(row rowScanner) (*models.Habit, error) {
	var (
		habit        models.Habit
		why          sql.NullString
		identityGoal sql.NullString
		loop         sql.NullString
		minimalDose  sql.NullString
		intentions   sql.NullString
		reminders    sql.NullString
	)

	err := row.Scan(&habit.ID, &habit.UserID, &habit.Title, &why, &identityGoal, &loop,
		&minimalDose, &intentions, &reminders, &habit.IsPublic, &habit.CreatedAt)
	if err != nil {
		return nil, err
	}

	habit.Why = why.String
	habit.IdentityGoal = identityGoal.String
	habit.MinimalDose = minimalDose.String
	habit.ImplementationIntentions = intentions.String
	if err := unmarshalJSONColumn(loop, &habit.Loop); err != nil {
		return nil, err
	}
	if err := unmarshalJSONColumn(reminders, &habit.Reminders); err != nil {
		return nil, err
	}
	return &habit, nil
}

func collectHabits(rows *sql.Rows) ([]models.Habit, error) {
	var habits []models.Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			logger.Log.WithError(err).Error("Failed to scan habit row")
			return nil, err
		}
		habits = append(habits, *habit)
	}
	return habits, rows.Err()
}
