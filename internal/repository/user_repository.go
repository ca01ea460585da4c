package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
)

// UserRepository handles database operations related to users.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user row and returns it with its assigned ID.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()

	lifebook, err := marshalJSONColumn(user.Lifebook)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, display_name, photo_url, lifebook, created_at)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		user.Email, user.HashedPassword, nullable(user.DisplayName), nullable(user.PhotoURL), lifebook, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert user")
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User created successfully")
	return user, nil
}

// GetUserByID fetches a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, display_name, photo_url, lifebook, created_at FROM users WHERE id = ?`, id)
}

// GetUserByEmail fetches a user by their email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, display_name, photo_url, lifebook, created_at FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var (
		user        models.User
		displayName sql.NullString
		photoURL    sql.NullString
		lifebook    sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.HashedPassword, &displayName, &photoURL, &lifebook, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.DisplayName = displayName.String
	user.PhotoURL = photoURL.String
	if err := unmarshalJSONColumn(lifebook, &user.Lifebook); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser overwrites a user's profile fields.
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	lifebook, err := marshalJSONColumn(user.Lifebook)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, photo_url = ?, lifebook = ? WHERE id = ?`,
		nullable(user.DisplayName), nullable(user.PhotoURL), lifebook, user.ID,
	)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to update user")
		return err
	}

	logger.Log.WithField("user_id", user.ID).Info("User updated successfully")
	return nil
}

// nullable maps an empty string onto a NULL column value.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
