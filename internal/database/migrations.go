package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
)

// migrations is the ordered list of schema versions. Entries are append-only;
// the statements of an applied version must never change.
var migrations = [][]string{
	// v1: initial schema
	{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			display_name TEXT,
			photo_url TEXT,
			lifebook TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS habits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			why TEXT,
			identity_goal TEXT,
			loop TEXT,
			minimal_dose TEXT,
			implementation_intentions TEXT,
			reminders TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_habits_user ON habits(user_id)`,
		`CREATE TABLE IF NOT EXISTS habit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			habit_id INTEGER NOT NULL REFERENCES habits(id),
			day TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			UNIQUE(habit_id, day)
		)`,
		`CREATE TABLE IF NOT EXISTS groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			is_public INTEGER NOT NULL DEFAULT 1,
			owner_id INTEGER NOT NULL REFERENCES users(id),
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS group_members (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id INTEGER NOT NULL REFERENCES groups(id),
			user_id INTEGER NOT NULL REFERENCES users(id),
			role TEXT NOT NULL DEFAULT 'member',
			created_at TIMESTAMP NOT NULL,
			UNIQUE(group_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS proofs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id INTEGER NOT NULL REFERENCES groups(id),
			user_id INTEGER NOT NULL REFERENCES users(id),
			day TEXT NOT NULL,
			image_url TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_proofs_group_user_day ON proofs(group_id, user_id, day)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id INTEGER NOT NULL REFERENCES groups(id),
			user_id INTEGER NOT NULL REFERENCES users(id),
			content TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'chat',
			likes_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_group ON messages(group_id)`,
	},
	// v2: social trust and the tool library
	{
		`CREATE TABLE IF NOT EXISTS trusts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			truster_id INTEGER NOT NULL REFERENCES users(id),
			trustee_id INTEGER NOT NULL REFERENCES users(id),
			created_at TIMESTAMP NOT NULL,
			UNIQUE(truster_id, trustee_id)
		)`,
		`CREATE TABLE IF NOT EXISTS tools (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			keywords TEXT,
			steps TEXT,
			description TEXT NOT NULL,
			created_by_user_id INTEGER REFERENCES users(id)
		)`,
	},
	// v3: group descriptions, per-member weekly quotas, proof captions and
	// image attachments on messages
	{
		`ALTER TABLE groups ADD COLUMN description TEXT`,
		`ALTER TABLE group_members ADD COLUMN habit_title TEXT`,
		`ALTER TABLE group_members ADD COLUMN frequency_per_week INTEGER NOT NULL DEFAULT 7`,
		`ALTER TABLE proofs ADD COLUMN caption TEXT`,
		`ALTER TABLE messages ADD COLUMN image_url TEXT`,
	},
	// v4: public habits, subscriptions and notifications
	{
		`ALTER TABLE habits ADD COLUMN is_public INTEGER NOT NULL DEFAULT 0`,
		`CREATE TABLE IF NOT EXISTS habit_subscriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			habit_id INTEGER NOT NULL REFERENCES habits(id),
			user_id INTEGER NOT NULL REFERENCES users(id),
			created_at TIMESTAMP NOT NULL,
			UNIQUE(habit_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id)`,
	},
}

// Migrate applies all pending schema versions inside transactions.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %v", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %v", err)
	}

	for version := current + 1; version <= len(migrations); version++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %v", version, err)
		}

		for _, stmt := range migrations[version-1] {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d failed: %v", version, err)
			}
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`, version, time.Now()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %v", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %v", version, err)
		}

		logger.Log.WithField("version", version).Info("Applied schema migration")
	}

	return nil
}
