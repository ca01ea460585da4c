package database

import (
	"database/sql"
	"fmt"

	"github.com/MarcBaumholz/habit-toolbox/internal/config"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
	_ "modernc.org/sqlite"
)

// ConnectDB opens the SQLite database and brings the schema up to date.
func ConnectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	// SQLite allows a single writer; serializing through one connection
	// avoids SQLITE_BUSY errors under concurrent requests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Log.WithField("path", cfg.DBPath).Info("Database connected and migrated")
	return db, nil
}
