package virtualfs

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/antibyte/retrobasic/pkg/logger"
)

// InitDB opens the SQLite database at dbPath and checks that it is reachable.
func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info(logger.AreaDatabase, "database opened: %s", dbPath)
	return db, nil
}

// CreateTables ensures the program file table exists.
func CreateTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS virtual_files (
			volume TEXT NOT NULL,
			name TEXT NOT NULL,
			content BLOB,
			mod_time INTEGER NOT NULL,
			PRIMARY KEY (volume, name)
		)`,
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}
