package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connect opens the database and makes sure the schema exists
func Connect(driver, dsn string) (*sqlx.DB, error) {
	if driver == DriverSQLite && dsn != ":memory:" {
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	var stmts []string
	if db.DriverName() == DriverPostgres {
		stmts = []string{`
			CREATE TABLE IF NOT EXISTS users (
				id BIGINT PRIMARY KEY,
				name TEXT,
				sleep_status INTEGER NOT NULL DEFAULT 0
			)`, `
			CREATE TABLE IF NOT EXISTS sleep_records (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(id),
				sleep_date TEXT NOT NULL,
				sleep_time TEXT,
				wake_time TEXT,
				duration DOUBLE PRECISION,
				sleep_quality INTEGER,
				note TEXT,
				sleep_instant DOUBLE PRECISION,
				wake_instant DOUBLE PRECISION,
				UNIQUE (user_id, sleep_date)
			)`,
		}
	} else {
		stmts = []string{`
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY,
				name TEXT,
				sleep_status INTEGER NOT NULL DEFAULT 0
			)`, `
			CREATE TABLE IF NOT EXISTS sleep_records (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				sleep_date TEXT NOT NULL,
				sleep_time TEXT,
				wake_time TEXT,
				duration REAL,
				sleep_quality INTEGER,
				note TEXT,
				sleep_instant REAL,
				wake_instant REAL,
				FOREIGN KEY (user_id) REFERENCES users(id),
				UNIQUE (user_id, sleep_date)
			)`,
		}
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
