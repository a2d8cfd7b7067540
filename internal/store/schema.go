package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema bootstraps the tables on startup. Dates are stored in the
// YYYY-MM-DD wire format so lexical order is chronological order.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		class       TEXT NOT NULL,
		age         INT NOT NULL DEFAULT 0,
		mother_name TEXT NOT NULL DEFAULT '',
		phone       TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL DEFAULT 'member',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		student_id   TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		date         TEXT NOT NULL,
		present      BOOLEAN NOT NULL DEFAULT FALSE,
		dismissed_by TEXT,
		day          TEXT,
		PRIMARY KEY (student_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS volunteers (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schedule (
		date           TEXT NOT NULL,
		class_name     TEXT NOT NULL,
		supervisor_id  TEXT,
		coordinator_id TEXT,
		desk_id        TEXT,
		minister_ids   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (date, class_name)
	)`,
	`CREATE TABLE IF NOT EXISTS topics (
		id          SERIAL PRIMARY KEY,
		date        TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance (date)`,
}

// EnsureSchema creates missing tables. Safe to run on every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
