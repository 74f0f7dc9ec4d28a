// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the database of the given type and verifies the connection.
// dbType is "sqlite" (modernc, pure Go) or "postgres" (lib/pq).
func Open(dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case "sqlite":
		driver = "sqlite"
	case "postgres":
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbType == "sqlite" {
		// SQLite is single-writer; pragmas are per connection, so keep one.
		conn.SetMaxOpenConns(1)
		if err := configurePragmas(conn); err != nil {
			conn.Close()
			return nil, err
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

func configurePragmas(conn *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Tables lists every table in dependency order (children after parents).
var Tables = []string{
	"exercises",
	"weight_entries",
	"blood_entries",
	"photo_progress",
	"thoughts",
	"personal_records",
	"workout_logs",
	"timers",
	"lap_times",
	"tab_settings",
	"changes_audit",
	"pr_changes_audit",
}

// The schema sticks to types both SQLite and PostgreSQL accept.
const schema = `
-- Exercises
CREATE TABLE IF NOT EXISTS exercises (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    name TEXT NOT NULL,
    weight DOUBLE PRECISION,
    reps BIGINT,
    sets BIGINT,
    duration DOUBLE PRECISION,
    distance DOUBLE PRECISION,
    pace TEXT,
    calories DOUBLE PRECISION,
    rpe DOUBLE PRECISION,
    notes TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_exercises_category ON exercises(category);

-- Body weight and composition
CREATE TABLE IF NOT EXISTS weight_entries (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL,
    weight DOUBLE PRECISION NOT NULL,
    body_fat DOUBLE PRECISION,
    muscle_mass DOUBLE PRECISION,
    bmi DOUBLE PRECISION,
    water DOUBLE PRECISION,
    visceral_fat DOUBLE PRECISION,
    notes TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_weight_entries_date ON weight_entries(date);

-- Blood labs
CREATE TABLE IF NOT EXISTS blood_entries (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL,
    marker TEXT NOT NULL,
    value DOUBLE PRECISION NOT NULL,
    unit TEXT,
    reference_min DOUBLE PRECISION,
    reference_max DOUBLE PRECISION,
    lab TEXT,
    notes TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_blood_entries_marker ON blood_entries(marker, date);

-- Progress photos
CREATE TABLE IF NOT EXISTS photo_progress (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    photo_url TEXT NOT NULL,
    body_part TEXT,
    weight DOUBLE PRECISION,
    taken_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Journal
CREATE TABLE IF NOT EXISTS thoughts (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    mood TEXT,
    tags TEXT,
    category TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Personal records
CREATE TABLE IF NOT EXISTS personal_records (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    exercise_name TEXT NOT NULL,
    weight DOUBLE PRECISION,
    reps BIGINT,
    time_seconds DOUBLE PRECISION,
    sort_order BIGINT NOT NULL DEFAULT 0,
    notes TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_personal_records_category ON personal_records(category, sort_order);

-- Workout sessions
CREATE TABLE IF NOT EXISTS workout_logs (
    id TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    date TEXT NOT NULL,
    duration_minutes DOUBLE PRECISION,
    summary TEXT,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    notes TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Stopwatch state, one row per timer key
CREATE TABLE IF NOT EXISTS timers (
    id TEXT PRIMARY KEY,
    timer_key TEXT NOT NULL UNIQUE,
    is_running BOOLEAN NOT NULL DEFAULT FALSE,
    session_start BIGINT NOT NULL DEFAULT 0,
    lap_start BIGINT NOT NULL DEFAULT 0,
    elapsed_before_start BIGINT NOT NULL DEFAULT 0,
    lap_elapsed_before_start BIGINT NOT NULL DEFAULT 0,
    date_key TEXT NOT NULL DEFAULT '',
    auto_reset_daily BOOLEAN NOT NULL DEFAULT TRUE,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Completed laps; lap_number is not unique (see timer.Lap)
CREATE TABLE IF NOT EXISTS lap_times (
    id TEXT PRIMARY KEY,
    timer_id TEXT NOT NULL REFERENCES timers(id) ON DELETE CASCADE,
    position BIGINT NOT NULL,
    lap_number BIGINT NOT NULL,
    lap_time BIGINT NOT NULL,
    start_offset BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lap_times_timer_id ON lap_times(timer_id, position);

-- Navigation settings
CREATE TABLE IF NOT EXISTS tab_settings (
    id TEXT PRIMARY KEY,
    tab_key TEXT NOT NULL UNIQUE,
    label TEXT NOT NULL,
    visible BOOLEAN NOT NULL DEFAULT TRUE,
    sort_order BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Append-only audit logs
CREATE TABLE IF NOT EXISTS changes_audit (
    id TEXT PRIMARY KEY,
    exercise_name TEXT NOT NULL,
    category TEXT NOT NULL,
    field TEXT NOT NULL,
    previous_value DOUBLE PRECISION,
    new_value DOUBLE PRECISION,
    percentage_change DOUBLE PRECISION NOT NULL DEFAULT 0,
    changed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_changes_audit_exercise ON changes_audit(exercise_name, category);

CREATE TABLE IF NOT EXISTS pr_changes_audit (
    id TEXT PRIMARY KEY,
    exercise_name TEXT NOT NULL,
    category TEXT NOT NULL,
    field TEXT NOT NULL,
    previous_value DOUBLE PRECISION,
    new_value DOUBLE PRECISION,
    percentage_change DOUBLE PRECISION NOT NULL DEFAULT 0,
    changed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pr_changes_audit_exercise ON pr_changes_audit(exercise_name, category);
`
