// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connections

Open picks the driver for the configured database type:

	conn, err := db.Open("sqlite", "liftlog.db")
	conn, err := db.Open("postgres", "postgres://...")

SQLite uses modernc.org/sqlite (pure Go) and is limited to a single open
connection with foreign keys enabled. PostgreSQL uses lib/pq. All queries in
the application use $N placeholders, which both drivers accept.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - exercises: Per-session exercise entries by category
  - weight_entries: Body weight and composition
  - blood_entries: Blood lab markers
  - photo_progress: Progress photos (path into object storage)
  - thoughts: Free-text journal
  - personal_records: Best weight/reps/time per exercise
  - workout_logs: Workout sessions
  - timers: Stopwatch state per timer key
  - lap_times: Completed laps per timer
  - tab_settings: Navigation visibility and order
  - changes_audit: Exercise/body weight deltas (append-only)
  - pr_changes_audit: Personal record deltas (append-only)

# Relationships

	timers 1──* lap_times

The only foreign key uses ON DELETE CASCADE. Audit rows reference exercises
by name and category, not by key, so they outlive the rows they describe.
*/
package db
