// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/liftlog/models"
)

// Audit tables
const (
	TableChanges   = "changes_audit"
	TablePRChanges = "pr_changes_audit"
)

// Change is one tracked numeric field before and after a mutation.
type Change struct {
	Field    string
	Previous *float64
	New      *float64
}

// PercentageChange is (next-prev)/prev*100, or 0 when there is no usable
// previous value.
func PercentageChange(prev *float64, next float64) float64 {
	if prev == nil || *prev == 0 {
		return 0
	}
	return (next - *prev) / *prev * 100
}

// Track returns the change for a field if its new value is set and differs
// from the previous one. Clearing a field is not recorded.
func Track(field string, prev, next *float64) (Change, bool) {
	if next == nil {
		return Change{}, false
	}
	if prev != nil && *prev == *next {
		return Change{}, false
	}
	return Change{Field: field, Previous: copyFloat(prev), New: copyFloat(next)}, true
}

// TrackInt is Track for integer columns such as reps.
func TrackInt(field string, prev, next *int64) (Change, bool) {
	return Track(field, intToFloat(prev), intToFloat(next))
}

func intToFloat(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

// Writer appends audit rows. Failures are logged and swallowed so that
// the mutation being audited is never affected.
type Writer struct {
	db  *sql.DB
	now func() time.Time
}

func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db, now: time.Now}
}

// Record inserts one row per change into table, tagged with the exercise
// name and category. It returns the number of rows written. A nil Writer
// records nothing.
func (w *Writer) Record(ctx context.Context, table, exerciseName, category string, changes []Change) int {
	if w == nil {
		return 0
	}
	if table != TableChanges && table != TablePRChanges {
		slog.Error("unknown audit table", "table", table)
		return 0
	}

	written := 0
	changedAt := w.now()
	for _, c := range changes {
		if c.New == nil {
			continue
		}
		_, err := w.db.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (id, exercise_name, category, field, previous_value, new_value, percentage_change, changed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, table), uuid.NewString(), exerciseName, category, c.Field,
			nullable(c.Previous), *c.New, PercentageChange(c.Previous, *c.New), changedAt)
		if err != nil {
			slog.Error("failed to write audit row",
				"table", table,
				"exercise", exerciseName,
				"field", c.Field,
				"error", err,
			)
			continue
		}
		written++
	}

	if written > 0 {
		slog.Info("audit rows written", "table", table, "exercise", exerciseName, "count", written)
	}
	return written
}

// List returns audit rows, newest first, optionally filtered by exercise
// name and category.
func List(ctx context.Context, db *sql.DB, table, exerciseName, category string) ([]models.AuditEntry, error) {
	if table != TableChanges && table != TablePRChanges {
		return nil, fmt.Errorf("unknown audit table %q", table)
	}

	query := fmt.Sprintf(`
		SELECT id, exercise_name, category, field, previous_value, new_value, percentage_change, changed_at
		FROM %s
		WHERE ($1 = '' OR exercise_name = $1) AND ($2 = '' OR category = $2)
		ORDER BY changed_at DESC
	`, table)

	rows, err := db.QueryContext(ctx, query, exerciseName, category)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(
			&e.ID,
			&e.ExerciseName,
			&e.Category,
			&e.Field,
			&e.PreviousValue,
			&e.NewValue,
			&e.PercentageChange,
			&e.ChangedAt,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes one audit row. It returns sql.ErrNoRows if id is unknown.
func Delete(ctx context.Context, db *sql.DB, table, id string) error {
	if table != TableChanges && table != TablePRChanges {
		return fmt.Errorf("unknown audit table %q", table)
	}

	result, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
