// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/danielhkuo/liftlog/audit"
	"github.com/danielhkuo/liftlog/models"
)

const dateLayout = "2006-01-02"

var dateRange = []filter{
	{param: "from", column: "date", op: ">="},
	{param: "to", column: "date", op: "<="},
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// ExerciseHandler serves /api/exercises. Weight and reps changes are audited.
type ExerciseHandler struct {
	*resource[models.Exercise]
}

func NewExerciseHandler(db *sql.DB, audits *audit.Writer) *ExerciseHandler {
	return &ExerciseHandler{&resource[models.Exercise]{
		db:    db,
		name:  "exercise",
		table: "exercises",
		columns: []string{
			"category", "name", "weight", "reps", "sets", "duration",
			"distance", "pace", "calories", "rpe", "notes",
		},
		orderBy: "created_at DESC",
		filters: []filter{
			{param: "category", column: "category", op: "="},
			{param: "name", column: "name", op: "="},
		},
		values: func(e *models.Exercise) []any {
			return []any{
				e.Category, e.Name, nullable(e.Weight), nullable(e.Reps), nullable(e.Sets),
				nullable(e.Duration), nullable(e.Distance), nullable(e.Pace),
				nullable(e.Calories), nullable(e.RPE), nullable(e.Notes),
			}
		},
		scan: func(s rowScanner) (models.Exercise, error) {
			var e models.Exercise
			err := s.Scan(&e.ID, &e.Category, &e.Name, &e.Weight, &e.Reps, &e.Sets,
				&e.Duration, &e.Distance, &e.Pace, &e.Calories, &e.RPE, &e.Notes,
				&e.CreatedAt, &e.UpdatedAt)
			return e, err
		},
		meta: func(e *models.Exercise) (*string, *time.Time, *time.Time) {
			return &e.ID, &e.CreatedAt, &e.UpdatedAt
		},
		validate: func(e *models.Exercise) string {
			switch {
			case e.Category == "":
				return "category is required"
			case e.Name == "":
				return "name is required"
			}
			return ""
		},
		written: func(ctx context.Context, before, after *models.Exercise) {
			var prevWeight *float64
			var prevReps *int64
			if before != nil {
				prevWeight, prevReps = before.Weight, before.Reps
			}

			var changes []audit.Change
			if c, ok := audit.Track("weight", prevWeight, after.Weight); ok {
				changes = append(changes, c)
			}
			if c, ok := audit.TrackInt("reps", prevReps, after.Reps); ok {
				changes = append(changes, c)
			}
			audits.Record(ctx, audit.TableChanges, after.Name, after.Category, changes)
		},
	}}
}

// WeightHandler serves /api/weights. Weight, body fat and muscle mass changes
// are audited under the "Body Weight" exercise name.
type WeightHandler struct {
	*resource[models.WeightEntry]
	audits *audit.Writer
}

func NewWeightHandler(db *sql.DB, audits *audit.Writer) *WeightHandler {
	h := &WeightHandler{audits: audits}
	h.resource = &resource[models.WeightEntry]{
		db:    db,
		name:  "weight entry",
		table: "weight_entries",
		columns: []string{
			"date", "weight", "body_fat", "muscle_mass", "bmi", "water", "visceral_fat", "notes",
		},
		orderBy: "date DESC, created_at DESC",
		filters: dateRange,
		values: func(e *models.WeightEntry) []any {
			return []any{
				e.Date, nullable(e.Weight), nullable(e.BodyFat), nullable(e.MuscleMass),
				nullable(e.BMI), nullable(e.Water), nullable(e.VisceralFat), nullable(e.Notes),
			}
		},
		scan: func(s rowScanner) (models.WeightEntry, error) {
			var e models.WeightEntry
			err := s.Scan(&e.ID, &e.Date, &e.Weight, &e.BodyFat, &e.MuscleMass,
				&e.BMI, &e.Water, &e.VisceralFat, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
			return e, err
		},
		meta: func(e *models.WeightEntry) (*string, *time.Time, *time.Time) {
			return &e.ID, &e.CreatedAt, &e.UpdatedAt
		},
		validate: func(e *models.WeightEntry) string {
			switch {
			case e.Date == "":
				return "date is required"
			case !validDate(e.Date):
				return "date must be YYYY-MM-DD"
			case e.Weight == nil:
				return "weight is required"
			}
			return ""
		},
		written: h.recordChanges,
	}
	return h
}

func (h *WeightHandler) recordChanges(ctx context.Context, before, after *models.WeightEntry) {
	var prev models.WeightEntry
	if before != nil {
		prev = *before
	}

	var changes []audit.Change
	if c, ok := audit.Track("weight", prev.Weight, after.Weight); ok {
		changes = append(changes, c)
	}
	if c, ok := audit.Track("bodyFat", prev.BodyFat, after.BodyFat); ok {
		changes = append(changes, c)
	}
	if c, ok := audit.Track("muscleMass", prev.MuscleMass, after.MuscleMass); ok {
		changes = append(changes, c)
	}
	h.audits.Record(ctx, audit.TableChanges, models.BodyWeightExercise, models.CategoryBodyWeight, changes)
}

// BloodHandler serves /api/bloods
type BloodHandler struct {
	*resource[models.BloodEntry]
}

func NewBloodHandler(db *sql.DB) *BloodHandler {
	return &BloodHandler{&resource[models.BloodEntry]{
		db:    db,
		name:  "blood entry",
		table: "blood_entries",
		columns: []string{
			"date", "marker", "value", "unit", "reference_min", "reference_max", "lab", "notes",
		},
		orderBy: "date DESC, marker",
		filters: append([]filter{{param: "marker", column: "marker", op: "="}}, dateRange...),
		values: func(e *models.BloodEntry) []any {
			return []any{
				e.Date, e.Marker, nullable(e.Value), nullable(e.Unit),
				nullable(e.ReferenceMin), nullable(e.ReferenceMax), nullable(e.Lab), nullable(e.Notes),
			}
		},
		scan: func(s rowScanner) (models.BloodEntry, error) {
			var e models.BloodEntry
			err := s.Scan(&e.ID, &e.Date, &e.Marker, &e.Value, &e.Unit,
				&e.ReferenceMin, &e.ReferenceMax, &e.Lab, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
			return e, err
		},
		meta: func(e *models.BloodEntry) (*string, *time.Time, *time.Time) {
			return &e.ID, &e.CreatedAt, &e.UpdatedAt
		},
		validate: func(e *models.BloodEntry) string {
			switch {
			case e.Date == "":
				return "date is required"
			case !validDate(e.Date):
				return "date must be YYYY-MM-DD"
			case e.Marker == "":
				return "marker is required"
			case e.Value == nil:
				return "value is required"
			}
			return ""
		},
	}}
}

// PhotoHandler serves /api/photos. photoUrl is the display path returned by
// the upload flow.
type PhotoHandler struct {
	*resource[models.PhotoProgress]
}

func NewPhotoHandler(db *sql.DB) *PhotoHandler {
	return &PhotoHandler{&resource[models.PhotoProgress]{
		db:      db,
		name:    "photo",
		table:   "photo_progress",
		columns: []string{"title", "description", "photo_url", "body_part", "weight", "taken_at"},
		orderBy: "created_at DESC",
		filters: []filter{{param: "bodyPart", column: "body_part", op: "="}},
		values: func(p *models.PhotoProgress) []any {
			return []any{
				p.Title, nullable(p.Description), p.PhotoURL, nullable(p.BodyPart),
				nullable(p.Weight), nullable(p.TakenAt),
			}
		},
		scan: func(s rowScanner) (models.PhotoProgress, error) {
			var p models.PhotoProgress
			err := s.Scan(&p.ID, &p.Title, &p.Description, &p.PhotoURL, &p.BodyPart,
				&p.Weight, &p.TakenAt, &p.CreatedAt, &p.UpdatedAt)
			return p, err
		},
		meta: func(p *models.PhotoProgress) (*string, *time.Time, *time.Time) {
			return &p.ID, &p.CreatedAt, &p.UpdatedAt
		},
		validate: func(p *models.PhotoProgress) string {
			switch {
			case p.Title == "":
				return "title is required"
			case p.PhotoURL == "":
				return "photoUrl is required"
			}
			return ""
		},
	}}
}

// ThoughtHandler serves /api/thoughts
type ThoughtHandler struct {
	*resource[models.Thought]
}

func NewThoughtHandler(db *sql.DB) *ThoughtHandler {
	return &ThoughtHandler{&resource[models.Thought]{
		db:      db,
		name:    "thought",
		table:   "thoughts",
		columns: []string{"content", "mood", "tags", "category"},
		orderBy: "created_at DESC",
		filters: []filter{
			{param: "category", column: "category", op: "="},
			{param: "mood", column: "mood", op: "="},
		},
		values: func(t *models.Thought) []any {
			return []any{t.Content, nullable(t.Mood), nullable(t.Tags), nullable(t.Category)}
		},
		scan: func(s rowScanner) (models.Thought, error) {
			var t models.Thought
			err := s.Scan(&t.ID, &t.Content, &t.Mood, &t.Tags, &t.Category, &t.CreatedAt, &t.UpdatedAt)
			return t, err
		},
		meta: func(t *models.Thought) (*string, *time.Time, *time.Time) {
			return &t.ID, &t.CreatedAt, &t.UpdatedAt
		},
		validate: func(t *models.Thought) string {
			if t.Content == "" {
				return "content is required"
			}
			return ""
		},
	}}
}

// RecordHandler serves /api/records. Weight, reps and time changes are
// audited to pr_changes_audit.
type RecordHandler struct {
	*resource[models.PersonalRecord]
}

func NewRecordHandler(db *sql.DB, audits *audit.Writer) *RecordHandler {
	return &RecordHandler{&resource[models.PersonalRecord]{
		db:    db,
		name:  "personal record",
		table: "personal_records",
		columns: []string{
			"category", "exercise_name", "weight", "reps", "time_seconds", "sort_order", "notes",
		},
		orderBy: "category, sort_order, created_at",
		filters: []filter{{param: "category", column: "category", op: "="}},
		values: func(p *models.PersonalRecord) []any {
			return []any{
				p.Category, p.ExerciseName, nullable(p.Weight), nullable(p.Reps),
				nullable(p.Time), p.SortOrder, nullable(p.Notes),
			}
		},
		scan: func(s rowScanner) (models.PersonalRecord, error) {
			var p models.PersonalRecord
			err := s.Scan(&p.ID, &p.Category, &p.ExerciseName, &p.Weight, &p.Reps,
				&p.Time, &p.SortOrder, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
			return p, err
		},
		meta: func(p *models.PersonalRecord) (*string, *time.Time, *time.Time) {
			return &p.ID, &p.CreatedAt, &p.UpdatedAt
		},
		validate: func(p *models.PersonalRecord) string {
			switch {
			case p.Category == "":
				return "category is required"
			case p.ExerciseName == "":
				return "exerciseName is required"
			}
			return ""
		},
		written: func(ctx context.Context, before, after *models.PersonalRecord) {
			var prev models.PersonalRecord
			if before != nil {
				prev = *before
			}

			var changes []audit.Change
			if c, ok := audit.Track("weight", prev.Weight, after.Weight); ok {
				changes = append(changes, c)
			}
			if c, ok := audit.TrackInt("reps", prev.Reps, after.Reps); ok {
				changes = append(changes, c)
			}
			if c, ok := audit.Track("time", prev.Time, after.Time); ok {
				changes = append(changes, c)
			}
			audits.Record(ctx, audit.TablePRChanges, after.ExerciseName, after.Category, changes)
		},
	}}
}

// WorkoutLogHandler serves /api/workout-logs
type WorkoutLogHandler struct {
	*resource[models.WorkoutLog]
}

func NewWorkoutLogHandler(db *sql.DB) *WorkoutLogHandler {
	return &WorkoutLogHandler{&resource[models.WorkoutLog]{
		db:      db,
		name:    "workout log",
		table:   "workout_logs",
		columns: []string{"category", "date", "duration_minutes", "summary", "completed", "notes"},
		orderBy: "date DESC, created_at DESC",
		filters: append([]filter{{param: "category", column: "category", op: "="}}, dateRange...),
		values: func(l *models.WorkoutLog) []any {
			return []any{
				l.Category, l.Date, nullable(l.DurationMinutes), nullable(l.Summary),
				l.Completed, nullable(l.Notes),
			}
		},
		scan: func(s rowScanner) (models.WorkoutLog, error) {
			var l models.WorkoutLog
			err := s.Scan(&l.ID, &l.Category, &l.Date, &l.DurationMinutes, &l.Summary,
				&l.Completed, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
			return l, err
		},
		meta: func(l *models.WorkoutLog) (*string, *time.Time, *time.Time) {
			return &l.ID, &l.CreatedAt, &l.UpdatedAt
		},
		validate: func(l *models.WorkoutLog) string {
			switch {
			case l.Category == "":
				return "category is required"
			case l.Date == "":
				return "date is required"
			case !validDate(l.Date):
				return "date must be YYYY-MM-DD"
			}
			return ""
		},
	}}
}

// TabHandler serves /api/tabs
type TabHandler struct {
	*resource[models.TabSettings]
}

func NewTabHandler(db *sql.DB) *TabHandler {
	return &TabHandler{&resource[models.TabSettings]{
		db:      db,
		name:    "tab",
		table:   "tab_settings",
		columns: []string{"tab_key", "label", "visible", "sort_order"},
		orderBy: "sort_order, tab_key",
		values: func(t *models.TabSettings) []any {
			return []any{t.TabKey, t.Label, t.Visible, t.SortOrder}
		},
		scan: func(s rowScanner) (models.TabSettings, error) {
			var t models.TabSettings
			err := s.Scan(&t.ID, &t.TabKey, &t.Label, &t.Visible, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt)
			return t, err
		},
		meta: func(t *models.TabSettings) (*string, *time.Time, *time.Time) {
			return &t.ID, &t.CreatedAt, &t.UpdatedAt
		},
		validate: func(t *models.TabSettings) string {
			switch {
			case t.TabKey == "":
				return "tabKey is required"
			case t.Label == "":
				return "label is required"
			}
			return ""
		},
	}}
}
