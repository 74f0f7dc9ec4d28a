package models

import "time"

// Workout categories used by the UI. Category columns are free strings;
// these are the values the pages ship with.
const (
	CategoryPush       = "push"
	CategoryPull       = "pull"
	CategoryLegs       = "legs"
	CategoryCardio     = "cardio"
	CategoryBodyWeight = "bodyweight"
)

// BodyWeightExercise tags body weight audit rows in changes_audit.
const BodyWeightExercise = "Body Weight"

// Domain types

type Exercise struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Name      string    `json:"name"`
	Weight    *float64  `json:"weight,omitempty"`
	Reps      *int64    `json:"reps,omitempty"`
	Sets      *int64    `json:"sets,omitempty"`
	Duration  *float64  `json:"duration,omitempty"`
	Distance  *float64  `json:"distance,omitempty"`
	Pace      *string   `json:"pace,omitempty"`
	Calories  *float64  `json:"calories,omitempty"`
	RPE       *float64  `json:"rpe,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WeightEntry struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Weight      *float64  `json:"weight"`
	BodyFat     *float64  `json:"bodyFat,omitempty"`
	MuscleMass  *float64  `json:"muscleMass,omitempty"`
	BMI         *float64  `json:"bmi,omitempty"`
	Water       *float64  `json:"water,omitempty"`
	VisceralFat *float64  `json:"visceralFat,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type BloodEntry struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	Marker       string    `json:"marker"`
	Value        *float64  `json:"value"`
	Unit         *string   `json:"unit,omitempty"`
	ReferenceMin *float64  `json:"referenceMin,omitempty"`
	ReferenceMax *float64  `json:"referenceMax,omitempty"`
	Lab          *string   `json:"lab,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type PhotoProgress struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	PhotoURL    string     `json:"photoUrl"`
	BodyPart    *string    `json:"bodyPart,omitempty"`
	Weight      *float64   `json:"weight,omitempty"`
	TakenAt     *time.Time `json:"takenAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Thought struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Mood      *string   `json:"mood,omitempty"`
	Tags      *string   `json:"tags,omitempty"`
	Category  *string   `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PersonalRecord struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	ExerciseName string    `json:"exerciseName"`
	Weight       *float64  `json:"weight,omitempty"`
	Reps         *int64    `json:"reps,omitempty"`
	Time         *float64  `json:"time,omitempty"` // seconds
	SortOrder    int64     `json:"sortOrder"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type WorkoutLog struct {
	ID              string    `json:"id"`
	Category        string    `json:"category"`
	Date            string    `json:"date"`
	DurationMinutes *float64  `json:"durationMinutes,omitempty"`
	Summary         *string   `json:"summary,omitempty"`
	Completed       bool      `json:"completed"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type TabSettings struct {
	ID        string    `json:"id"`
	TabKey    string    `json:"tabKey"`
	Label     string    `json:"label"`
	Visible   bool      `json:"visible"`
	SortOrder int64     `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuditEntry is one row of changes_audit or pr_changes_audit.
type AuditEntry struct {
	ID               string    `json:"id"`
	ExerciseName     string    `json:"exerciseName"`
	Category         string    `json:"category"`
	Field            string    `json:"field"`
	PreviousValue    *float64  `json:"previousValue"`
	NewValue         *float64  `json:"newValue"`
	PercentageChange float64   `json:"percentageChange"`
	ChangedAt        time.Time `json:"changedAt"`
}

// Request types

type LoginRequest struct {
	Password string `json:"password"`
}

type SignUploadRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

type SetPermissionsRequest struct {
	ObjectPath string `json:"objectPath"`
}

// Response types

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionResponse struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	ExpiresAt       time.Time `json:"expiresAt,omitempty"`
}

type SignUploadResponse struct {
	UploadURL  string    `json:"uploadUrl"`
	ObjectPath string    `json:"objectPath"`
	ExpiresAt  time.Time `json:"expiresAt"`
	MaxSize    int64     `json:"maxSize"`
}

type SetPermissionsResponse struct {
	DisplayPath string `json:"displayPath"`
}

type ImportResponse struct {
	Imported int    `json:"imported"`
	Message  string `json:"message"`
}

// WeightStats summarises weight entries for charts.
type WeightStats struct {
	Count            int      `json:"count"`
	Latest           *float64 `json:"latest,omitempty"`
	LatestDate       string   `json:"latestDate,omitempty"`
	Min              float64  `json:"min"`
	Max              float64  `json:"max"`
	Mean             float64  `json:"mean"`
	Median           float64  `json:"median"`
	P10              float64  `json:"p10"`
	P90              float64  `json:"p90"`
	Change           float64  `json:"change"`
	PercentageChange float64  `json:"percentageChange"`
}

// ExportData is the full dump returned by GET /api/export.
type ExportData struct {
	Version         string           `json:"version" yaml:"version"`
	ExportedAt      time.Time        `json:"exportedAt" yaml:"exported_at"`
	Exercises       []Exercise       `json:"exercises" yaml:"exercises"`
	Weights         []WeightEntry    `json:"weights" yaml:"weights"`
	Bloods          []BloodEntry     `json:"bloods" yaml:"bloods"`
	Photos          []PhotoProgress  `json:"photos" yaml:"photos"`
	Thoughts        []Thought        `json:"thoughts" yaml:"thoughts"`
	PersonalRecords []PersonalRecord `json:"personalRecords" yaml:"personal_records"`
	WorkoutLogs     []WorkoutLog     `json:"workoutLogs" yaml:"workout_logs"`
	Tabs            []TabSettings    `json:"tabs" yaml:"tabs"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
