// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/liftlog/audit"
	"github.com/danielhkuo/liftlog/models"
	"github.com/danielhkuo/liftlog/testutil"
)

func createExercise(t *testing.T, h *ExerciseHandler, e models.Exercise) models.Exercise {
	t.Helper()

	w := httptest.NewRecorder()
	h.Create(w, testutil.MakeRequest("POST", "/api/exercises", e, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.Exercise
	testutil.AssertJSON(t, w, &created)
	return created
}

func TestCreateExercise(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewExerciseHandler(db, audit.NewWriter(db))

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.Exercise)
	}{
		{
			name: "valid exercise",
			requestBody: models.Exercise{
				Category: models.CategoryPush,
				Name:     "Bench Press",
				Weight:   testutil.Float(135),
				Reps:     testutil.Int(8),
				Sets:     testutil.Int(3),
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.Exercise) {
				if resp.ID == "" {
					t.Error("Expected non-empty id")
				}
				if resp.CreatedAt.IsZero() || !resp.CreatedAt.Equal(resp.UpdatedAt) {
					t.Error("Expected createdAt == updatedAt on create")
				}
				if resp.Reps == nil || *resp.Reps != 8 {
					t.Errorf("Expected reps 8, got %v", resp.Reps)
				}
			},
		},
		{
			name:           "cardio with optional fields",
			requestBody:    models.Exercise{Category: models.CategoryCardio, Name: "Run", Distance: testutil.Float(5.2), Pace: testutil.String("5:30")},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.Exercise) {
				if resp.Weight != nil {
					t.Error("Expected weight to stay empty")
				}
				if resp.Pace == nil || *resp.Pace != "5:30" {
					t.Errorf("Expected pace 5:30, got %v", resp.Pace)
				}
			},
		},
		{
			name:           "missing category",
			requestBody:    models.Exercise{Name: "Bench Press"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing name",
			requestBody:    models.Exercise{Category: models.CategoryPush},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			var err error

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatalf("Failed to marshal request body: %v", err)
				}
			}

			req := httptest.NewRequest("POST", "/api/exercises", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Create(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.Exercise
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestListExercisesByCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewExerciseHandler(db, audit.NewWriter(db))
	createExercise(t, handler, models.Exercise{Category: models.CategoryPush, Name: "Bench Press"})
	createExercise(t, handler, models.Exercise{Category: models.CategoryPush, Name: "Overhead Press"})
	createExercise(t, handler, models.Exercise{Category: models.CategoryLegs, Name: "Squat"})

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{"all", "/api/exercises", 3},
		{"push only", "/api/exercises?category=push", 2},
		{"legs only", "/api/exercises?category=legs", 1},
		{"unknown category", "/api/exercises?category=cardio", 0},
		{"by name", "/api/exercises?name=Squat", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.List(w, testutil.MakeRequest("GET", tt.path, nil, nil))
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp []models.Exercise
			testutil.AssertJSON(t, w, &resp)
			if len(resp) != tt.expected {
				t.Errorf("Expected %d exercises, got %d", tt.expected, len(resp))
			}
		})
	}
}

func TestUpdateExerciseMergesAndAudits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewExerciseHandler(db, audit.NewWriter(db))
	created := createExercise(t, handler, models.Exercise{
		Category: models.CategoryPush,
		Name:     "Bench Press",
		Weight:   testutil.Float(100),
		Reps:     testutil.Int(8),
		Notes:    testutil.String("felt heavy"),
	})

	// Create audits weight and reps against an empty previous value
	if n := testutil.CountRows(t, db, "changes_audit"); n != 2 {
		t.Fatalf("Expected 2 audit rows after create, got %d", n)
	}

	req := testutil.MakeRequest("PATCH", "/api/exercises/"+created.ID, map[string]any{"weight": 110, "id": "hijack"}, nil)
	req.SetPathValue("id", created.ID)
	w := httptest.NewRecorder()

	handler.Update(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var updated models.Exercise
	testutil.AssertJSON(t, w, &updated)

	if updated.ID != created.ID {
		t.Errorf("Expected id to stay %s, got %s", created.ID, updated.ID)
	}
	if *updated.Weight != 110 {
		t.Errorf("Expected weight 110, got %v", *updated.Weight)
	}
	if *updated.Reps != 8 || *updated.Notes != "felt heavy" {
		t.Error("Expected fields missing from the patch to keep their values")
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("Expected updatedAt to move forward")
	}

	entries, err := audit.List(req.Context(), db, audit.TableChanges, "Bench Press", models.CategoryPush)
	if err != nil {
		t.Fatalf("Failed to list audit rows: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 audit rows, got %d", len(entries))
	}

	var weightChange *models.AuditEntry
	for i := range entries {
		e := entries[i]
		if e.Field == "weight" && e.PreviousValue != nil {
			weightChange = &e
		}
	}
	if weightChange == nil {
		t.Fatal("Expected a weight audit row with a previous value")
	}
	if *weightChange.PreviousValue != 100 || *weightChange.NewValue != 110 {
		t.Errorf("Expected 100 -> 110, got %v -> %v", *weightChange.PreviousValue, *weightChange.NewValue)
	}
	if weightChange.PercentageChange != 10 {
		t.Errorf("Expected 10%% change, got %v", weightChange.PercentageChange)
	}

	// Same values again: nothing new to audit
	req = testutil.MakeRequest("PUT", "/api/exercises/"+created.ID, map[string]any{"weight": 110, "reps": 8}, nil)
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	handler.Update(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	if n := testutil.CountRows(t, db, "changes_audit"); n != 3 {
		t.Errorf("Expected no new audit rows for unchanged values, got %d rows", n)
	}
}

func TestUpdateExerciseValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewExerciseHandler(db, audit.NewWriter(db))
	created := createExercise(t, handler, models.Exercise{Category: models.CategoryPull, Name: "Row"})

	tests := []struct {
		name           string
		id             string
		body           interface{}
		expectedStatus int
	}{
		{"unknown id", "missing", map[string]any{"name": "x"}, http.StatusNotFound},
		{"clearing a required field", created.ID, map[string]any{"name": ""}, http.StatusBadRequest},
		{"invalid JSON", created.ID, "nope", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if s, ok := tt.body.(string); ok {
				req = httptest.NewRequest("PATCH", "/api/exercises/"+tt.id, bytes.NewReader([]byte(s)))
			} else {
				req = testutil.MakeRequest("PATCH", "/api/exercises/"+tt.id, tt.body, nil)
			}
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			handler.Update(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestGetAndDeleteExercise(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewExerciseHandler(db, audit.NewWriter(db))
	created := createExercise(t, handler, models.Exercise{Category: models.CategoryLegs, Name: "Squat"})

	req := testutil.MakeRequest("GET", "/api/exercises/"+created.ID, nil, nil)
	req.SetPathValue("id", created.ID)
	w := httptest.NewRecorder()
	handler.Get(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var got models.Exercise
	testutil.AssertJSON(t, w, &got)
	if got.Name != "Squat" {
		t.Errorf("Expected Squat, got %s", got.Name)
	}

	req = testutil.MakeRequest("DELETE", "/api/exercises/"+created.ID, nil, nil)
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	handler.Delete(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	// Deleting again is an error, not a no-op
	req = testutil.MakeRequest("DELETE", "/api/exercises/"+created.ID, nil, nil)
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	handler.Delete(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	req = testutil.MakeRequest("GET", "/api/exercises/"+created.ID, nil, nil)
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	handler.Get(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestRecordAuditsToPRTable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewRecordHandler(db, audit.NewWriter(db))

	w := httptest.NewRecorder()
	handler.Create(w, testutil.MakeRequest("POST", "/api/records", models.PersonalRecord{
		Category:     models.CategoryLegs,
		ExerciseName: "Squat",
		Weight:       testutil.Float(0),
		Time:         testutil.Float(42.5),
	}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.PersonalRecord
	testutil.AssertJSON(t, w, &created)

	req := testutil.MakeRequest("PATCH", "/api/records/"+created.ID, map[string]any{"weight": 315, "sortOrder": 2}, nil)
	req.SetPathValue("id", created.ID)
	w = httptest.NewRecorder()
	handler.Update(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	if n := testutil.CountRows(t, db, "changes_audit"); n != 0 {
		t.Errorf("Expected no rows in changes_audit, got %d", n)
	}

	entries, err := audit.List(req.Context(), db, audit.TablePRChanges, "Squat", "")
	if err != nil {
		t.Fatalf("Failed to list audit rows: %v", err)
	}
	// create: weight, time; update: weight
	if len(entries) != 3 {
		t.Fatalf("Expected 3 PR audit rows, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Field == "weight" && e.PreviousValue != nil && e.PercentageChange != 0 {
			t.Errorf("Expected 0%% change from a previous value of 0, got %v", e.PercentageChange)
		}
	}
}

func TestEntityValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	writer := audit.NewWriter(db)

	tests := []struct {
		name           string
		handler        http.HandlerFunc
		body           interface{}
		expectedStatus int
	}{
		{"weight ok", NewWeightHandler(db, writer).Create, models.WeightEntry{Date: "2024-03-01", Weight: testutil.Float(80)}, http.StatusCreated},
		{"weight bad date", NewWeightHandler(db, writer).Create, models.WeightEntry{Date: "03/01/2024", Weight: testutil.Float(80)}, http.StatusBadRequest},
		{"weight missing weight", NewWeightHandler(db, writer).Create, models.WeightEntry{Date: "2024-03-01"}, http.StatusBadRequest},
		{"blood ok", NewBloodHandler(db).Create, models.BloodEntry{Date: "2024-03-01", Marker: "LDL", Value: testutil.Float(96)}, http.StatusCreated},
		{"blood missing value", NewBloodHandler(db).Create, models.BloodEntry{Date: "2024-03-01", Marker: "LDL"}, http.StatusBadRequest},
		{"photo ok", NewPhotoHandler(db).Create, models.PhotoProgress{Title: "Front", PhotoURL: "/files/photos/a.jpg"}, http.StatusCreated},
		{"photo missing url", NewPhotoHandler(db).Create, models.PhotoProgress{Title: "Front"}, http.StatusBadRequest},
		{"thought ok", NewThoughtHandler(db).Create, models.Thought{Content: "Slept well", Mood: testutil.String("good")}, http.StatusCreated},
		{"thought empty", NewThoughtHandler(db).Create, models.Thought{}, http.StatusBadRequest},
		{"workout log ok", NewWorkoutLogHandler(db).Create, models.WorkoutLog{Category: models.CategoryPull, Date: "2024-03-01", Completed: true}, http.StatusCreated},
		{"workout log missing date", NewWorkoutLogHandler(db).Create, models.WorkoutLog{Category: models.CategoryPull}, http.StatusBadRequest},
		{"tab ok", NewTabHandler(db).Create, models.TabSettings{TabKey: "push", Label: "Push", Visible: true}, http.StatusCreated},
		{"tab missing label", NewTabHandler(db).Create, models.TabSettings{TabKey: "legs"}, http.StatusBadRequest},
		{"record missing name", NewRecordHandler(db, writer).Create, models.PersonalRecord{Category: models.CategoryLegs}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, testutil.MakeRequest("POST", "/", tt.body, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestListFiltersByDateRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewBloodHandler(db)
	for _, e := range []models.BloodEntry{
		{Date: "2024-01-10", Marker: "LDL", Value: testutil.Float(110)},
		{Date: "2024-02-10", Marker: "LDL", Value: testutil.Float(100)},
		{Date: "2024-02-10", Marker: "HDL", Value: testutil.Float(55)},
		{Date: "2024-03-10", Marker: "LDL", Value: testutil.Float(90)},
	} {
		w := httptest.NewRecorder()
		handler.Create(w, testutil.MakeRequest("POST", "/api/bloods", e, nil))
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{"marker", "/api/bloods?marker=LDL", 3},
		{"from", "/api/bloods?from=2024-02-01", 3},
		{"to", "/api/bloods?to=2024-02-10", 3},
		{"range and marker", "/api/bloods?marker=LDL&from=2024-02-01&to=2024-02-28", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.List(w, testutil.MakeRequest("GET", tt.path, nil, nil))
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp []models.BloodEntry
			testutil.AssertJSON(t, w, &resp)
			if len(resp) != tt.expected {
				t.Errorf("Expected %d entries, got %d", tt.expected, len(resp))
			}
		})
	}
}
