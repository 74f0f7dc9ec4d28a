// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/liftlog/middleware"
	"github.com/danielhkuo/liftlog/models"
)

// ExportVersion tags the layout of an export document
const ExportVersion = "1"

// ExportHandler dumps every entity in one document
type ExportHandler struct {
	exercises *ExerciseHandler
	weights   *WeightHandler
	bloods    *BloodHandler
	photos    *PhotoHandler
	thoughts  *ThoughtHandler
	records   *RecordHandler
	logs      *WorkoutLogHandler
	tabs      *TabHandler
}

// NewExportHandler reads through the entity handlers. It never writes, so
// they get a nil audit writer.
func NewExportHandler(db *sql.DB) *ExportHandler {
	return &ExportHandler{
		exercises: NewExerciseHandler(db, nil),
		weights:   NewWeightHandler(db, nil),
		bloods:    NewBloodHandler(db),
		photos:    NewPhotoHandler(db),
		thoughts:  NewThoughtHandler(db),
		records:   NewRecordHandler(db, nil),
		logs:      NewWorkoutLogHandler(db),
		tabs:      NewTabHandler(db),
	}
}

// Collect builds the export document
func (h *ExportHandler) Collect(ctx context.Context) (models.ExportData, error) {
	data := models.ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
	}

	var err error
	if data.Exercises, err = h.exercises.all(ctx, nil); err != nil {
		return data, err
	}
	if data.Weights, err = h.weights.all(ctx, nil); err != nil {
		return data, err
	}
	if data.Bloods, err = h.bloods.all(ctx, nil); err != nil {
		return data, err
	}
	if data.Photos, err = h.photos.all(ctx, nil); err != nil {
		return data, err
	}
	if data.Thoughts, err = h.thoughts.all(ctx, nil); err != nil {
		return data, err
	}
	if data.PersonalRecords, err = h.records.all(ctx, nil); err != nil {
		return data, err
	}
	if data.WorkoutLogs, err = h.logs.all(ctx, nil); err != nil {
		return data, err
	}
	if data.Tabs, err = h.tabs.all(ctx, nil); err != nil {
		return data, err
	}
	return data, nil
}

// Export handles GET /api/export?format=json|yaml
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "yaml" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "format must be json or yaml")
		return
	}

	data, err := h.Collect(r.Context())
	if err != nil {
		slog.Error("failed to collect export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	filename := fmt.Sprintf("liftlog-%s.%s", data.ExportedAt.Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if format == "json" {
		middleware.JSONResponse(w, http.StatusOK, data)
		return
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		slog.Error("failed to encode yaml export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to encode export")
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
