// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/liftlog/audit"
	"github.com/danielhkuo/liftlog/middleware"
	"github.com/danielhkuo/liftlog/models"
)

// MaxImportSize caps a CSV upload
const MaxImportSize = 5 * humanize.MiByte

// importFailed is the only message a rejected upload gets
const importFailed = "Failed to import CSV"

var csvHeader = []string{"date", "weight", "bodyFat", "muscle", "notes"}

// Import handles POST /api/weights/import
// Accepts date,weight,bodyFat,muscle,notes rows as a raw body or as the
// "file" field of a multipart form. All rows go in one transaction.
func (h *WeightHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImportSize)

	src, err := importSource(r)
	if err != nil {
		slog.Warn("csv import rejected", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, importFailed)
		return
	}
	defer src.Close()

	entries, err := parseWeightCSV(src)
	if err != nil {
		slog.Warn("csv import rejected", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, importFailed)
		return
	}

	if err := h.insertAll(r.Context(), entries); err != nil {
		slog.Error("failed to import weights", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, importFailed)
		return
	}

	for i := range entries {
		h.recordChanges(r.Context(), nil, &entries[i])
	}

	slog.Info("weights imported", "count", len(entries))

	middleware.JSONResponse(w, http.StatusCreated, models.ImportResponse{
		Imported: len(entries),
		Message:  fmt.Sprintf("Imported %d entries", len(entries)),
	})
}

func importSource(r *http.Request) (io.ReadCloser, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.Body, nil
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	slog.Info("csv upload received", "name", header.Filename, "size", humanize.IBytes(uint64(header.Size)))
	return file, nil
}

func (h *WeightHandler) insertAll(ctx context.Context, entries []models.WeightEntry) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for i := range entries {
		if err := h.insert(ctx, tx, &entries[i], now); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// parseWeightCSV reads date,weight,bodyFat,muscle,notes rows. The header
// row is optional. Any malformed row fails the whole file.
func parseWeightCSV(src io.Reader) ([]models.WeightEntry, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var entries []models.WeightEntry
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if line == 1 {
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "date") {
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		entry, err := parseWeightRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, errors.New("no rows")
	}
	return entries, nil
}

func parseWeightRecord(record []string) (models.WeightEntry, error) {
	var e models.WeightEntry

	if len(record) < 2 || len(record) > len(csvHeader) {
		return e, fmt.Errorf("expected 2 to %d columns, got %d", len(csvHeader), len(record))
	}

	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	e.Date = field(0)
	if !validDate(e.Date) {
		return e, fmt.Errorf("invalid date %q", e.Date)
	}

	weight, err := parseOptionalFloat(field(1))
	if err != nil {
		return e, fmt.Errorf("invalid weight: %w", err)
	}
	if weight == nil {
		return e, errors.New("weight is required")
	}
	e.Weight = weight

	if e.BodyFat, err = parseOptionalFloat(field(2)); err != nil {
		return e, fmt.Errorf("invalid bodyFat: %w", err)
	}
	if e.MuscleMass, err = parseOptionalFloat(field(3)); err != nil {
		return e, fmt.Errorf("invalid muscle: %w", err)
	}
	if notes := field(4); notes != "" {
		e.Notes = &notes
	}

	return e, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Export handles GET /api/weights/export
func (h *WeightHandler) Export(w http.ResponseWriter, r *http.Request) {
	entries, err := h.all(r.Context(), nil)
	if err != nil {
		slog.Error("failed to query weights", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	sortByDate(entries)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="weights.csv"`)
	w.WriteHeader(http.StatusOK)

	out := csv.NewWriter(w)
	out.Write(csvHeader)
	for _, e := range entries {
		out.Write([]string{
			e.Date,
			formatOptionalFloat(e.Weight),
			formatOptionalFloat(e.BodyFat),
			formatOptionalFloat(e.MuscleMass),
			deref(e.Notes),
		})
	}
	out.Flush()
	if err := out.Error(); err != nil {
		slog.Error("failed to write csv", "error", err)
	}
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// sortByDate orders entries oldest first
func sortByDate(entries []models.WeightEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

// Stats handles GET /api/weights/stats
func (h *WeightHandler) Stats(w http.ResponseWriter, r *http.Request) {
	entries, err := h.all(r.Context(), map[string]string{
		"from": r.URL.Query().Get("from"),
		"to":   r.URL.Query().Get("to"),
	})
	if err != nil {
		slog.Error("failed to query weights", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ComputeWeightStats(entries))
}

// ComputeWeightStats summarises entries. Change runs from the oldest entry
// to the latest one.
func ComputeWeightStats(entries []models.WeightEntry) models.WeightStats {
	ordered := make([]models.WeightEntry, 0, len(entries))
	for _, e := range entries {
		if e.Weight != nil {
			ordered = append(ordered, e)
		}
	}
	if len(ordered) == 0 {
		return models.WeightStats{}
	}
	sortByDate(ordered)

	values := make([]float64, len(ordered))
	for i, e := range ordered {
		values[i] = *e.Weight
	}

	first := *ordered[0].Weight
	latest := ordered[len(ordered)-1]

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return models.WeightStats{
		Count:            len(ordered),
		Latest:           latest.Weight,
		LatestDate:       latest.Date,
		Min:              sorted[0],
		Max:              sorted[len(sorted)-1],
		Mean:             mean(values),
		Median:           percentile(sorted, 0.5),
		P10:              percentile(sorted, 0.1),
		P90:              percentile(sorted, 0.9),
		Change:           *latest.Weight - first,
		PercentageChange: audit.PercentageChange(&first, *latest.Weight),
	}
}

// percentile calculates the p-th percentile of sorted data
// p should be in range [0, 1]
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0.0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	// Linear interpolation between closest ranks
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// mean calculates the arithmetic mean
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
