// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/liftlog/middleware"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// filter maps a query parameter onto a column comparison
type filter struct {
	param  string
	column string
	op     string
}

// resource is the CRUD surface shared by every entity table. Each table
// stores id, the entity columns, then created_at and updated_at.
type resource[T any] struct {
	db      *sql.DB
	name    string
	table   string
	columns []string
	orderBy string
	filters []filter

	// values returns the column values of v, aligned with columns
	values func(v *T) []any
	// scan reads id, columns, created_at, updated_at
	scan func(s rowScanner) (T, error)
	// meta exposes the bookkeeping fields of v
	meta func(v *T) (id *string, createdAt, updatedAt *time.Time)
	// validate returns a message when a required field is missing
	validate func(v *T) string
	// written runs after a successful create or update. before is nil on create.
	written func(ctx context.Context, before *T, after *T)
}

func (r *resource[T]) selectSQL() string {
	return fmt.Sprintf("SELECT id, %s, created_at, updated_at FROM %s",
		strings.Join(r.columns, ", "), r.table)
}

// all returns every row matching the filters present in query
func (r *resource[T]) all(ctx context.Context, query map[string]string) ([]T, error) {
	var where []string
	var args []any
	for _, f := range r.filters {
		v, ok := query[f.param]
		if !ok || v == "" {
			continue
		}
		args = append(args, v)
		where = append(where, fmt.Sprintf("%s %s $%d", f.column, f.op, len(args)))
	}

	q := r.selectSQL()
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	if r.orderBy != "" {
		q += " ORDER BY " + r.orderBy
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.table, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// find loads one row; sql.ErrNoRows if absent
func (r *resource[T]) find(ctx context.Context, id string) (T, error) {
	return r.scan(r.db.QueryRowContext(ctx, r.selectSQL()+" WHERE id = $1", id))
}

func (r *resource[T]) insert(ctx context.Context, exec execer, v *T, now time.Time) error {
	id, createdAt, updatedAt := r.meta(v)
	*id = uuid.NewString()
	*createdAt = now
	*updatedAt = now

	args := append([]any{*id}, r.values(v)...)
	args = append(args, now, now)

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	_, err := exec.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (id, %s, created_at, updated_at) VALUES (%s)",
		r.table, strings.Join(r.columns, ", "), strings.Join(placeholders, ", "),
	), args...)
	return err
}

func (r *resource[T]) update(ctx context.Context, v *T, now time.Time) error {
	id, _, updatedAt := r.meta(v)
	*updatedAt = now

	sets := make([]string, len(r.columns))
	for i, c := range r.columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	args := append(r.values(v), now, *id)

	_, err := r.db.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = $%d WHERE id = $%d",
		r.table, strings.Join(sets, ", "), len(r.columns)+1, len(r.columns)+2,
	), args...)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// List handles GET /api/<entity>
func (r *resource[T]) List(w http.ResponseWriter, req *http.Request) {
	query := map[string]string{}
	for _, f := range r.filters {
		query[f.param] = req.URL.Query().Get(f.param)
	}

	items, err := r.all(req.Context(), query)
	if err != nil {
		slog.Error("failed to list", "table", r.table, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, items)
}

// Get handles GET /api/<entity>/{id}
func (r *resource[T]) Get(w http.ResponseWriter, req *http.Request) {
	item, ok := r.load(w, req)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, item)
}

// Create handles POST /api/<entity>
func (r *resource[T]) Create(w http.ResponseWriter, req *http.Request) {
	var item T
	if err := middleware.ParseJSONBody(req, &item); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg := r.validate(&item); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if err := r.insert(req.Context(), r.db, &item, time.Now()); err != nil {
		slog.Error("failed to insert", "table", r.table, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create "+r.name)
		return
	}

	id, _, _ := r.meta(&item)
	slog.Info(r.name+" created", "id", *id)

	if r.written != nil {
		r.written(req.Context(), nil, &item)
	}

	middleware.JSONResponse(w, http.StatusCreated, item)
}

// Update handles PATCH and PUT /api/<entity>/{id}. Only fields present in
// the body change.
func (r *resource[T]) Update(w http.ResponseWriter, req *http.Request) {
	before, ok := r.load(w, req)
	if !ok {
		return
	}

	after, err := clone(before)
	if err != nil {
		slog.Error("failed to copy row", "table", r.table, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update "+r.name)
		return
	}

	if err := middleware.ParseJSONBody(req, &after); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// id and created_at are not client editable
	id, createdAt, _ := r.meta(&after)
	origID, origCreated, _ := r.meta(&before)
	*id = *origID
	*createdAt = *origCreated

	if msg := r.validate(&after); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if err := r.update(req.Context(), &after, time.Now()); err != nil {
		slog.Error("failed to update", "table", r.table, "id", *id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update "+r.name)
		return
	}

	slog.Info(r.name+" updated", "id", *id)

	if r.written != nil {
		r.written(req.Context(), &before, &after)
	}

	middleware.JSONResponse(w, http.StatusOK, after)
}

// Delete handles DELETE /api/<entity>/{id}
func (r *resource[T]) Delete(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	result, err := r.db.ExecContext(req.Context(), "DELETE FROM "+r.table+" WHERE id = $1", id)
	if err != nil {
		slog.Error("failed to delete", "table", r.table, "id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete "+r.name)
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Error("failed to delete", "table", r.table, "id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete "+r.name)
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, notFound(r.name))
		return
	}

	slog.Info(r.name+" deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// load reads the {id} row and writes the error response when it fails
func (r *resource[T]) load(w http.ResponseWriter, req *http.Request) (T, bool) {
	var zero T

	id := req.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return zero, false
	}

	item, err := r.find(req.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, notFound(r.name))
		return zero, false
	}
	if err != nil {
		slog.Error("failed to query", "table", r.table, "id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return zero, false
	}
	return item, true
}

// clone deep-copies v so that decoding a patch into the copy cannot write
// through pointers shared with the original
func clone[T any](v T) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}

func notFound(name string) string {
	if name == "" {
		return "Not found"
	}
	return strings.ToUpper(name[:1]) + name[1:] + " not found"
}

// nullable turns an optional field into a driver value
func nullable[V any](v *V) any {
	if v == nil {
		return nil
	}
	return *v
}
