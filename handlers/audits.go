// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/liftlog/audit"
	"github.com/danielhkuo/liftlog/middleware"
)

// AuditHandler serves the read/delete surface of one audit table. Rows are
// only ever written by the entity handlers.
type AuditHandler struct {
	db    *sql.DB
	table string
}

func NewChangesAuditHandler(db *sql.DB) *AuditHandler {
	return &AuditHandler{db: db, table: audit.TableChanges}
}

func NewRecordsAuditHandler(db *sql.DB) *AuditHandler {
	return &AuditHandler{db: db, table: audit.TablePRChanges}
}

// List handles GET /api/audits/{changes|records}?exerciseName=&category=
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := audit.List(r.Context(), h.db, h.table, q.Get("exerciseName"), q.Get("category"))
	if err != nil {
		slog.Error("failed to list audit rows", "table", h.table, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}

// Delete handles DELETE /api/audits/{changes|records}/{id}
func (h *AuditHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	err := audit.Delete(r.Context(), h.db, h.table, id)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Audit entry not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete audit row", "table", h.table, "id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete audit entry")
		return
	}

	slog.Info("audit entry deleted", "table", h.table, "id", id)
	w.WriteHeader(http.StatusNoContent)
}
