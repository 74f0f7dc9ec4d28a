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
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/liftlog/middleware"
	"github.com/danielhkuo/liftlog/timer"
)

// eventsHeartbeat keeps idle event streams open through proxies
const eventsHeartbeat = 25 * time.Second

// TimerStore persists timer state in the timers and lap_times tables
type TimerStore struct {
	db *sql.DB
}

func NewTimerStore(db *sql.DB) *TimerStore {
	return &TimerStore{db: db}
}

// Load returns timer.ErrNotFound for a key that was never saved
func (s *TimerStore) Load(ctx context.Context, key string) (timer.State, error) {
	var id string
	var st timer.State
	err := s.db.QueryRowContext(ctx, `
		SELECT id, is_running, session_start, lap_start, elapsed_before_start,
		       lap_elapsed_before_start, date_key, auto_reset_daily
		FROM timers
		WHERE timer_key = $1
	`, key).Scan(&id, &st.IsRunning, &st.SessionStart, &st.LapStart, &st.ElapsedBeforeStart,
		&st.LapElapsedBeforeStart, &st.DateKey, &st.AutoResetDaily)
	if errors.Is(err, sql.ErrNoRows) {
		return timer.State{}, timer.ErrNotFound
	}
	if err != nil {
		return timer.State{}, fmt.Errorf("failed to query timer: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT lap_number, lap_time, start_offset
		FROM lap_times
		WHERE timer_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return timer.State{}, fmt.Errorf("failed to query laps: %w", err)
	}
	defer rows.Close()

	st.Laps = []timer.Lap{}
	for rows.Next() {
		var lap timer.Lap
		if err := rows.Scan(&lap.ID, &lap.LapTime, &lap.StartOffset); err != nil {
			return timer.State{}, fmt.Errorf("failed to scan lap: %w", err)
		}
		st.Laps = append(st.Laps, lap)
	}
	return st, rows.Err()
}

// Save replaces the stored state for key, laps included, in one transaction
func (s *TimerStore) Save(ctx context.Context, key string, st timer.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	var id string
	err = tx.QueryRowContext(ctx, "SELECT id FROM timers WHERE timer_key = $1", key).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO timers (id, timer_key, is_running, session_start, lap_start,
				elapsed_before_start, lap_elapsed_before_start, date_key, auto_reset_daily, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, id, key, st.IsRunning, st.SessionStart, st.LapStart, st.ElapsedBeforeStart,
			st.LapElapsedBeforeStart, st.DateKey, st.AutoResetDaily, now)
	case err == nil:
		_, err = tx.ExecContext(ctx, `
			UPDATE timers
			SET is_running = $1, session_start = $2, lap_start = $3, elapsed_before_start = $4,
				lap_elapsed_before_start = $5, date_key = $6, auto_reset_daily = $7, updated_at = $8
			WHERE id = $9
		`, st.IsRunning, st.SessionStart, st.LapStart, st.ElapsedBeforeStart,
			st.LapElapsedBeforeStart, st.DateKey, st.AutoResetDaily, now, id)
	}
	if err != nil {
		return fmt.Errorf("failed to write timer: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM lap_times WHERE timer_id = $1", id); err != nil {
		return fmt.Errorf("failed to clear laps: %w", err)
	}
	for i, lap := range st.Laps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO lap_times (id, timer_id, position, lap_number, lap_time, start_offset)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), id, i, lap.ID, lap.LapTime, lap.StartOffset)
		if err != nil {
			return fmt.Errorf("failed to insert lap: %w", err)
		}
	}

	return tx.Commit()
}

// TimerHandler serves /api/timers/{key}
type TimerHandler struct {
	store *TimerStore
	hub   *timer.Hub
	clock timer.Clock
}

func NewTimerHandler(db *sql.DB, hub *timer.Hub, clock timer.Clock) *TimerHandler {
	return &TimerHandler{store: NewTimerStore(db), hub: hub, clock: clock}
}

// today is the client's calendar day when it sends one, else the server's
func (h *TimerHandler) today(r *http.Request, now time.Time) string {
	if d := r.URL.Query().Get("today"); d != "" && validDate(d) {
		return d
	}
	return timer.DateKey(now)
}

func (h *TimerHandler) current(r *http.Request, key, today string) timer.State {
	return timer.LoadDay(r.Context(), h.store, key, today, slog.Default())
}

// Get handles GET /api/timers/{key}
// With raw=1 the stored state is returned as is, or 404 if none exists, so
// a remote Syncer can apply the daily reset against its own day.
func (h *TimerHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "key is required")
		return
	}

	now := h.clock.Now()
	if r.URL.Query().Get("raw") != "1" {
		middleware.JSONResponse(w, http.StatusOK, timer.Describe(h.current(r, key, h.today(r, now)), now))
		return
	}

	st, err := h.store.Load(r.Context(), key)
	if errors.Is(err, timer.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Timer not found")
		return
	}
	if err != nil {
		slog.Error("failed to load timer", "key", key, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, timer.Describe(st, now))
}

// Put handles PUT /api/timers/{key}
// The body replaces the stored state wholesale. A body without a dateKey
// gets the request's day.
func (h *TimerHandler) Put(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "key is required")
		return
	}

	var st timer.State
	if err := middleware.ParseJSONBody(r, &st); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if st.DateKey == "" {
		st.DateKey = h.today(r, h.clock.Now())
	}
	h.write(w, r, key, timer.Normalize(st))
}

// Transition handles POST /api/timers/{key}/{action}
func (h *TimerHandler) Transition(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "key is required")
		return
	}

	now := h.clock.Now()
	today := h.today(r, now)
	next, err := timer.Reduce(h.current(r, key, today), timer.Action(r.PathValue("action")), now)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown timer action")
		return
	}

	// The day checked on the next load must be the one stamped now
	next.DateKey = today
	h.write(w, r, key, next)
}

// DeleteLap handles DELETE /api/timers/{key}/laps/{lap}
func (h *TimerHandler) DeleteLap(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	lapID, err := strconv.ParseInt(r.PathValue("lap"), 10, 64)
	if key == "" || err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "key and numeric lap id are required")
		return
	}

	today := h.today(r, h.clock.Now())
	next, ok := timer.DeleteLap(h.current(r, key, today), lapID)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Lap not found")
		return
	}

	next.DateKey = today
	h.write(w, r, key, next)
}

func (h *TimerHandler) write(w http.ResponseWriter, r *http.Request, key string, st timer.State) {
	if err := h.store.Save(r.Context(), key, st); err != nil {
		slog.Error("failed to save timer", "key", key, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save timer")
		return
	}

	h.hub.Publish(key, st)
	slog.Info("timer saved", "key", key, "running", st.IsRunning, "laps", len(st.Laps))

	middleware.JSONResponse(w, http.StatusOK, timer.Describe(st, h.clock.Now()))
}

// Events handles GET /api/timers/{key}/events
// Streams the current state, then every state written for key, as
// server-sent events. Slow readers only see the newest state.
func (h *TimerHandler) Events(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "key is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	updates, cancel := h.hub.Subscribe(key)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, h.current(r, key, h.today(r, h.clock.Now()))); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(eventsHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := writeEvent(w, st); err != nil {
				slog.Warn("timer event stream closed", "key", key, "error", err)
				return
			}
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, st timer.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
	return err
}
