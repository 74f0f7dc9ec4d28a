// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/danielhkuo/liftlog/audit"
	"github.com/danielhkuo/liftlog/cliparse"
	"github.com/danielhkuo/liftlog/handlers"
	"github.com/danielhkuo/liftlog/middleware"
	"github.com/danielhkuo/liftlog/storage"
	"github.com/danielhkuo/liftlog/timer"
)

// crud is the handler surface every entity exposes
type crud interface {
	List(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Get(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
}

func NewRouter(db *sql.DB, cfg cliparse.Config) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	store, err := storage.New(cfg.UploadDir, cfg.SessionSecret, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload storage: %w", err)
	}

	// Initialize handlers
	audits := audit.NewWriter(db)
	weightHandler := handlers.NewWeightHandler(db, audits)
	timerHandler := handlers.NewTimerHandler(db, timer.NewHub(), timer.SystemClock{Location: cfg.Location()})
	uploadHandler := handlers.NewUploadHandler(store)
	authHandler := handlers.NewAuthHandler(cfg)
	exportHandler := handlers.NewExportHandler(db)
	changesAudit := handlers.NewChangesAuditHandler(db)
	recordsAudit := handlers.NewRecordsAuditHandler(db)

	// Session-gated, logged
	private := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireSession(cfg.SessionSecret, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session (public)
	mux.HandleFunc("POST /api/auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /api/auth/session", middleware.WithLogging(authHandler.Session))

	// Weight extras before the generic entity routes
	mux.HandleFunc("POST /api/weights/import", private(weightHandler.Import))
	mux.HandleFunc("GET /api/weights/export", private(weightHandler.Export))
	mux.HandleFunc("GET /api/weights/stats", private(weightHandler.Stats))

	entities := []struct {
		path    string
		handler crud
	}{
		{"/api/exercises", handlers.NewExerciseHandler(db, audits)},
		{"/api/weights", weightHandler},
		{"/api/bloods", handlers.NewBloodHandler(db)},
		{"/api/photos", handlers.NewPhotoHandler(db)},
		{"/api/thoughts", handlers.NewThoughtHandler(db)},
		{"/api/records", handlers.NewRecordHandler(db, audits)},
		{"/api/workout-logs", handlers.NewWorkoutLogHandler(db)},
		{"/api/tabs", handlers.NewTabHandler(db)},
	}
	for _, e := range entities {
		mux.HandleFunc("GET "+e.path, private(e.handler.List))
		mux.HandleFunc("POST "+e.path, private(e.handler.Create))
		mux.HandleFunc("GET "+e.path+"/{id}", private(e.handler.Get))
		mux.HandleFunc("PATCH "+e.path+"/{id}", private(e.handler.Update))
		mux.HandleFunc("PUT "+e.path+"/{id}", private(e.handler.Update))
		mux.HandleFunc("DELETE "+e.path+"/{id}", private(e.handler.Delete))
	}

	// Audit trails (read/delete only)
	mux.HandleFunc("GET /api/audits/changes", private(changesAudit.List))
	mux.HandleFunc("DELETE /api/audits/changes/{id}", private(changesAudit.Delete))
	mux.HandleFunc("GET /api/audits/records", private(recordsAudit.List))
	mux.HandleFunc("DELETE /api/audits/records/{id}", private(recordsAudit.Delete))

	// Full data export
	mux.HandleFunc("GET /api/export", private(exportHandler.Export))

	// Timers
	mux.HandleFunc("GET /api/timers/{key}", private(timerHandler.Get))
	mux.HandleFunc("PUT /api/timers/{key}", private(timerHandler.Put))
	mux.HandleFunc("POST /api/timers/{key}/{action}", private(timerHandler.Transition))
	mux.HandleFunc("DELETE /api/timers/{key}/laps/{lap}", private(timerHandler.DeleteLap))
	mux.HandleFunc("GET /api/timers/{key}/events", private(timerHandler.Events))

	// Uploads: signing needs a session, the PUT carries its own signature
	mux.HandleFunc("POST /api/uploads", private(uploadHandler.SignUpload))
	mux.HandleFunc("POST /api/uploads/permissions", private(uploadHandler.SetPermissions))
	mux.HandleFunc("PUT /api/uploads/{object...}", middleware.WithLogging(uploadHandler.Upload))
	mux.HandleFunc("GET /files/{object...}", middleware.WithLogging(uploadHandler.Serve))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("liftlog API v1"))
	})

	return mux, nil
}
