// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the LiftLog API.

# Handler Types

Entity handlers share one generic CRUD implementation (resource.go) and
differ only in table, columns, filters and validation:

  - ExerciseHandler: /api/exercises (weight and reps are audited)
  - WeightHandler: /api/weights plus CSV import/export and stats
  - BloodHandler, PhotoHandler, ThoughtHandler: plain CRUD with filters
  - RecordHandler: /api/records (weight, reps and time are audited)
  - WorkoutLogHandler, TabHandler: plain CRUD

Every entity exposes the same operations:

	GET    /api/{entity}       → List (query filters, e.g. ?from=&to=)
	POST   /api/{entity}       → Create
	GET    /api/{entity}/{id}  → Get
	PATCH  /api/{entity}/{id}  → Update (partial, fields absent stay as is)
	DELETE /api/{entity}/{id}  → Delete

# Audits

Exercise, weight and personal record writes append rows to changes_audit or
pr_changes_audit after the write succeeds. Audit failures are logged and
never fail the request. AuditHandler lists and deletes those rows.

# Timers

TimerHandler serves named stopwatches:

	GET    /api/timers/{key}               → Get (daily reset applied)
	PUT    /api/timers/{key}               → Put (replace)
	POST   /api/timers/{key}/{action}      → Transition (start, pause, lap, reset)
	DELETE /api/timers/{key}/laps/{lap}    → DeleteLap
	GET    /api/timers/{key}/events        → Events (server-sent events)

Every write is published on the timer.Hub, so open event streams see the
last write.

# Uploads

UploadHandler issues signed upload URLs, accepts the PUT of the bytes,
confirms the object and serves it back under /files/.
*/
package handlers
