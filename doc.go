// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the LiftLog API server.

LiftLog is a single-user fitness log: exercises, body weight, blood work,
progress photos, journal entries, personal records and workout logs, with
an audit trail of weight and rep progress, named stopwatch timers and a
photo upload flow. The whole API sits behind one shared password.

# Starting the Server

A .env file in the working directory is loaded first when present. The
server then takes CLI flags with environment fallbacks:

	APP_PASSWORD=... SESSION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - APP_PASSWORD (--password): Shared login password
  - SESSION_SECRET (--session-secret): Secret for session and upload HMACs

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): SQLite file (default: liftlog.db) or PostgreSQL URL
  - UPLOAD_DIR (--upload-dir): Photo storage directory (default: uploads)
  - TZ_NAME (--tz): IANA zone for the timer day boundary (default: Local)

# Architecture

  - handlers: HTTP request handlers (entities, weights, timers, uploads, auth, export)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, session gate, JSON helpers
  - timer: Stopwatch state machine, persistence syncer and change hub
  - audit: Progress audit rows and percentage change
  - storage: Signed uploads onto local disk
  - models: Entity and request/response types
  - auth: Password check and session tokens
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
