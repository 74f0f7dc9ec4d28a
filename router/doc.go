// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the LiftLog API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints. It fails
only when the upload directory cannot be created:

	mux, err := router.NewRouter(db, cfg)

# Endpoints

Public:

	GET  /health
	POST /api/auth/login
	GET  /api/auth/session
	PUT  /api/uploads/{object...}  - Signed upload (signature in the URL)
	GET  /files/{object...}        - Stored photos

Entities (session required), for exercises, weights, bloods, photos,
thoughts, records, workout-logs and tabs:

	GET    /api/{entity}
	POST   /api/{entity}
	GET    /api/{entity}/{id}
	PATCH  /api/{entity}/{id}
	PUT    /api/{entity}/{id}
	DELETE /api/{entity}/{id}

Weights:

	POST /api/weights/import - CSV upload
	GET  /api/weights/export - CSV download
	GET  /api/weights/stats  - Summary statistics

Audits, export, timers and uploads (session required):

	GET    /api/audits/{changes|records}
	DELETE /api/audits/{changes|records}/{id}
	GET    /api/export?format=json|yaml
	GET    /api/timers/{key}
	PUT    /api/timers/{key}
	POST   /api/timers/{key}/{start|pause|lap|reset}
	DELETE /api/timers/{key}/laps/{lap}
	GET    /api/timers/{key}/events
	POST   /api/uploads
	POST   /api/uploads/permissions

Gated routes accept the session as "Authorization: Bearer <token>", or as a
token query parameter for event streams.
*/
package router
