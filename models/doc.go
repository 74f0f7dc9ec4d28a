// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

JSON field names are camelCase because the browser client reads them
directly. Optional numeric and text columns are pointers so that a missing
value round-trips as null rather than zero.

# Domain Types

One struct per table:

  - Exercise: per-session exercise entry (category, name, weight, reps, ...)
  - WeightEntry: body weight plus optional composition fields
  - BloodEntry: one blood lab marker reading
  - PhotoProgress: progress photo metadata (photo lives in object storage)
  - Thought: journal entry
  - PersonalRecord: best weight/reps/time per exercise and category
  - WorkoutLog: a workout session
  - TabSettings: navigation visibility and ordering
  - AuditEntry: row of changes_audit or pr_changes_audit

Timer state is defined in package timer, not here.

# Request Types

  - LoginRequest: password
  - SignUploadRequest: fileName, contentType
  - SetPermissionsRequest: objectPath

# Response Types

  - LoginResponse / SessionResponse
  - SignUploadResponse / SetPermissionsResponse
  - ImportResponse: rows imported from CSV
  - WeightStats: summary statistics over weight entries
  - ExportData: full data dump (JSON or YAML)
  - ErrorResponse: error, message

# Constants

Categories:

	CategoryPush       = "push"
	CategoryPull       = "pull"
	CategoryLegs       = "legs"
	CategoryCardio     = "cardio"
	CategoryBodyWeight = "bodyweight"
*/
package models
