// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil holds shared fixtures for handler and router tests: an
// in-memory database, a test config and request helpers.
//
// Tests of the HTTP layer (handlers, router, middleware, db, auth, cliparse)
// use the standard testing package with these helpers and t.Errorf. Tests of
// the library packages (timer, audit, storage, client) use testify's assert
// and require. Keep new tests in the style of their package.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/liftlog/auth"
	"github.com/danielhkuo/liftlog/cliparse"
	"github.com/danielhkuo/liftlog/db"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  "sqlite",
		AppPassword:   "test-password",
		SessionSecret: "test-session-secret",
		UploadDir:     t.TempDir(),
		TimezoneName:  "UTC",
	}
}

// AuthHeader returns an Authorization header carrying a fresh session token
func AuthHeader(t *testing.T, cfg cliparse.Config) map[string]string {
	t.Helper()

	token, _, err := auth.IssueSession(cfg.SessionSecret, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// Float is a shorthand for optional numeric fields in fixtures
func Float(v float64) *float64 {
	return &v
}

// Int is a shorthand for optional integer fields in fixtures
func Int(v int64) *int64 {
	return &v
}

// String is a shorthand for optional text fields in fixtures
func String(v string) *string {
	return &v
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
