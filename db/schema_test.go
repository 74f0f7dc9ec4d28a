// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"testing"
)

func TestCreateSchema_Idempotent(t *testing.T) {
	conn, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		if err := CreateSchema(conn); err != nil {
			t.Fatalf("CreateSchema call %d failed: %v", i+1, err)
		}
	}

	for _, table := range Tables {
		var name string
		err := conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpen_UnsupportedType(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("expected error for unsupported database type")
	}
}

func TestLapTimesCascade(t *testing.T) {
	conn, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}

	if _, err := conn.Exec(`INSERT INTO timers (id, timer_key) VALUES ('t1', 'workout')`); err != nil {
		t.Fatalf("insert timer: %v", err)
	}
	if _, err := conn.Exec(`
		INSERT INTO lap_times (id, timer_id, position, lap_number, lap_time, start_offset)
		VALUES ('l1', 't1', 0, 1, 5000, 0)
	`); err != nil {
		t.Fatalf("insert lap: %v", err)
	}

	if _, err := conn.Exec(`DELETE FROM timers WHERE id = 't1'`); err != nil {
		t.Fatalf("delete timer: %v", err)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM lap_times`).Scan(&count); err != nil {
		t.Fatalf("count laps: %v", err)
	}
	if count != 0 {
		t.Errorf("expected laps to cascade, found %d", count)
	}
}
