// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/liftlog/testutil"
)

func TestPercentageChange(t *testing.T) {
	tests := []struct {
		name string
		prev *float64
		next float64
		want float64
	}{
		{"nil previous", nil, 100, 0},
		{"zero previous", testutil.Float(0), 185, 0},
		{"increase", testutil.Float(100), 110, 10},
		{"decrease", testutil.Float(200), 150, -25},
		{"unchanged", testutil.Float(80), 80, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentageChange(tt.prev, tt.next)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestTrack(t *testing.T) {
	_, ok := Track("weight", testutil.Float(100), testutil.Float(100))
	assert.False(t, ok, "same value is not a change")

	_, ok = Track("weight", testutil.Float(100), nil)
	assert.False(t, ok, "clearing is not recorded")

	c, ok := Track("weight", nil, testutil.Float(135))
	require.True(t, ok)
	assert.Nil(t, c.Previous)
	assert.Equal(t, 135.0, *c.New)

	c, ok = TrackInt("reps", testutil.Int(8), testutil.Int(10))
	require.True(t, ok)
	assert.Equal(t, 8.0, *c.Previous)
	assert.Equal(t, 10.0, *c.New)
}

func TestWriterRecordAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	w := NewWriter(db)
	n := w.Record(ctx, TableChanges, "Bench Press", "push", []Change{
		{Field: "weight", Previous: testutil.Float(0), New: testutil.Float(185)},
		{Field: "reps", Previous: testutil.Float(5), New: testutil.Float(6)},
		{Field: "skipped", Previous: testutil.Float(5), New: nil},
	})
	assert.Equal(t, 2, n)

	w.Record(ctx, TablePRChanges, "Squat", "legs", []Change{
		{Field: "weight", New: testutil.Float(315)},
	})

	entries, err := List(ctx, db, TableChanges, "Bench Press", "push")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byField := map[string]float64{}
	for _, e := range entries {
		byField[e.Field] = e.PercentageChange
	}
	assert.Equal(t, 0.0, byField["weight"], "previous 0 records 0%")
	assert.InDelta(t, 20.0, byField["reps"], 1e-9)

	all, err := List(ctx, db, TablePRChanges, "", "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].PreviousValue)
	assert.Equal(t, 0.0, all[0].PercentageChange)

	none, err := List(ctx, db, TableChanges, "Deadlift", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWriterSwallowsFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	w := NewWriter(db)
	db.Close()

	n := w.Record(ctx, TableChanges, "Bench Press", "push", []Change{
		{Field: "weight", New: testutil.Float(185)},
	})
	assert.Equal(t, 0, n)

	assert.Equal(t, 0, w.Record(ctx, "users", "x", "y", nil))

	var none *Writer
	assert.Equal(t, 0, none.Record(ctx, TableChanges, "Bench Press", "push", []Change{
		{Field: "weight", New: testutil.Float(185)},
	}))
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	NewWriter(db).Record(ctx, TableChanges, "Row", "pull", []Change{
		{Field: "weight", New: testutil.Float(95)},
	})
	entries, err := List(ctx, db, TableChanges, "", "")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, Delete(ctx, db, TableChanges, entries[0].ID))
	assert.ErrorIs(t, Delete(ctx, db, TableChanges, entries[0].ID), sql.ErrNoRows)
	assert.Error(t, Delete(ctx, db, "exercises", "x"))
}
