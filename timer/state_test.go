// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func at(ms int64) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

func TestLapScenario(t *testing.T) {
	s := Default("2024-01-01")

	s = Start(s, at(0))
	s = TakeLap(s, at(5000))
	require.Len(t, s.Laps, 1)
	assert.Equal(t, int64(5000), s.Laps[0].LapTime)
	assert.Equal(t, "0:05", FormatDuration(s.Laps[0].LapTime))
	assert.Equal(t, int64(1), s.Laps[0].ID)

	s = Pause(s, at(9000))
	assert.False(t, s.IsRunning)
	assert.Equal(t, int64(4000), CurrentLapElapsed(s, at(9000)))
	assert.Equal(t, int64(4000), CurrentLapElapsed(s, at(60000)), "paused clock must not move")

	resume := int64(20000)
	s = Start(s, at(resume))
	s = TakeLap(s, at(resume+2000))
	require.Len(t, s.Laps, 2)
	assert.Equal(t, int64(6000), s.Laps[1].LapTime)
	assert.Equal(t, "0:06", FormatDuration(s.Laps[1].LapTime))
	assert.Equal(t, int64(5000), s.Laps[1].StartOffset)
	assert.Equal(t, int64(2), s.Laps[1].ID)

	assert.Equal(t, int64(11000), TotalElapsed(s, at(resume+2000)))
}

func TestStartPausePairsSumToTotal(t *testing.T) {
	pairs := []struct{ start, pause int64 }{
		{0, 1500},
		{4000, 4250},
		{10000, 13000},
		{20000, 20001},
	}

	s := Default("2024-01-01")
	var want int64
	for _, p := range pairs {
		s = Start(s, at(p.start))
		s = Pause(s, at(p.pause))
		want += p.pause - p.start
		assert.Equal(t, want, TotalElapsed(s, at(p.pause+99999)))
		assert.Equal(t, want, SessionElapsed(s, at(p.pause+99999)))
	}
}

func TestLapWithZeroElapsedIsNoop(t *testing.T) {
	s := Start(Default("2024-01-01"), at(1000))

	same := TakeLap(s, at(1000))
	assert.Empty(t, same.Laps)
	assert.Equal(t, s, same)

	stopped := Default("2024-01-01")
	assert.Empty(t, TakeLap(stopped, at(5000)).Laps)
}

func TestLapRequiresRunning(t *testing.T) {
	s := Start(Default("2024-01-01"), at(0))
	s = Pause(s, at(3000))

	after := TakeLap(s, at(4000))
	assert.Empty(t, after.Laps)
	assert.Equal(t, int64(3000), CurrentLapElapsed(after, at(4000)))
}

func TestStartAndPauseAreIdempotent(t *testing.T) {
	s := Start(Default("2024-01-01"), at(0))
	again := Start(s, at(5000))
	assert.Equal(t, s.SessionStart, again.SessionStart)

	p := Pause(s, at(1000))
	p2 := Pause(p, at(9000))
	assert.Equal(t, p, p2)
}

func TestResetYieldsDefault(t *testing.T) {
	states := []State{
		Default("2023-12-31"),
		Start(Default("2024-01-01"), at(0)),
		TakeLap(Start(Default("2024-01-01"), at(0)), at(7000)),
		Pause(TakeLap(Start(Default("2024-01-01"), at(0)), at(7000)), at(8000)),
		{IsRunning: true, ElapsedBeforeStart: 42, AutoResetDaily: false, DateKey: "2020-02-02"},
	}

	for _, prior := range states {
		got := Reset(prior, at(100))
		assert.Equal(t, Default("2024-01-01"), got)
	}
}

func TestApplyDailyReset(t *testing.T) {
	base := TakeLap(Start(Default("2024-01-01"), at(0)), at(7000))
	base = Pause(base, at(9000))

	t.Run("auto reset on new day", func(t *testing.T) {
		got, reset := ApplyDailyReset(base, "2024-01-02")
		assert.True(t, reset)
		assert.Equal(t, Default("2024-01-02"), got)
	})

	t.Run("same day kept", func(t *testing.T) {
		got, reset := ApplyDailyReset(base, "2024-01-01")
		assert.False(t, reset)
		assert.Equal(t, base, got)
	})

	t.Run("auto reset disabled keeps state verbatim", func(t *testing.T) {
		manual := base
		manual.AutoResetDaily = false
		got, reset := ApplyDailyReset(manual, "2024-01-02")
		assert.False(t, reset)
		assert.Equal(t, manual, got)
	})
}

func TestDeleteLapThenRelapRepeatsID(t *testing.T) {
	s := Start(Default("2024-01-01"), at(0))
	s = TakeLap(s, at(1000))
	s = TakeLap(s, at(3000))
	require.Len(t, s.Laps, 2)

	s, ok := DeleteLap(s, 1)
	require.True(t, ok)
	require.Len(t, s.Laps, 1)
	assert.Equal(t, int64(2), s.Laps[0].ID)

	s = TakeLap(s, at(6000))
	require.Len(t, s.Laps, 2)
	// count+1 numbering: the new lap reuses ID 2.
	assert.Equal(t, int64(2), s.Laps[1].ID)

	_, ok = DeleteLap(s, 99)
	assert.False(t, ok)
}

func TestTakeLapDoesNotAliasPriorState(t *testing.T) {
	s := Start(Default("2024-01-01"), at(0))
	s = TakeLap(s, at(1000))
	before := s

	_ = TakeLap(s, at(2000))
	assert.Len(t, before.Laps, 1)
}

func TestReduce(t *testing.T) {
	s := Default("2024-01-01")

	s, err := Reduce(s, ActionStart, at(0))
	require.NoError(t, err)
	assert.True(t, s.IsRunning)

	s, err = Reduce(s, ActionLap, at(2500))
	require.NoError(t, err)
	assert.Len(t, s.Laps, 1)

	s, err = Reduce(s, ActionPause, at(3000))
	require.NoError(t, err)
	assert.False(t, s.IsRunning)

	s, err = Reduce(s, ActionReset, at(3000))
	require.NoError(t, err)
	assert.Empty(t, s.Laps)

	_, err = Reduce(s, Action("explode"), at(0))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0:00"},
		{-50, "0:00"},
		{999, "0:00"},
		{5000, "0:05"},
		{65000, "1:05"},
		{3600000, "1:00:00"},
		{3725000, "1:02:05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.ms), "ms=%d", tt.ms)
	}
}

func TestDescribe(t *testing.T) {
	s := Start(Default("2024-01-01"), at(0))
	s = TakeLap(s, at(5000))

	snap := Describe(s, at(8000))
	assert.Equal(t, int64(3000), snap.CurrentLapElapsed)
	assert.Equal(t, int64(8000), snap.TotalElapsed)
	assert.Equal(t, int64(8000), snap.SessionElapsed)
	assert.Equal(t, "0:03", snap.CurrentLapDisplay)
	assert.Equal(t, "0:08", snap.TotalDisplay)

	empty := Describe(State{}, at(0))
	assert.NotNil(t, empty.Laps)
}
