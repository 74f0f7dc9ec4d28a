// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timer

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound      = errors.New("timer not found")
	ErrUnknownAction = errors.New("unknown timer action")
)

// Lap is a completed timing segment. IDs are count(laps)+1 at the time the
// lap was taken, so deleting a lap and lapping again can repeat an ID.
type Lap struct {
	ID          int64 `json:"id"`
	LapTime     int64 `json:"lapTime"`     // ms
	StartOffset int64 `json:"startOffset"` // ms, sum of earlier laps
}

// State is the persisted stopwatch for one timer key. Times are epoch
// milliseconds; accumulators are milliseconds.
type State struct {
	IsRunning             bool   `json:"isRunning"`
	SessionStart          int64  `json:"sessionStart"`
	LapStart              int64  `json:"lapStart"`
	ElapsedBeforeStart    int64  `json:"elapsedBeforeStart"`
	LapElapsedBeforeStart int64  `json:"lapElapsedBeforeStart"`
	Laps                  []Lap  `json:"laps"`
	DateKey               string `json:"dateKey"`
	AutoResetDaily        bool   `json:"autoResetDaily"`
}

type Action string

const (
	ActionStart Action = "start"
	ActionPause Action = "pause"
	ActionLap   Action = "lap"
	ActionReset Action = "reset"
)

// DateKey is the calendar day of t in t's own location.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Default is the stopped, zeroed state for the given day.
func Default(dateKey string) State {
	return State{
		Laps:           []Lap{},
		DateKey:        dateKey,
		AutoResetDaily: true,
	}
}

// Reduce applies a transition. Transitions that are not valid in the
// current state return it unchanged.
func Reduce(s State, a Action, now time.Time) (State, error) {
	switch a {
	case ActionStart:
		return Start(s, now), nil
	case ActionPause:
		return Pause(s, now), nil
	case ActionLap:
		return TakeLap(s, now), nil
	case ActionReset:
		return Reset(s, now), nil
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
}

// Start moves Stopped to Running. The lap accumulator is kept.
func Start(s State, now time.Time) State {
	if s.IsRunning {
		return s
	}
	ms := now.UnixMilli()
	s.IsRunning = true
	s.SessionStart = ms
	s.LapStart = ms
	s.DateKey = DateKey(now)
	return s
}

// Pause freezes both clocks by folding the running spans into the
// accumulators.
func Pause(s State, now time.Time) State {
	if !s.IsRunning {
		return s
	}
	ms := now.UnixMilli()
	s.ElapsedBeforeStart += max(0, ms-s.SessionStart)
	s.LapElapsedBeforeStart += max(0, ms-s.LapStart)
	s.IsRunning = false
	s.SessionStart = 0
	s.LapStart = 0
	s.DateKey = DateKey(now)
	return s
}

// TakeLap closes the current lap. It is a no-op while stopped or when the
// current lap has no elapsed time.
func TakeLap(s State, now time.Time) State {
	if !s.IsRunning {
		return s
	}
	current := CurrentLapElapsed(s, now)
	if current <= 0 {
		return s
	}

	laps := make([]Lap, len(s.Laps), len(s.Laps)+1)
	copy(laps, s.Laps)
	laps = append(laps, Lap{
		ID:          int64(len(s.Laps) + 1),
		LapTime:     current,
		StartOffset: completedLapTime(s),
	})

	s.Laps = laps
	s.LapElapsedBeforeStart = 0
	s.LapStart = now.UnixMilli()
	s.DateKey = DateKey(now)
	return s
}

// Reset discards everything, whatever the prior state.
func Reset(_ State, now time.Time) State {
	return Default(DateKey(now))
}

// DeleteLap removes the first lap with the given ID. Later laps keep their
// IDs and offsets.
func DeleteLap(s State, id int64) (State, bool) {
	for i, lap := range s.Laps {
		if lap.ID != id {
			continue
		}
		laps := make([]Lap, 0, len(s.Laps)-1)
		laps = append(laps, s.Laps[:i]...)
		laps = append(laps, s.Laps[i+1:]...)
		s.Laps = laps
		return s, true
	}
	return s, false
}

// ApplyDailyReset discards the state when auto-reset is on and it was last
// touched on a different day than today.
func ApplyDailyReset(s State, today string) (State, bool) {
	if !s.AutoResetDaily || s.DateKey == today {
		return s, false
	}
	return Default(today), true
}

// Normalize makes a decoded state safe to use: nil laps become empty and
// negative accumulators are clamped.
func Normalize(s State) State {
	if s.Laps == nil {
		s.Laps = []Lap{}
	}
	s.ElapsedBeforeStart = max(0, s.ElapsedBeforeStart)
	s.LapElapsedBeforeStart = max(0, s.LapElapsedBeforeStart)
	return s
}

// Clone copies the state including its laps.
func (s State) Clone() State {
	laps := make([]Lap, len(s.Laps))
	copy(laps, s.Laps)
	s.Laps = laps
	return s
}

// CurrentLapElapsed is the running lap time in ms at now.
func CurrentLapElapsed(s State, now time.Time) int64 {
	var running int64
	if s.IsRunning {
		running = max(0, now.UnixMilli()-s.LapStart)
	}
	return running + s.LapElapsedBeforeStart
}

// SessionElapsed is the session clock in ms at now.
func SessionElapsed(s State, now time.Time) int64 {
	var running int64
	if s.IsRunning {
		running = max(0, now.UnixMilli()-s.SessionStart)
	}
	return running + s.ElapsedBeforeStart
}

// TotalElapsed is every completed lap plus the current one.
func TotalElapsed(s State, now time.Time) int64 {
	return completedLapTime(s) + CurrentLapElapsed(s, now)
}

func completedLapTime(s State) int64 {
	var total int64
	for _, lap := range s.Laps {
		total += lap.LapTime
	}
	return total
}

// Snapshot is a state plus its derived reads, as served to clients.
type Snapshot struct {
	State
	CurrentLapElapsed int64  `json:"currentLapElapsed"`
	SessionElapsed    int64  `json:"sessionElapsed"`
	TotalElapsed      int64  `json:"totalElapsed"`
	CurrentLapDisplay string `json:"currentLapDisplay"`
	TotalDisplay      string `json:"totalDisplay"`
}

func Describe(s State, now time.Time) Snapshot {
	s = Normalize(s)
	current := CurrentLapElapsed(s, now)
	total := TotalElapsed(s, now)
	return Snapshot{
		State:             s,
		CurrentLapElapsed: current,
		SessionElapsed:    SessionElapsed(s, now),
		TotalElapsed:      total,
		CurrentLapDisplay: FormatDuration(current),
		TotalDisplay:      FormatDuration(total),
	}
}

// FormatDuration renders ms as m:ss, or h:mm:ss from one hour up.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	h := secs / 3600
	m := (secs % 3600) / 60
	sec := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
