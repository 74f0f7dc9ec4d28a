// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package timer implements the workout stopwatch: a two-clock state machine
with laps, its persistence policy, and cross-client fan-out.

# State Machine

A timer is Stopped or Running. Transitions are pure functions of the prior
State and the current time:

	s = timer.Start(s, now)   // Stopped → Running
	s = timer.TakeLap(s, now) // Running → Running, only if the lap has time on it
	s = timer.Pause(s, now)   // Running → Stopped, folds both clocks into accumulators
	s = timer.Reset(s, now)   // any → Stopped, defaults

Reduce dispatches by Action for callers that receive the transition by name.
Invalid transitions (start while running, lap while stopped) return the
state unchanged.

Derived reads are recomputed from the state and the clock:

	timer.CurrentLapElapsed(s, now)
	timer.SessionElapsed(s, now)
	timer.TotalElapsed(s, now) // completed laps + current lap

Lap IDs are count(laps)+1 when the lap is taken. Deleting a lap and lapping
again can therefore repeat an ID; lap storage does not treat IDs as unique.

# Daily Reset

Each transition stamps DateKey with the calendar day. On load, a state with
AutoResetDaily set and a DateKey other than today is replaced by defaults,
including an unfinished session.

# Persistence

Syncer owns the in-memory state of one timer and mirrors it to a Store:

	s := timer.NewSyncer(ctx, "workout", store)
	s.Start(ctx)          // written before returning
	s.Replace(edited)     // written once per throttle window (100ms)
	s.Flush(ctx)          // on page hide / unload

Write errors are logged and dropped; the in-memory state stays
authoritative and nothing is retried. Load errors yield defaults.

# Fan-out

Hub delivers written states to other subscribers of the same key. It is
last-write-wins: a subscriber that has not read yet only ever sees the
newest state, and receivers replace their state wholesale (Syncer.Follow).
There is no merging.
*/
package timer
