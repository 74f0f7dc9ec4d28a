// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultThrottle coalesces in-place state replacements into one write.
const DefaultThrottle = 100 * time.Millisecond

type Clock interface {
	Now() time.Time
}

// SystemClock reads wall time in Location (local time when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Store persists timer state. Load returns ErrNotFound for unknown keys.
type Store interface {
	Load(ctx context.Context, key string) (State, error)
	Save(ctx context.Context, key string, s State) error
}

// Load fetches the state for key and applies the daily auto-reset. A state
// that cannot be fetched is replaced by defaults.
func Load(ctx context.Context, store Store, key string, now time.Time, logger *slog.Logger) State {
	return LoadDay(ctx, store, key, DateKey(now), logger)
}

// LoadDay is Load with the calendar day supplied by the caller, for clients
// whose day differs from the server's.
func LoadDay(ctx context.Context, store Store, key, today string, logger *slog.Logger) State {
	s, err := store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Error("failed to load timer state, using defaults", "key", key, "error", err)
		}
		return Default(today)
	}

	s, wasReset := ApplyDailyReset(Normalize(s), today)
	if wasReset {
		logger.Info("timer auto-reset for new day", "key", key, "today", today)
	}
	return s
}

// Syncer holds the in-memory state of one timer and mirrors it to a Store.
// Transitions are written through immediately; Replace is throttled.
// Failed writes are logged and dropped; memory stays authoritative.
type Syncer struct {
	key      string
	store    Store
	clock    Clock
	throttle time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	pending bool
	timer   *time.Timer
}

type Option func(*Syncer)

func WithClock(c Clock) Option {
	return func(s *Syncer) { s.clock = c }
}

func WithThrottle(d time.Duration) Option {
	return func(s *Syncer) { s.throttle = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

// NewSyncer loads the persisted state for key and returns a Syncer for it.
func NewSyncer(ctx context.Context, key string, store Store, opts ...Option) *Syncer {
	s := &Syncer{
		key:      key,
		store:    store,
		clock:    SystemClock{},
		throttle: DefaultThrottle,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = Load(ctx, store, key, s.clock.Now(), s.logger)
	return s
}

// State returns a copy of the current in-memory state.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Snapshot returns the current state with derived reads at the clock's now.
func (s *Syncer) Snapshot() Snapshot {
	return Describe(s.State(), s.clock.Now())
}

func (s *Syncer) Start(ctx context.Context) State { return s.mustDispatch(ctx, ActionStart) }
func (s *Syncer) Pause(ctx context.Context) State { return s.mustDispatch(ctx, ActionPause) }
func (s *Syncer) Lap(ctx context.Context) State   { return s.mustDispatch(ctx, ActionLap) }
func (s *Syncer) Reset(ctx context.Context) State { return s.mustDispatch(ctx, ActionReset) }

func (s *Syncer) mustDispatch(ctx context.Context, a Action) State {
	st, _ := s.Dispatch(ctx, a)
	return st
}

// Dispatch applies a transition and persists the result before returning.
// Any throttled write still pending is superseded by this one.
func (s *Syncer) Dispatch(ctx context.Context, a Action) (State, error) {
	s.mu.Lock()
	next, err := Reduce(s.state, a, s.clock.Now())
	if err != nil {
		s.mu.Unlock()
		return s.State(), err
	}
	s.state = next
	s.cancelPendingLocked()
	out := next.Clone()
	s.mu.Unlock()

	s.save(ctx, out)
	return out, nil
}

// Replace swaps in a new state and schedules a throttled write. Replacements
// inside the throttle window share one write carrying the latest state.
func (s *Syncer) Replace(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Normalize(st).Clone()
	if s.pending {
		return
	}
	s.pending = true
	s.timer = time.AfterFunc(s.throttle, s.flushPending)
}

// ApplyRemote replaces the state with one written elsewhere (another tab or
// client). It does not write back. Last writer wins; nothing is merged.
func (s *Syncer) ApplyRemote(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Normalize(st).Clone()
}

// Follow applies every state received on updates until ctx is done or the
// channel closes.
func (s *Syncer) Follow(ctx context.Context, updates <-chan State) {
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			s.ApplyRemote(st)
		}
	}
}

// Flush writes a pending throttled state now. Call it when the page is
// hidden or unloading; at most the write in flight can still be lost.
func (s *Syncer) Flush(ctx context.Context) {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	s.cancelPendingLocked()
	out := s.state.Clone()
	s.mu.Unlock()

	s.save(ctx, out)
}

// hasPending reports whether a throttled write is waiting.
func (s *Syncer) hasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Syncer) flushPending() {
	s.Flush(context.Background())
}

func (s *Syncer) cancelPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}

func (s *Syncer) save(ctx context.Context, st State) {
	if err := s.store.Save(ctx, s.key, st); err != nil {
		s.logger.Error("failed to persist timer state", "key", s.key, "error", err)
	}
}
