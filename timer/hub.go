// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timer

import "sync"

// Hub fans written timer states out to subscribers of the same key.
// Each subscriber holds at most one undelivered state: a newer publish
// replaces an older one that has not been received yet.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan State]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan State]struct{})}
}

// Subscribe returns a channel of states published for key and a cancel
// function that unregisters and closes it.
func (h *Hub) Subscribe(key string) (<-chan State, func()) {
	ch := make(chan State, 1)

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[chan State]struct{})
	}
	h.subs[key][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[key], ch)
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish never blocks.
func (h *Hub) Publish(key string, s State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[key] {
		st := s.Clone()
		select {
		case ch <- st:
		default:
			// Drop the stale value so the newest one is delivered.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}

// subscribers reports how many subscribers key has.
func (h *Hub) subscribers(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[key])
}
