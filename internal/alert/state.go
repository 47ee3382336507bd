// Package alert implements the deduplicating alert scheduler: a
// session-gated polling loop over every (instrument, timeframe) pair,
// with at-most-once notification per closed bar.
package alert

import (
	"sync"

	"github.com/arunpanwar240-bot/apna-screener/internal/model"
)

// Key identifies one dedup slot.
type Key struct {
	Instrument model.Instrument
	Timeframe  model.Timeframe
}

// State is the process-wide mutable alert state: the per-pair dedup
// map, the per-day sent-message set, the rotating "today's signals"
// list with its read cursor, and the most recent alert text. Mutated
// only by the scheduler; the display path reads through the accessors
// below. One coarse lock is enough — there is no high-frequency
// contention.
type State struct {
	mu sync.RWMutex

	lastSent  map[Key]string // pair → last evaluated bar timestamp (ISO-8601)
	sentTexts map[string]struct{}
	today     []model.Signal
	cursor    int
	lastAlert string
}

// NewState creates empty alert state.
func NewState() *State {
	return &State{
		lastSent:  make(map[Key]string),
		sentTexts: make(map[string]struct{}),
	}
}

// Seen reports whether the pair's last evaluated bar timestamp
// already equals ts. True means the bar was handled — the scheduler
// suppresses re-evaluation, making repeated polling idempotent.
func (s *State) Seen(k Key, ts string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSent[k] == ts
}

// MarkSeen records ts as the pair's last evaluated bar timestamp.
// Applied whether or not the bar produced a signal, and whether or
// not delivery succeeded.
func (s *State) MarkSeen(k Key, ts string) {
	s.mu.Lock()
	s.lastSent[k] = ts
	s.mu.Unlock()
}

// RecordSignal appends a signal to today's rotation and retains its
// message as the most recent alert.
func (s *State) RecordSignal(sig model.Signal, message string) {
	s.mu.Lock()
	s.today = append(s.today, sig)
	s.lastAlert = message
	s.mu.Unlock()
}

// MessageSent reports whether the exact message text was already
// delivered since the last midnight reset.
func (s *State) MessageSent(text string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sentTexts[text]
	return ok
}

// MarkMessageSent records a delivered message text.
func (s *State) MarkMessageSent(text string) {
	s.mu.Lock()
	s.sentTexts[text] = struct{}{}
	s.mu.Unlock()
}

// NextTodaySignal returns the signal under the round-robin cursor and
// advances it, wrapping at the end of the list. ok is false when the
// list is empty.
func (s *State) NextTodaySignal() (sig model.Signal, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.today) == 0 {
		return model.Signal{}, false
	}
	sig = s.today[s.cursor%len(s.today)]
	s.cursor = (s.cursor + 1) % len(s.today)
	return sig, true
}

// TodaySignals returns a copy of today's rotation list in insertion
// order.
func (s *State) TodaySignals() []model.Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Signal, len(s.today))
	copy(out, s.today)
	return out
}

// LastAlert returns the most recent alert message, or "".
func (s *State) LastAlert() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAlert
}

// ResetMessages clears the sent-message set. Runs at local midnight:
// it bounds the set's growth and lets identical text be resent on a
// new day.
func (s *State) ResetMessages() {
	s.mu.Lock()
	s.sentTexts = make(map[string]struct{})
	s.mu.Unlock()
}

// ResetToday clears the rotation list and its cursor. Runs at session
// open (09:15).
func (s *State) ResetToday() {
	s.mu.Lock()
	s.today = nil
	s.cursor = 0
	s.mu.Unlock()
}
