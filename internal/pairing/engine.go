// Package pairing implements the wait queue and matchmaking rules.
package pairing

import (
	"errors"
	"sync"
	"time"
)

// Matchmaking conflicts. Callers treat both as no-ops, not failures.
var (
	ErrAlreadyQueued = errors.New("participant already queued")
	ErrDelayed       = errors.New("participant is in a reassignment delay")
)

type entry struct {
	id         string
	enqueuedAt time.Time
}

// Engine owns the FIFO wait queue and the post-reassignment delay set. It is
// the only cross-session shared mutable state besides the AI-session counter;
// every operation holds the single mutex only for the duration of a queue or
// map touch.
type Engine struct {
	mu           sync.Mutex
	queue        []entry
	delayedUntil map[string]time.Time
	delay        time.Duration
	delayEnabled bool
	now          func() time.Time
}

// NewEngine creates a pairing engine. When delayEnabled is false, reassigned
// participants re-enter the queue immediately.
func NewEngine(delay time.Duration, delayEnabled bool) *Engine {
	return &Engine{
		delayedUntil: make(map[string]time.Time),
		delay:        delay,
		delayEnabled: delayEnabled,
		now:          time.Now,
	}
}

// DelayEnabled reports whether the reassignment delay is in effect.
func (e *Engine) DelayEnabled() bool { return e.delayEnabled }

// Delay returns the configured reassignment delay.
func (e *Engine) Delay() time.Duration { return e.delay }

// Enqueue appends a participant to the queue tail and returns its 1-based
// position. Joining while already queued or delayed is rejected.
func (e *Engine) Enqueue(id string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isDelayedLocked(id) {
		return 0, ErrDelayed
	}
	for i, ent := range e.queue {
		if ent.id == id {
			return i + 1, ErrAlreadyQueued
		}
	}
	e.queue = append(e.queue, entry{id: id, enqueuedAt: e.now()})
	return len(e.queue), nil
}

// Remove takes a participant out of the queue if present.
func (e *Engine) Remove(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, ent := range e.queue {
		if ent.id == id {
			e.queue = append(e.queue[:i], e.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Position returns a participant's 1-based rank in the queue, 0 if absent.
func (e *Engine) Position(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, ent := range e.queue {
		if ent.id == id {
			return i + 1
		}
	}
	return 0
}

// Len returns the current queue size.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Waiting returns the queued participant ids in FIFO order.
func (e *Engine) Waiting() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, len(e.queue))
	for i, ent := range e.queue {
		ids[i] = ent.id
	}
	return ids
}

// NextPair dequeues the two oldest waiters when at least two are queued.
// FIFO order guarantees no participant is skipped by a later arrival.
func (e *Engine) NextPair() (a, b string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) < 2 {
		return "", "", false
	}
	a, b = e.queue[0].id, e.queue[1].id
	e.queue = e.queue[2:]
	return a, b, true
}

// LoneWaiter returns the single queued participant, if exactly one is
// waiting. This is the AI-substitution trigger.
func (e *Engine) LoneWaiter() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queue) != 1 {
		return "", false
	}
	return e.queue[0].id, true
}

// StartDelay records a reassignment delay for a participant. During the delay
// the participant is in neither the queue nor any session. No-op when the
// delay is disabled.
func (e *Engine) StartDelay(id string) {
	if !e.delayEnabled {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delayedUntil[id] = e.now().Add(e.delay)
}

// ClearDelay drops any pending delay for a participant.
func (e *Engine) ClearDelay(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.delayedUntil, id)
}

// IsDelayed reports whether a participant is still inside its delay window.
// Expired entries are cleaned up on read.
func (e *Engine) IsDelayed(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isDelayedLocked(id)
}

func (e *Engine) isDelayedLocked(id string) bool {
	until, ok := e.delayedUntil[id]
	if !ok {
		return false
	}
	if !e.now().Before(until) {
		delete(e.delayedUntil, id)
		return false
	}
	return true
}
