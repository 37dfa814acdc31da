// Package breaker isolates the authorizer from a failing policy engine.
// After enough consecutive failures it stops forwarding calls for a
// cool-down period, then probes with a single trial call.
package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned instead of calling through while the breaker is open
var ErrOpen = errors.New("circuit breaker is open")

// State of the breaker state machine
type State int

const (
	// Closed: calls pass through, consecutive failures are counted
	Closed State = iota
	// Open: calls fail immediately with ErrOpen until the cool-down elapses
	Open
	// HalfOpen: exactly one trial call is permitted, its outcome decides
	// the next state
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	}
	return "unknown"
}

const (
	defaultThreshold = 5
	defaultCoolDown  = 30 * time.Second
)

// Breaker is shared by all concurrent requests of a process.
// The mutex guards only the (state, counter, timestamp) tuple and is held
// for the read-and-transition, never across the guarded call itself.
type Breaker struct {
	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool

	threshold int
	coolDown  time.Duration
	now       func() time.Time
	onChange  func(from, to State)

	// transition captured under the lock, reported after release
	pending     bool
	pendingFrom State
	pendingTo   State
}

// Option controls how to init a Breaker
type Option func(*Breaker)

// WithThreshold sets how many consecutive failures trip the breaker
func WithThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithCoolDown sets how long an open breaker waits before probing
func WithCoolDown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.coolDown = d
		}
	}
}

// WithClock replaces the wall clock, for deterministic tests
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		b.now = now
	}
}

// WithOnStateChange registers a callback observing every transition
func WithOnStateChange(fn func(from, to State)) Option {
	return func(b *Breaker) {
		b.onChange = fn
	}
}

// New creates a closed Breaker
func New(opts ...Option) *Breaker {
	b := &Breaker{
		threshold: defaultThreshold,
		coolDown:  defaultCoolDown,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current state, advancing Open to HalfOpen if the
// cool-down has elapsed
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.coolDown {
		return HalfOpen
	}
	return b.state
}

// Do guards fn with the breaker b. It returns ErrOpen without calling fn
// while b is open, and otherwise returns fn's own result. The outcome of
// every permitted call is recorded, including calls cancelled by the
// caller's context, so the failure count stays accurate.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	trial, e := b.acquire()
	if e != nil {
		var zero T
		return zero, e
	}

	out, e := fn()
	if e != nil {
		b.recordFailure(trial)
		return out, e
	}
	b.recordSuccess(trial)
	return out, nil
}

// acquire decides if a call may proceed. The returned flag marks the call
// as the single half-open trial.
func (b *Breaker) acquire() (trial bool, err error) {
	b.mu.Lock()

	switch b.state {
	case Closed:
		b.mu.Unlock()
		return false, nil

	case Open:
		if b.now().Sub(b.openedAt) < b.coolDown {
			b.mu.Unlock()
			return false, ErrOpen
		}
		b.transition(HalfOpen)
		b.probing = true
		b.unlockAndNotify()
		return true, nil

	case HalfOpen:
		if b.probing {
			b.mu.Unlock()
			return false, ErrOpen
		}
		b.probing = true
		b.mu.Unlock()
		return true, nil
	}

	b.mu.Unlock()
	return false, nil
}

func (b *Breaker) recordSuccess(trial bool) {
	b.mu.Lock()
	if trial {
		b.probing = false
		b.failures = 0
		b.transition(Closed)
		b.unlockAndNotify()
		return
	}
	b.failures = 0
	b.mu.Unlock()
}

func (b *Breaker) recordFailure(trial bool) {
	b.mu.Lock()
	if trial {
		b.probing = false
		b.openedAt = b.now()
		b.transition(Open)
		b.unlockAndNotify()
		return
	}
	if b.state == Closed {
		b.failures++
		if b.failures >= b.threshold {
			b.openedAt = b.now()
			b.transition(Open)
			b.unlockAndNotify()
			return
		}
	}
	b.mu.Unlock()
}

func (b *Breaker) transition(to State) {
	b.pendingFrom, b.pendingTo, b.pending = b.state, to, b.state != to
	b.state = to
}

// unlockAndNotify releases the lock, then reports a pending transition.
// The callback runs outside the critical section so it may take its own locks.
func (b *Breaker) unlockAndNotify() {
	pending, from, to := b.pending, b.pendingFrom, b.pendingTo
	b.pending = false
	b.mu.Unlock()
	if pending && b.onChange != nil {
		b.onChange(from, to)
	}
}
