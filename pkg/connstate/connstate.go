// Package connstate tracks whether the model backend is reachable and emits
// exactly one notice per ONLINE<->OFFLINE flip, regardless of how many
// requests observe the same condition.
package connstate

import (
	"sync"
	"time"
)

type State int

const (
	Online State = iota
	Offline
)

func (s State) String() string {
	if s == Offline {
		return "offline"
	}
	return "online"
}

// Transition is what a single gateway observation produced.
type Transition int

const (
	None Transition = iota
	Lost
	Restored
)

// Notice is delivered to whatever layer renders the user-facing transition
// message.
type Notice struct {
	Transition Transition
	At         time.Time
}

// Tracker is the hysteresis state machine. Recording an observation and
// consuming the resulting one-shot notice happen under the same lock, so a
// transition can never be reported twice under concurrent completions.
type Tracker struct {
	mu               sync.Mutex
	state            State
	lastTransitionAt time.Time

	notices chan Notice
	now     func() time.Time
}

// NewTracker starts in the Online state.
func NewTracker() *Tracker {
	return &Tracker{
		state:   Online,
		notices: make(chan Notice, 8),
		now:     time.Now,
	}
}

// RecordSuccess observes a gateway success. Returns Restored exactly once
// when the state flips from Offline; repeated successes are no-ops.
func (t *Tracker) RecordSuccess() Transition {
	return t.record(Online)
}

// RecordFailure observes a gateway failure. Returns Lost exactly once when
// the state flips from Online; repeated failures are no-ops.
func (t *Tracker) RecordFailure() Transition {
	return t.record(Offline)
}

func (t *Tracker) record(next State) Transition {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == next {
		return None
	}

	t.state = next
	t.lastTransitionAt = t.now()

	tr := Lost
	if next == Online {
		tr = Restored
	}

	// Non-blocking: a slow renderer must never stall the pipeline.
	select {
	case t.notices <- Notice{Transition: tr, At: t.lastTransitionAt}:
	default:
	}

	return tr
}

// State returns the current connectivity state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// LastTransitionAt returns when the state last flipped, zero if it never has.
func (t *Tracker) LastTransitionAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTransitionAt
}

// Notices exposes the transition feed for the rendering layer.
func (t *Tracker) Notices() <-chan Notice {
	return t.notices
}
