// Package focus implements the focus session state machine.
//
// The only durable fact about a running session is its absolute deadline.
// SecondsRemaining is a projection of the deadline recomputed by Reconcile,
// so a session survives restarts, sleep and throttled ticking without drift.
package focus

import (
	"strings"
	"time"
)

// DefaultDuration is the length of a new focus session.
const DefaultDuration = 25 * time.Minute

// Phase describes where a State sits in the session lifecycle.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseExpired Phase = "expired"
)

// State is the single focus timer value owned by the composing entry point.
// An empty Task means no session; a zero Deadline means no running countdown.
type State struct {
	Task             string
	SecondsRemaining int
	Deadline         time.Time
	ActiveSound      string
}

// New returns the first-run state.
func New(defaultDuration time.Duration) State {
	return State{SecondsRemaining: wholeSeconds(defaultDuration)}
}

// Phase reports the lifecycle phase of the state.
func (state State) Phase() Phase {
	switch {
	case state.Task == "":
		return PhaseIdle
	case state.Deadline.IsZero():
		return PhaseExpired
	default:
		return PhaseRunning
	}
}

// Active reports whether a countdown is in progress.
func (state State) Active() bool {
	return !state.Deadline.IsZero()
}

// Start begins (or restarts) a session for task lasting duration from now.
// A task that is blank after trimming leaves the state unchanged.
func (state State) Start(task string, duration time.Duration, now time.Time) State {
	task = strings.TrimSpace(task)
	if task == "" {
		return state
	}
	seconds := wholeSeconds(duration)
	state.Task = task
	state.SecondsRemaining = seconds
	state.Deadline = time.UnixMilli(now.UnixMilli() + int64(seconds)*1000)
	return state
}

// Extend moves the deadline by delta. It is a no-op without a running countdown.
// The deadline is not clamped; the next Reconcile expires a session pushed into
// the past. The cached seconds never go below zero.
func (state State) Extend(delta time.Duration) State {
	if !state.Active() {
		return state
	}
	seconds := wholeSeconds(delta)
	state.Deadline = time.UnixMilli(state.Deadline.UnixMilli() + int64(seconds)*1000)
	state.SecondsRemaining += seconds
	if state.SecondsRemaining < 0 {
		state.SecondsRemaining = 0
	}
	return state
}

// Reset returns to Idle. The active sound is untouched.
func (state State) Reset(defaultDuration time.Duration) State {
	state.Task = ""
	state.Deadline = time.Time{}
	state.SecondsRemaining = wholeSeconds(defaultDuration)
	return state
}

// Reconcile recomputes SecondsRemaining from the deadline as seen at now.
// A passed deadline expires the session: the countdown is cleared while the
// task stays set so the expiry can be shown. Reconcile is idempotent for the
// same or any later now.
func (state State) Reconcile(now time.Time) State {
	if !state.Active() {
		return state
	}
	if !now.Before(state.Deadline) {
		state.SecondsRemaining = 0
		state.Deadline = time.Time{}
		return state
	}
	remainingMillis := state.Deadline.UnixMilli() - now.UnixMilli()
	state.SecondsRemaining = int((remainingMillis + 999) / 1000)
	return state
}

// ToggleSound stops id if it is the active sound, otherwise makes it the only
// active sound.
func (state State) ToggleSound(id string) State {
	if state.ActiveSound == id {
		state.ActiveSound = ""
		return state
	}
	state.ActiveSound = id
	return state
}

// Snapshot returns the tuple the presentation layer renders from.
func (state State) Snapshot() Snapshot {
	return Snapshot{
		Task:             state.Task,
		SecondsRemaining: state.SecondsRemaining,
		ActiveSound:      state.ActiveSound,
		Phase:            state.Phase(),
	}
}

// Snapshot is a read-only view of State for rendering.
type Snapshot struct {
	Task             string
	SecondsRemaining int
	ActiveSound      string
	Phase            Phase
}

func wholeSeconds(duration time.Duration) int {
	return int(duration / time.Second)
}
