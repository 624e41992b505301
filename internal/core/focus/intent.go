package focus

import "time"

// Intent is a user request routed to the state machine.
type Intent interface {
	intent()
}

// StartSession starts a session for Task. A zero Duration means the default.
type StartSession struct {
	Task     string
	Duration time.Duration
}

// ExtendSession pushes the running deadline by Delta.
type ExtendSession struct {
	Delta time.Duration
}

// ResetSession clears the current session.
type ResetSession struct{}

// ToggleSound starts, switches or stops the ambient sound SoundID.
type ToggleSound struct {
	SoundID string
}

func (StartSession) intent()  {}
func (ExtendSession) intent() {}
func (ResetSession) intent()  {}
func (ToggleSound) intent()   {}

// Apply returns state with intent applied at now.
func Apply(state State, intent Intent, now time.Time, defaultDuration time.Duration) State {
	switch request := intent.(type) {
	case StartSession:
		duration := request.Duration
		if duration <= 0 {
			duration = defaultDuration
		}
		return state.Start(request.Task, duration, now)
	case ExtendSession:
		return state.Extend(request.Delta)
	case ResetSession:
		return state.Reset(defaultDuration)
	case ToggleSound:
		return state.ToggleSound(request.SoundID)
	default:
		return state
	}
}
