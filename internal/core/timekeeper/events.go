package timekeeper

import (
	"time"

	"zenflow/internal/core/focus"
)

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
	EventExpired     EventType = "expired"
	EventAudioError  EventType = "audio_error"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type     EventType
	Snapshot focus.Snapshot
	Message  string
	At       time.Time
}
