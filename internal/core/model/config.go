package model

import "time"

// Sound is an ambient soundscape that can be looped during a session.
type Sound struct {
	ID     string
	Label  string
	Source string
}

// SoundCatalog is the fixed set of known sounds, in display order.
type SoundCatalog []Sound

// Lookup returns the sound registered under id.
func (catalog SoundCatalog) Lookup(id string) (Sound, bool) {
	for _, sound := range catalog {
		if sound.ID == id {
			return sound, true
		}
	}
	return Sound{}, false
}

// Has reports whether id is a known sound identifier.
func (catalog SoundCatalog) Has(id string) bool {
	_, ok := catalog.Lookup(id)
	return ok
}

// MaxMinutes bounds any session length or extension taken from user input.
const MaxMinutes = 24 * 60

// FocusConfig contains runtime settings for the focus TimeKeeper.
type FocusConfig struct {
	SessionDuration time.Duration
	ExtendStep      time.Duration
	RefreshInterval time.Duration
	Sounds          SoundCatalog
}
