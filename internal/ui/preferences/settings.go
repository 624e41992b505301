package preferences

import (
	"time"

	"zenflow/internal/core/focus"
	"zenflow/internal/core/model"
)

// StateBackend names where the focus state blob is kept.
type StateBackend string

const (
	BackendFile        StateBackend = "file"
	BackendPreferences StateBackend = "preferences"
)

// Bounds of the display refresh interval in milliseconds.
const (
	MinRefreshMillis = 16
	MaxRefreshMillis = 1000
)

// Settings defines editable user preferences.
type Settings struct {
	SessionDuration time.Duration
	ExtendStep      time.Duration
	RefreshInterval time.Duration
	NotifyOnExpiry  bool

	StateBackend StateBackend
	LogLevel     string
	Sounds       model.SoundCatalog
}

// DefaultSounds returns the built-in soundscapes.
func DefaultSounds() model.SoundCatalog {
	return model.SoundCatalog{
		{ID: "rain", Label: "Rain", Source: "https://cdn.pixabay.com/download/audio/2022/01/18/audio_87271b86a8.mp3"},
		{ID: "waves", Label: "Waves", Source: "https://cdn.pixabay.com/download/audio/2021/11/24/audio_34305886eb.mp3"},
		{ID: "forest", Label: "Forest", Source: "https://cdn.pixabay.com/download/audio/2021/09/06/audio_3232c416c1.mp3"},
	}
}

// DefaultSettings returns default settings for ZenFlow.
func DefaultSettings() Settings {
	return Settings{
		SessionDuration: focus.DefaultDuration,
		ExtendStep:      5 * time.Minute,
		RefreshInterval: 200 * time.Millisecond,
		NotifyOnExpiry:  true,
		StateBackend:    BackendFile,
		LogLevel:        "info",
		Sounds:          DefaultSounds(),
	}
}

// FocusConfig converts settings to the TimeKeeper configuration.
func (settings Settings) FocusConfig() model.FocusConfig {
	return model.FocusConfig{
		SessionDuration: settings.SessionDuration,
		ExtendStep:      settings.ExtendStep,
		RefreshInterval: settings.RefreshInterval,
		Sounds:          settings.Sounds,
	}
}
