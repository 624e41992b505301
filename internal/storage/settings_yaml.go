package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zenflow/internal/core/model"
	"zenflow/internal/ui/preferences"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSound struct {
	ID     string `yaml:"id"`
	Label  string `yaml:"label,omitempty"`
	Source string `yaml:"source"`
}

type yamlSettings struct {
	SessionMinutes int         `yaml:"session_minutes"`
	ExtendMinutes  int         `yaml:"extend_minutes"`
	RefreshMillis  int         `yaml:"refresh_millis"`
	NotifyOnExpiry *bool       `yaml:"notify_on_expiry,omitempty"`
	StateBackend   string      `yaml:"state_backend,omitempty"`
	LogLevel       string      `yaml:"log_level,omitempty"`
	Sounds         []yamlSound `yaml:"sounds,omitempty"`
}

// SettingsPath returns the settings file location inside configDir.
func SettingsPath(configDir string) string {
	return filepath.Join(configDir, settingsFileName)
}

// LoadSettings reads user preferences from YAML in configDir.
// If the config file does not exist, default settings are returned.
func LoadSettings(configDir string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(SettingsPath(configDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML in configDir.
func SaveSettings(configDir string, settings preferences.Settings) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	notify := settings.NotifyOnExpiry
	fileData := yamlSettings{
		SessionMinutes: int(settings.SessionDuration / time.Minute),
		ExtendMinutes:  int(settings.ExtendStep / time.Minute),
		RefreshMillis:  int(settings.RefreshInterval / time.Millisecond),
		NotifyOnExpiry: &notify,
		StateBackend:   string(settings.StateBackend),
		LogLevel:       settings.LogLevel,
	}
	for _, sound := range settings.Sounds {
		fileData.Sounds = append(fileData.Sounds, yamlSound{ID: sound.ID, Label: sound.Label, Source: sound.Source})
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := atomicWrite(SettingsPath(configDir), serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.SessionMinutes > 0 && fileData.SessionMinutes <= model.MaxMinutes {
		settings.SessionDuration = time.Duration(fileData.SessionMinutes) * time.Minute
	}
	if fileData.ExtendMinutes > 0 && fileData.ExtendMinutes <= model.MaxMinutes {
		settings.ExtendStep = time.Duration(fileData.ExtendMinutes) * time.Minute
	}
	if fileData.RefreshMillis >= preferences.MinRefreshMillis && fileData.RefreshMillis <= preferences.MaxRefreshMillis {
		settings.RefreshInterval = time.Duration(fileData.RefreshMillis) * time.Millisecond
	}
	if fileData.NotifyOnExpiry != nil {
		settings.NotifyOnExpiry = *fileData.NotifyOnExpiry
	}

	switch backend := preferences.StateBackend(strings.ToLower(fileData.StateBackend)); backend {
	case preferences.BackendFile, preferences.BackendPreferences:
		settings.StateBackend = backend
	}

	if fileData.LogLevel != "" {
		if level, err := zapcore.ParseLevel(fileData.LogLevel); err == nil {
			settings.LogLevel = level.String()
		}
	}

	if len(fileData.Sounds) > 0 {
		sounds := make(model.SoundCatalog, 0, len(fileData.Sounds))
		for _, sound := range fileData.Sounds {
			if sound.ID == "" || sound.Source == "" || sounds.Has(sound.ID) {
				continue
			}
			label := sound.Label
			if label == "" {
				label = sound.ID
			}
			sounds = append(sounds, model.Sound{ID: sound.ID, Label: label, Source: sound.Source})
		}
		if len(sounds) > 0 {
			settings.Sounds = sounds
		}
	}
}
