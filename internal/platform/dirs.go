// Package platform holds OS-specific helpers: directories and the
// single-instance guard.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir returns the per-user configuration directory for appName.
func ConfigDir(appName string) (string, error) {
	base, err := userConfigBase()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// StateDir returns the directory holding persisted focus state for appName.
func StateDir(appName string) (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "state", appName), nil
		}
	}
	configDir, err := ConfigDir(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "state"), nil
}

func userConfigBase() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support"), nil
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming"), nil
	default:
		return filepath.Join(homeDir, ".config"), nil
	}
}
