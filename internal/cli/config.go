package cli

import (
	"fmt"
	"os"
	"time"

	"zenflow/internal/storage"

	"github.com/spf13/cobra"
)

type configOutput struct {
	ConfigDir      string            `json:"configDir"`
	StateDir       string            `json:"stateDir"`
	SessionMinutes int               `json:"sessionMinutes"`
	ExtendMinutes  int               `json:"extendMinutes"`
	RefreshMillis  int               `json:"refreshMillis"`
	NotifyOnExpiry bool              `json:"notifyOnExpiry"`
	StateBackend   string            `json:"stateBackend"`
	LogLevel       string            `json:"logLevel"`
	Sounds         map[string]string `json:"sounds"`
}

func newConfigCommand(options *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(options)
			if err != nil {
				return err
			}
			defer env.close()

			settings := env.settings
			result := configOutput{
				ConfigDir:      env.configDir,
				StateDir:       env.stateDir,
				SessionMinutes: int(settings.SessionDuration / time.Minute),
				ExtendMinutes:  int(settings.ExtendStep / time.Minute),
				RefreshMillis:  int(settings.RefreshInterval / time.Millisecond),
				NotifyOnExpiry: settings.NotifyOnExpiry,
				StateBackend:   string(settings.StateBackend),
				LogLevel:       settings.LogLevel,
				Sounds:         make(map[string]string, len(settings.Sounds)),
			}
			for _, sound := range settings.Sounds {
				result.Sounds[sound.ID] = sound.Source
			}
			if options.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:  %s\n", storage.SettingsPath(env.configDir))
			fmt.Fprintf(out, "state:   %s\n", env.stateDir)
			fmt.Fprintf(out, "session: %d min, +%d min per extend\n", result.SessionMinutes, result.ExtendMinutes)
			fmt.Fprintf(out, "refresh: %d ms\n", result.RefreshMillis)
			fmt.Fprintf(out, "backend: %s\n", result.StateBackend)
			for _, sound := range settings.Sounds {
				fmt.Fprintf(out, "sound:   %s (%s)\n", sound.ID, sound.Source)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write settings.yaml with the current values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(options)
			if err != nil {
				return err
			}
			defer env.close()

			path := storage.SettingsPath(env.configDir)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := storage.SaveSettings(env.configDir, env.settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
