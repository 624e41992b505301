package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"zenflow/internal/audio"
	"zenflow/internal/core/clock"
	"zenflow/internal/core/focus"
	"zenflow/internal/core/model"
	"zenflow/internal/core/timekeeper"
	"zenflow/internal/storage"
	"zenflow/internal/ui/preferences"

	"github.com/spf13/cobra"
)

type statusOutput struct {
	Phase            focus.Phase `json:"phase"`
	Task             *string     `json:"task"`
	SecondsRemaining int         `json:"secondsRemaining"`
	Display          string      `json:"display"`
	ActiveSound      *string     `json:"activeSound"`
}

func newStatusCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current focus session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(options)
			if err != nil {
				return err
			}
			defer env.close()
			if env.settings.StateBackend != preferences.BackendFile {
				return errPreferencesBackend
			}

			// Read-only: reconcile in memory without touching the stored blob.
			adapter := storage.NewStateAdapter(storage.NewFileStore(env.stateDir), env.settings.SessionDuration, env.logger.Named("storage"))
			state, _ := adapter.Load()
			snapshot := state.Reconcile(clock.System.Now()).Snapshot()
			return printSnapshot(cmd.OutOrStdout(), snapshot, options.jsonOutput)
		},
	}
}

func newStartCommand(options *rootOptions) *cobra.Command {
	var minutes int
	cmd := &cobra.Command{
		Use:   "start <task...>",
		Short: "Start (or restart) a focus session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := strings.TrimSpace(strings.Join(args, " "))
			if task == "" {
				return fmt.Errorf("task name is empty")
			}
			if err := checkMinutes(minutes); err != nil {
				return err
			}
			return runIntent(cmd, options, focus.StartSession{Task: task, Duration: time.Duration(minutes) * time.Minute})
		},
	}
	cmd.Flags().IntVar(&minutes, "minutes", 0, "session length in minutes (default from settings)")
	return cmd
}

func newExtendCommand(options *rootOptions) *cobra.Command {
	var minutes int
	cmd := &cobra.Command{
		Use:   "extend",
		Short: "Add time to the running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkMinutes(minutes); err != nil {
				return err
			}
			return runIntent(cmd, options, focus.ExtendSession{Delta: time.Duration(minutes) * time.Minute})
		},
	}
	cmd.Flags().IntVar(&minutes, "minutes", 0, "minutes to add (default from settings)")
	return cmd
}

func newResetCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntent(cmd, options, focus.ResetSession{})
		},
	}
}

func newSoundCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sound <id>",
		Short: "Toggle an ambient sound (played by the window or watch)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(options)
			if err != nil {
				return err
			}
			defer env.close()
			if !env.settings.Sounds.Has(args[0]) {
				return fmt.Errorf("%w: %s", audio.ErrUnknownSound, args[0])
			}
			return runIntentIn(cmd, env, options, focus.ToggleSound{SoundID: args[0]})
		},
	}
}

// checkMinutes validates a --minutes flag; zero selects the configured default.
func checkMinutes(minutes int) error {
	if minutes < 0 || minutes > model.MaxMinutes {
		return fmt.Errorf("--minutes must be between 1 and %d", model.MaxMinutes)
	}
	return nil
}

func runIntent(cmd *cobra.Command, options *rootOptions, intent focus.Intent) error {
	env, err := loadEnvironment(options)
	if err != nil {
		return err
	}
	defer env.close()
	return runIntentIn(cmd, env, options, intent)
}

func runIntentIn(cmd *cobra.Command, env *environment, options *rootOptions, intent focus.Intent) error {
	return env.withHeadlessKeeper(audio.NopPlayer{}, func(keeper *timekeeper.TimeKeeper) error {
		return printSnapshot(cmd.OutOrStdout(), keeper.Dispatch(intent), options.jsonOutput)
	})
}

func printSnapshot(out io.Writer, snapshot focus.Snapshot, jsonOutput bool) error {
	if jsonOutput {
		result := statusOutput{
			Phase:            snapshot.Phase,
			SecondsRemaining: snapshot.SecondsRemaining,
			Display:          focus.FormatClock(snapshot.SecondsRemaining),
		}
		if snapshot.Task != "" {
			result.Task = &snapshot.Task
		}
		if snapshot.ActiveSound != "" {
			result.ActiveSound = &snapshot.ActiveSound
		}
		return writeJSON(out, result)
	}

	fmt.Fprintln(out, describe(snapshot))
	if snapshot.ActiveSound != "" {
		fmt.Fprintf(out, "sound: %s\n", snapshot.ActiveSound)
	}
	return nil
}

func describe(snapshot focus.Snapshot) string {
	switch snapshot.Phase {
	case focus.PhaseRunning:
		return fmt.Sprintf("%s remaining - %s", focus.FormatClock(snapshot.SecondsRemaining), snapshot.Task)
	case focus.PhaseExpired:
		return fmt.Sprintf("done - %s (reset to start a new session)", snapshot.Task)
	default:
		return "idle"
	}
}
