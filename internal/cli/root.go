// Package cli wires the ZenFlow command line: the root command opens the
// focus window, subcommands drive the same persisted session headlessly.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const appName = "ZenFlow"

type rootOptions struct {
	configDir  string
	stateDir   string
	logLevel   string
	jsonOutput bool
}

// NewRootCommand builds the zenflow command tree.
func NewRootCommand() *cobra.Command {
	options := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "zenflow",
		Short: "ZenFlow - a focus timer with ambient soundscapes",
		Long: `ZenFlow runs a single focus session at a time: name a task, and a
countdown runs toward a fixed deadline that survives restarts. Without a
subcommand the desktop window opens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(options)
			if err != nil {
				return err
			}
			defer env.close()
			return runGUI(env)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&options.configDir, "config-dir", "", "directory holding settings.yaml")
	flags.StringVar(&options.stateDir, "state-dir", "", "directory holding the persisted focus state")
	flags.StringVar(&options.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&options.jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(
		newStatusCommand(options),
		newStartCommand(options),
		newExtendCommand(options),
		newResetCommand(options),
		newSoundCommand(options),
		newWatchCommand(options),
		newConfigCommand(options),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		os.Exit(1)
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
