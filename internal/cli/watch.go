package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"zenflow/internal/audio"
	"zenflow/internal/core/focus"
	"zenflow/internal/core/timekeeper"

	"github.com/spf13/cobra"
)

func newWatchCommand(options *rootOptions) *cobra.Command {
	var silent bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the running session in the terminal until it ends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(options)
			if err != nil {
				return err
			}
			defer env.close()

			var player audio.Player = audio.NopPlayer{}
			if !silent {
				player = audio.NewSpeakerPlayer(env.settings.Sounds, env.logger.Named("audio"))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return env.withHeadlessKeeper(player, func(keeper *timekeeper.TimeKeeper) error {
				out := cmd.OutOrStdout()
				events := keeper.Subscribe(16)
				snapshot := keeper.Snapshot()
				if snapshot.Phase != focus.PhaseRunning {
					return printSnapshot(out, snapshot, false)
				}
				fmt.Fprintf(out, "\r%s ", describe(snapshot))

				for {
					select {
					case <-ctx.Done():
						fmt.Fprintln(out)
						return nil
					case event, ok := <-events:
						if !ok {
							return nil
						}
						switch event.Type {
						case timekeeper.EventProgress:
							fmt.Fprintf(out, "\r%s ", describe(event.Snapshot))
						case timekeeper.EventExpired:
							fmt.Fprintf(out, "\r%s\n", describe(event.Snapshot))
							return nil
						case timekeeper.EventAudioError:
							fmt.Fprintf(cmd.ErrOrStderr(), "\naudio: %s\n", event.Message)
						}
					}
				}
			})
		},
	}
	cmd.Flags().BoolVar(&silent, "silent", false, "do not play the active sound")
	return cmd
}
