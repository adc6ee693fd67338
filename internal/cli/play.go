package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hxtool/hxplay/internal/app"
	"github.com/hxtool/hxplay/pkg/playback"
)

// NewPlayCommand creates the play command
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		repeat bool
		volume float64
	)

	cmd := &cobra.Command{
		Use:   "play <store> <entry>",
		Short: "Play an event until its queue drains",
		Long: `Resolve an event name or hex id, play every stream it yields on the
configured audio device and exit when playback ends. With --repeat the
queue loops until interrupted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, err := rootOpts.openSession(args[0], nil)
			if err != nil {
				return err
			}
			defer session.Close()

			if cmd.Flags().Changed("repeat") {
				session.Player().SetRepeat(repeat)
			}
			if cmd.Flags().Changed("volume") {
				session.Player().SetVolume(volume)
			}

			return playUntilIdle(ctx, session, args[1], cmd)
		},
	}

	cmd.Flags().BoolVarP(&repeat, "repeat", "r", false, "loop the queue until interrupted")
	cmd.Flags().Float64Var(&volume, "volume", 0.5, "mix volume in [0,1]")
	return cmd
}

func playUntilIdle(ctx context.Context, session *app.Session, ref string, cmd *cobra.Command) error {
	var started atomic.Bool
	idle := make(chan struct{}, 1)
	session.OnStateChange(func(s playback.State) {
		switch s {
		case playback.Playing:
			started.Store(true)
		case playback.Idle:
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	if err := session.Play(ctx, ref); err != nil {
		return err
	}
	if !started.Load() {
		return fmt.Errorf("%s: nothing to play", ref)
	}
	player := session.Player()

	snap := player.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "Playing %s: %d streams, %s\n", snap.EventName, snap.Count, snap.Remaining.Round(time.Millisecond))

	for {
		select {
		case <-ctx.Done():
			return player.Stop()
		case <-idle:
			if player.State() == playback.Idle {
				return nil
			}
		}
	}
}
