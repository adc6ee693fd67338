package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hxtool/hxplay/internal/app"
	"github.com/hxtool/hxplay/internal/ui"
)

// NewBrowseCommand creates the interactive browser command
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	var serve bool

	cmd := &cobra.Command{
		Use:   "browse <store>",
		Short: "Browse and audition a store in the terminal",
		Long: `Open an interactive browser listing the events of a store with the link
tree of the selected event, the player status and the event log. The store
is reloaded when the file changes on disk. With --serve the remote control
endpoint runs alongside.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, err := rootOpts.openSession(args[0], nil)
			if err != nil {
				return err
			}
			defer session.Close()

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go session.Watch(ctx, app.DefaultSettle)

			if serve || rootOpts.Config.Remote.Addr != "" {
				srv := session.NewRemote()
				go srv.ListenAndServe(ctx)
			}

			return ui.Run(ctx, filepath.Base(args[0]), session, session.Player(), session.Log())
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "also run the remote control endpoint (remote.addr)")
	return cmd
}
