package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewServeCommand creates the headless remote control command
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		addr      string
		advertise bool
		name      string
	)

	cmd := &cobra.Command{
		Use:   "serve <store>",
		Short: "Run a headless player with a websocket remote",
		Long: `Open a store and accept playback commands over a websocket at /hxplay.
Connected clients receive player status snapshots and every log entry.
With --advertise the endpoint is announced over mDNS.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") || rootOpts.Config.Remote.Addr == "" {
				rootOpts.Config.Remote.Addr = addr
			}
			if cmd.Flags().Changed("advertise") {
				rootOpts.Config.Remote.Advertise = advertise
			}
			if name != "" {
				rootOpts.Config.Remote.Name = name
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, err := rootOpts.openSession(args[0], nil)
			if err != nil {
				return err
			}
			defer session.Close()

			return session.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8928", "listen address")
	cmd.Flags().BoolVar(&advertise, "advertise", false, "announce the endpoint over mDNS")
	cmd.Flags().StringVar(&name, "name", "", "advertised instance name (default <hostname>-hxplay)")
	return cmd
}
